// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package catalog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tomtom215/myflix-recommender/internal/config"
)

// videoDocument is the stored shape of a catalog entry:
//
//	{_id: ObjectId(...), userRatings: [{user: "u1", rating: 4}, ...]}
//
// Identifier and score fields are decoded loosely because the catalog is
// written by other services that do not agree on their BSON types.
type videoDocument struct {
	ID          any              `bson:"_id"`
	UserRatings []ratingDocument `bson:"userRatings"`
}

type ratingDocument struct {
	User   any `bson:"user"`
	Rating any `bson:"rating"`
}

// MongoSource reads video documents from a MongoDB collection.
type MongoSource struct {
	client       *mongo.Client
	collection   *mongo.Collection
	queryTimeout time.Duration
	logger       zerolog.Logger
}

// NewMongoSource connects to the catalog store and verifies it with a ping.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMongoSource(ctx context.Context, cfg *config.MongoConfig, logger zerolog.Logger) (*MongoSource, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetAppName("myflix-recommender")

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping %s: %w", cfg.RedactedURI(), err)
	}

	return NewMongoSourceFromClient(client, cfg.Database, cfg.Collection, cfg.QueryTimeout, logger), nil
}

// NewMongoSourceFromClient wraps an existing client. The caller keeps ownership
// of the client only until Close is called.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMongoSourceFromClient(client *mongo.Client, database, collection string, queryTimeout time.Duration, logger zerolog.Logger) *MongoSource {
	return &MongoSource{
		client:       client,
		collection:   client.Database(database).Collection(collection),
		queryTimeout: queryTimeout,
		logger: logger.With().
			Str("component", "catalog-mongo").
			Str("database", database).
			Str("collection", collection).
			Logger(),
	}
}

// Videos returns every video document in natural collection order.
// Documents that cannot be decoded are skipped with a warning.
func (s *MongoSource) Videos(ctx context.Context) ([]Video, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	projection := bson.D{{Key: "_id", Value: 1}, {Key: "userRatings", Value: 1}}
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("mongo: find: %w", err)
	}
	defer func() {
		if err := cursor.Close(context.Background()); err != nil {
			s.logger.Debug().Err(err).Msg("cursor close failed")
		}
	}()

	var videos []Video
	for cursor.Next(ctx) {
		var doc videoDocument
		if err := cursor.Decode(&doc); err != nil {
			s.logger.Warn().Err(err).Str("raw_id", rawID(cursor.Current)).Msg("skipping undecodable video document")
			continue
		}
		video, ok := s.toVideo(&doc)
		if !ok {
			continue
		}
		videos = append(videos, video)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterate: %w", err)
	}

	return videos, nil
}

func (s *MongoSource) toVideo(doc *videoDocument) (Video, bool) {
	id, ok := normalizeID(doc.ID)
	if !ok {
		s.logger.Warn().Interface("raw_id", doc.ID).Msg("skipping video document without usable _id")
		return Video{}, false
	}

	// Undecodable ratings are kept in a form the Loader rejects, so every
	// dropped event is counted in one place.
	video := Video{ID: id, Ratings: make([]Rating, 0, len(doc.UserRatings))}
	for _, r := range doc.UserRatings {
		user, userOK := normalizeID(r.User)
		score, scoreOK := normalizeScore(r.Rating)
		if !userOK {
			user = ""
			s.logger.Debug().Str("video_id", id).Interface("raw_user", r.User).Msg("rating without usable user")
		}
		if !scoreOK {
			score = math.NaN()
			s.logger.Debug().Str("video_id", id).Interface("raw_rating", r.Rating).Msg("rating with non-numeric score")
		}
		video.Ratings = append(video.Ratings, Rating{User: user, Score: score})
	}
	return video, true
}

// Ping checks that the store is reachable.
func (s *MongoSource) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// normalizeID renders a stored identifier as an opaque string.
// ObjectIDs become their hex form and integers their decimal form.
func normalizeID(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bson.ObjectID:
		return t.Hex(), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		s := fmt.Sprint(t)
		return s, s != ""
	}
}

// normalizeScore converts a stored rating to float64.
func normalizeScore(v any) (float64, bool) {
	switch t := v.(type) {
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case float64:
		return t, true
	case bson.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func rawID(raw bson.Raw) string {
	if raw == nil {
		return ""
	}
	val, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	return val.String()
}
