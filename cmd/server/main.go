// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/myflix-recommender/internal/api"
	"github.com/tomtom215/myflix-recommender/internal/config"
	"github.com/tomtom215/myflix-recommender/internal/logging"
	"github.com/tomtom215/myflix-recommender/internal/recommend"
	"github.com/tomtom215/myflix-recommender/internal/supervisor"
	"github.com/tomtom215/myflix-recommender/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("missing_video_policy", cfg.Recommend.MissingVideoPolicy).
		Dur("refresh_interval", cfg.Recommend.RefreshInterval).
		Msg("Starting Myflix recommender")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initRecommend(ctx, cfg, logging.WithComponent("startup"))
	if err != nil {
		var startupErr *recommend.StartupLoadError
		if errors.As(err, &startupErr) {
			logging.Fatal().Err(startupErr.Err).Msg("Initial snapshot build failed")
		}
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := components.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error disconnecting from catalog store")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(components.Engine, components.Store, api.HandlerConfig{
		RequestTimeout: cfg.Server.Timeout,
	}, logging.Logger())
	chiMW := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, chiMW)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		// Manual refresh rebuilds synchronously, so writes get the refresh budget.
		WriteTimeout: cfg.Server.Timeout + cfg.Recommend.RefreshTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===
	tree.AddDataService(services.NewSnapshotRefreshService(
		components.Engine, cfg.Recommend.RefreshInterval, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(
		server, server.Addr, shutdownTimeout, logging.Logger()))

	// === START SUPERVISOR TREE ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		// The tree may need its own timeout for each layer before it reports.
		treeErr = supervisor.Wait(errCh, 3*shutdownTimeout)
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Recommender stopped")
}
