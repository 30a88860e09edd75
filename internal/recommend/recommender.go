// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import "sort"

// Options tune a single Recommend call.
type Options struct {
	// RequireNeighborRating only emits a video when the neighbor being
	// visited has rated it (> 0).
	RequireNeighborRating bool
}

// Neighbor is another user ranked by similarity to a target.
type Neighbor struct {
	Row        int
	Similarity float64
}

// RankNeighbors returns every user except target ordered by descending
// similarity. Ties keep ascending row order.
func RankNeighbors(sim *SimilarityMatrix, target int) []Neighbor {
	n := sim.Len()
	if n <= 1 {
		return nil
	}

	neighbors := make([]Neighbor, 0, n-1)
	for row := 0; row < n; row++ {
		if row == target {
			continue
		}
		neighbors = append(neighbors, Neighbor{Row: row, Similarity: sim.At(target, row)})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	return neighbors
}

// Recommend returns up to count video ids the user has not rated.
//
// Neighbors are visited in similarity order. For each neighbor, the videos
// whose cell in the target's row is 0 are emitted in column order, skipping
// any video already emitted. An unknown user, a non-positive count or a
// catalog with no other users yields an empty, non-nil slice.
func Recommend(snap *Snapshot, userID string, count int, opts Options) []string {
	if snap == nil || count <= 0 {
		return []string{}
	}
	target, ok := snap.Users.Lookup(userID)
	if !ok {
		return []string{}
	}

	targetRow := snap.Ratings.Row(target)
	capacity := count
	if cols := snap.Ratings.Cols(); cols < capacity {
		capacity = cols
	}
	result := make([]string, 0, capacity)
	emitted := make(map[int]struct{}, capacity)

	for _, nb := range RankNeighbors(snap.Similarity, target) {
		neighborRow := snap.Ratings.Row(nb.Row)
		for col, score := range targetRow {
			if score != 0 {
				continue
			}
			if opts.RequireNeighborRating && neighborRow[col] <= 0 {
				continue
			}
			if _, seen := emitted[col]; seen {
				continue
			}
			emitted[col] = struct{}{}
			result = append(result, snap.Videos.ID(col))
			if len(result) == count {
				return result
			}
		}
	}

	return result
}
