// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SimilarityMatrix is the symmetric users x users cosine similarity matrix.
type SimilarityMatrix struct {
	n    int
	data *mat.SymDense // nil when n == 0
}

// Len returns the number of users.
func (s *SimilarityMatrix) Len() int { return s.n }

// At returns the similarity between user rows i and j.
func (s *SimilarityMatrix) At(i, j int) float64 {
	return s.data.At(i, j)
}

// CosineSimilarity computes pairwise cosine similarity between the rows of m.
//
// Rows are L2-normalized and the Gram matrix of the normalized rows is taken,
// so cell (i, j) = <r_i, r_j> / (|r_i| |r_j|). A row with no ratings has
// similarity 0 against every row, itself included. The diagonal of any
// nonzero row is exactly 1 and all values are clamped to [-1, 1].
func CosineSimilarity(m *RatingMatrix) *SimilarityMatrix {
	n := m.Rows()
	if n == 0 {
		return &SimilarityMatrix{}
	}
	if m.data == nil {
		// Users without any resolvable video: every row is zero.
		return &SimilarityMatrix{n: n, data: mat.NewSymDense(n, nil)}
	}

	var normalized mat.Dense
	normalized.CloneFrom(m.data)

	nonzero := make([]bool, n)
	for i := 0; i < n; i++ {
		row := normalized.RawRowView(i)
		norm := floats.Norm(row, 2)
		if norm == 0 {
			continue
		}
		floats.Scale(1/norm, row)
		nonzero[i] = true
	}

	sim := mat.NewSymDense(n, nil)
	sim.SymOuterK(1, &normalized)

	for i := 0; i < n; i++ {
		if nonzero[i] {
			sim.SetSym(i, i, 1)
		}
		for j := i + 1; j < n; j++ {
			v := sim.At(i, j)
			switch {
			case v > 1:
				sim.SetSym(i, j, 1)
			case v < -1:
				sim.SetSym(i, j, -1)
			}
		}
	}

	return &SimilarityMatrix{n: n, data: sim}
}
