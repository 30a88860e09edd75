// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

// IndexMap assigns dense zero-based indices to opaque identifiers in
// first-seen order.
type IndexMap struct {
	index map[string]int
	ids   []string
}

// NewIndexMap creates an empty map with room for sizeHint identifiers.
func NewIndexMap(sizeHint int) *IndexMap {
	return &IndexMap{
		index: make(map[string]int, sizeHint),
		ids:   make([]string, 0, sizeHint),
	}
}

// Add returns the index of id, assigning the next index if id is new.
func (m *IndexMap) Add(id string) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	i := len(m.ids)
	m.index[id] = i
	m.ids = append(m.ids, id)
	return i
}

// Lookup returns the index of id and whether it is present.
func (m *IndexMap) Lookup(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// ID returns the identifier at index i. It panics if i is out of range.
func (m *IndexMap) ID(i int) string {
	return m.ids[i]
}

// Len returns the number of identifiers.
func (m *IndexMap) Len() int {
	return len(m.ids)
}

// IDs returns a copy of all identifiers in index order.
func (m *IndexMap) IDs() []string {
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}
