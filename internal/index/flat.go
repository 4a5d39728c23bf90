// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index provides a flat exhaustive nearest-neighbor index over
// float32 vectors with squared-L2 distance, plus binary (de)serialization
// for the on-disk artifact triplet written at ingestion time.
package index

import (
	"fmt"
	"sort"
)

// Flat is an exhaustive squared-L2 index. Vectors are stored in insertion
// order in one contiguous slice; search scans all of them. Reads are safe
// from multiple goroutines once the index is built.
type Flat struct {
	dim  int
	data []float32
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the vector dimension the index was built for.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.data) / f.dim }

// Add appends one vector. The vector's position becomes its result ID.
func (f *Flat) Add(vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), f.dim)
	}
	f.data = append(f.data, vec...)
	return nil
}

// AddAll appends vectors in order, rejecting the whole batch on the first
// dimension mismatch.
func (f *Flat) AddAll(vecs [][]float32) error {
	for i, v := range vecs {
		if err := f.Add(v); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return nil
}

// Result is one nearest-neighbor hit: the vector's insertion position and
// its squared-L2 distance from the query.
type Result struct {
	ID       int
	Distance float32
}

// Search returns up to k nearest vectors in ascending distance order. Ties
// resolve by insertion order so results are deterministic for identical
// inputs. k larger than the index size returns every vector.
func (f *Flat) Search(query []float32, k int) ([]Result, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	n := f.Len()
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		row := f.data[i*f.dim : (i+1)*f.dim]
		var dist float32
		for j, q := range query {
			d := row[j] - q
			dist += d * d
		}
		results[i] = Result{ID: i, Distance: dist}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if k < n {
		results = results[:k]
	}
	return results, nil
}
