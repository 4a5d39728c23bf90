// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve loads per-document retrieval resources and runs
// diversity-constrained evidence retrieval over them.
package retrieve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slr-engine/internal/index"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// Artifact triplet filenames, keyed by a shared stem. A document is
// retrievable only when all three exist and agree on count and dimension.
const (
	chunksSuffix = "_chunks.yaml"
	matrixSuffix = "_embeddings.f32"
	indexSuffix  = ".index"
)

// ChunkFile returns the chunk list path for a stem.
func ChunkFile(dir, stem string) string { return filepath.Join(dir, stem+chunksSuffix) }

// MatrixFile returns the embedding matrix path for a stem.
func MatrixFile(dir, stem string) string { return filepath.Join(dir, stem+matrixSuffix) }

// IndexFile returns the serialized index path for a stem.
func IndexFile(dir, stem string) string { return filepath.Join(dir, stem+indexSuffix) }

// Resource is the retrievable unit for one ingested document: a vector
// index paired position-for-position with its chunk list.
type Resource struct {
	// Stem is the shared artifact name stem; it doubles as the paper key.
	Stem string

	// Dim is the index's declared vector dimension.
	Dim int

	// Chunks is the parallel chunk list; Chunks[i] corresponds to index ID i.
	Chunks []types.Chunk

	// Index is the document's nearest-neighbor index.
	Index *index.Flat
}

// ResourceStatus records what happened to one document during loading or
// retrieval, so degraded projects are visible instead of silently thinner.
type ResourceStatus struct {
	Stem string `json:"stem"`

	// Used reports whether the resource contributed to the operation.
	Used bool `json:"used"`

	// Reason explains exclusion; empty when Used.
	Reason string `json:"reason,omitempty"`
}

// LoadResources scans dir for artifact triplets and loads every consistent
// one. Incomplete or inconsistent triplets are excluded and reported via
// the status list, never as an error: a project may accumulate stale or
// partial artifacts over time and retrieval continues on what is sound.
// Resources come back sorted by stem so scan order is reproducible.
func LoadResources(dir string) ([]Resource, []ResourceStatus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading index directory %s: %w", dir, err)
	}

	var resources []Resource
	var statuses []ResourceStatus

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), chunksSuffix) {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), chunksSuffix)

		res, reason := loadResource(dir, stem)
		if reason != "" {
			statuses = append(statuses, ResourceStatus{Stem: stem, Reason: reason})
			continue
		}
		resources = append(resources, *res)
		statuses = append(statuses, ResourceStatus{Stem: stem, Used: true})
	}

	sort.Slice(resources, func(i, j int) bool { return resources[i].Stem < resources[j].Stem })
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Stem < statuses[j].Stem })

	return resources, statuses, nil
}

// loadResource loads one triplet and checks mutual consistency. A non-empty
// reason means the resource is excluded.
func loadResource(dir, stem string) (*Resource, string) {
	data, err := os.ReadFile(ChunkFile(dir, stem))
	if err != nil {
		return nil, fmt.Sprintf("reading chunks: %v", err)
	}
	var chunks []types.Chunk
	if err := yaml.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Sprintf("parsing chunks: %v", err)
	}

	matrixDim, matrixCount, err := index.ReadMatrix(MatrixFile(dir, stem))
	if err != nil {
		return nil, fmt.Sprintf("reading embedding matrix: %v", err)
	}

	idx, err := index.ReadFile(IndexFile(dir, stem))
	if err != nil {
		return nil, fmt.Sprintf("reading index: %v", err)
	}

	if idx.Dim() != matrixDim {
		return nil, fmt.Sprintf("index dimension %d does not match matrix dimension %d", idx.Dim(), matrixDim)
	}
	if idx.Len() != matrixCount {
		return nil, fmt.Sprintf("index holds %d vectors but matrix holds %d", idx.Len(), matrixCount)
	}
	if idx.Len() != len(chunks) {
		return nil, fmt.Sprintf("index holds %d vectors but chunk list holds %d", idx.Len(), len(chunks))
	}

	return &Resource{
		Stem:   stem,
		Dim:    idx.Dim(),
		Chunks: chunks,
		Index:  idx,
	}, ""
}
