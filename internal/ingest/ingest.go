// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns documents into the per-document artifact triplet
// the retriever reads: a chunk list, a parallel embedding matrix, and a
// vector index built from that matrix, all keyed by a shared name stem.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slr-engine/internal/embed"
	"github.com/pdiddy/slr-engine/internal/index"
	"github.com/pdiddy/slr-engine/internal/retrieve"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// Summary holds counts from one ingestion run.
type Summary struct {
	Ingested int
	Failed   int
}

// Total returns the number of files processed.
func (s Summary) Total() int { return s.Ingested + s.Failed }

// HasFailures reports whether any files failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Result describes one ingested document.
type Result struct {
	Stem    string
	Title   string
	Chunks  int
	Dropped int
	Dim     int
}

// IngestFiles ingests each text file into indexDir, writing one artifact
// triplet per file. A failing file is reported and skipped; the run
// continues. Re-ingesting an existing stem replaces its triplet. The
// returned results cover the successful files in processing order.
func IngestFiles(ctx context.Context, provider embed.Provider, indexDir string, paths []string, chunkSize int, w io.Writer) ([]Result, Summary, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, Summary{}, fmt.Errorf("creating index directory: %w", err)
	}

	var results []Result
	var summary Summary
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return results, summary, ctx.Err()
		default:
		}

		name := filepath.Base(path)
		stem := Slugify(strings.TrimSuffix(name, filepath.Ext(name)))

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		res, err := IngestText(ctx, provider, indexDir, stem, name, string(data), chunkSize)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if res.Dropped > 0 {
			fmt.Fprintf(w, "ingested %s (%d chunks, %d dropped, dim %d)\n", stem, res.Chunks, res.Dropped, res.Dim)
		} else {
			fmt.Fprintf(w, "ingested %s (%d chunks, dim %d)\n", stem, res.Chunks, res.Dim)
		}
		res.Title = name
		results = append(results, *res)
		summary.Ingested++
	}

	fmt.Fprintf(w, "\ningested: %d, failed: %d\n", summary.Ingested, summary.Failed)
	return results, summary, nil
}

// IngestText chunks text, embeds every chunk, and writes the artifact
// triplet for stem. Chunks whose embedding fails are dropped and counted;
// the document fails only if no chunk embeds. Each artifact is written
// atomically so a concurrent reader sees either the old or new triplet
// member, never a torn one.
func IngestText(ctx context.Context, provider embed.Provider, indexDir, stem, title, text string, chunkSize int) (*Result, error) {
	pieces := SplitChunks(text, chunkSize)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("document has no text")
	}

	var chunks []types.Chunk
	var vectors [][]float32
	dropped := 0

	for i, piece := range pieces {
		vec, err := provider.Embed(ctx, piece)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			dropped++
			continue
		}
		if len(vectors) > 0 && len(vec) != len(vectors[0]) {
			return nil, fmt.Errorf("chunk %d: embedding dimension %d does not match %d", i, len(vec), len(vectors[0]))
		}
		chunks = append(chunks, types.Chunk{
			Text:     piece,
			Title:    title,
			Section:  fmt.Sprintf("chunk %d", i+1),
			SourceID: stem,
		})
		vectors = append(vectors, vec)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("all %d chunks failed to embed", len(pieces))
	}

	dim := len(vectors[0])
	if err := writeTriplet(indexDir, stem, dim, chunks, vectors); err != nil {
		return nil, err
	}

	return &Result{Stem: stem, Chunks: len(chunks), Dropped: dropped, Dim: dim}, nil
}

// writeTriplet writes the three artifacts for one document. The index is
// written last so a chunk file without its index reads as an incomplete
// triplet rather than a stale pairing.
func writeTriplet(dir, stem string, dim int, chunks []types.Chunk, vectors [][]float32) error {
	data, err := yaml.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshaling chunks: %w", err)
	}
	if err := writeFileAtomic(retrieve.ChunkFile(dir, stem), data); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}

	if err := index.WriteMatrix(retrieve.MatrixFile(dir, stem), dim, vectors); err != nil {
		return fmt.Errorf("writing embedding matrix: %w", err)
	}

	idx, err := index.NewFlat(dim)
	if err != nil {
		return err
	}
	if err := idx.AddAll(vectors); err != nil {
		return err
	}
	if err := idx.WriteFile(retrieve.IndexFile(dir, stem)); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	return nil
}

// writeFileAtomic writes data via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
