// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slr-engine/internal/ingest"
	"github.com/pdiddy/slr-engine/internal/project"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Chunk, embed, and index documents into the project",
	Long: `Ingest reads text documents, splits them into fixed-size chunks, embeds
each chunk, and writes the per-document retrieval artifacts into the
project's index directory. With no arguments it ingests every .txt and .md
file under the project's docs/ directory.

Re-ingesting a document replaces its artifacts. Each ingested document is
also recorded in the project catalog.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	paths := args
	if len(paths) == 0 {
		var err error
		paths, err = defaultDocPaths(filepath.Join(projectDir(cmd), "docs"))
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents to ingest: pass file paths or populate the project's docs/ directory")
	}

	provider, err := embeddingProvider(cmd)
	if err != nil {
		return err
	}

	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	if chunkSize <= 0 {
		chunkSize = viper.GetInt("ingestion.chunk_size")
	}

	results, summary, err := ingest.IngestFiles(ctx, provider, projectIndexDir(cmd), paths, chunkSize, os.Stdout)
	if err != nil {
		return err
	}

	store, err := project.Open(projectDir(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	for _, res := range results {
		err := store.RecordDocument(ctx, project.Document{
			Stem:   res.Stem,
			Title:  res.Title,
			Chunks: res.Chunks,
			Dim:    res.Dim,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cataloging %s: %v\n", res.Stem, err)
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed ingestion", summary.Failed)
	}
	return nil
}

// defaultDocPaths lists the ingestible files under docsDir, sorted by name.
func defaultDocPaths(docsDir string) ([]string, error) {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading docs directory %s: %w", docsDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			paths = append(paths, filepath.Join(docsDir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func init() {
	ingestCmd.Flags().Int("chunk-size", 0, "maximum chunk length in runes (0 = default)")
	ingestCmd.Flags().String("embedding-model", "", "embedding model identifier")

	rootCmd.AddCommand(ingestCmd)
}
