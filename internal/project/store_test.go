// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesCatalog(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, "index", "catalog.db"))
	assert.NoError(t, err)
}

func TestRecordAndListDocuments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordDocument(ctx, Document{
		Stem: "beta", Title: "Beta.txt", Chunks: 3, Dim: 1536,
	}))
	require.NoError(t, store.RecordDocument(ctx, Document{
		Stem: "alpha", Title: "Alpha.txt", Chunks: 5, Dim: 1536,
	}))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "alpha", docs[0].Stem)
	assert.Equal(t, "beta", docs[1].Stem)
	assert.Equal(t, 5, docs[0].Chunks)
	assert.False(t, docs[0].IngestedAt.IsZero())
}

func TestRecordDocumentUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordDocument(ctx, Document{Stem: "doc", Chunks: 2, Dim: 8}))
	require.NoError(t, store.RecordDocument(ctx, Document{Stem: "doc", Chunks: 7, Dim: 8, Title: "Doc v2"}))

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 7, docs[0].Chunks)
	assert.Equal(t, "Doc v2", docs[0].Title)
}

func TestSaveAndGetReport(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.SaveReport(ctx, ReportRecord{
		Objective: "obj",
		Questions: []string{"Q1?", "Q2?"},
		Text:      "full report text",
		Model:     "gpt-4o",
		CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	rec, err := store.GetReport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "obj", rec.Objective)
	assert.Equal(t, []string{"Q1?", "Q2?"}, rec.Questions)
	assert.Equal(t, "full report text", rec.Text)
	assert.Equal(t, "gpt-4o", rec.Model)
	assert.Equal(t, created, rec.CreatedAt)
}

func TestGetReportNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetReport(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListReportsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.SaveReport(ctx, ReportRecord{Questions: []string{"Q?"}, Text: "one"})
	require.NoError(t, err)
	second, err := store.SaveReport(ctx, ReportRecord{Questions: []string{"Q?"}, Text: "two"})
	require.NoError(t, err)

	recs, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, second, recs[0].ID)
	assert.Equal(t, first, recs[1].ID)
	// Listing omits the body.
	assert.Empty(t, recs[0].Text)
	assert.Len(t, recs[0].Questions, 1)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.RecordDocument(ctx, Document{Stem: "doc", Chunks: 1, Dim: 4}))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
