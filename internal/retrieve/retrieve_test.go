// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/slr-engine/internal/index"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// fakeProvider returns a fixed vector for every input.
type fakeProvider struct {
	vec []float32
	err error
}

func (f fakeProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

// makeResource builds an in-memory resource whose vector i sits at distance
// i^2 from the origin, so a zero query ranks chunks in slice order.
func makeResource(t *testing.T, stem string, chunks []types.Chunk) Resource {
	t.Helper()
	idx, err := index.NewFlat(2)
	require.NoError(t, err)
	for i := range chunks {
		require.NoError(t, idx.Add([]float32{float32(i), 0}))
	}
	return Resource{Stem: stem, Dim: 2, Chunks: chunks, Index: idx}
}

func chunksOf(texts ...string) []types.Chunk {
	out := make([]types.Chunk, len(texts))
	for i, txt := range texts {
		out[i] = types.Chunk{Text: txt}
	}
	return out
}

func TestRetrievePerDocumentCap(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("a0", "a1", "a2", "a3")),
		makeResource(t, "paper-b", chunksOf("b0", "b1", "b2", "b3")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, statuses, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 10, MaxPerDoc: 2, Trim: 700})
	require.NoError(t, err)

	perPaper := make(map[string]int)
	for _, n := range notes {
		perPaper[n.PaperKey]++
	}
	assert.Equal(t, 2, perPaper["paper-a"])
	assert.Equal(t, 2, perPaper["paper-b"])
	assert.Len(t, notes, 4)

	for _, st := range statuses {
		assert.True(t, st.Used)
	}
}

func TestRetrieveCapBackfillsFromWeakerDocument(t *testing.T) {
	// Every paper-a candidate outranks every paper-b candidate. Once the
	// per-document cap rejects a2 and a3, the third note must come from
	// paper-b's best chunk rather than being lost.
	near := makeResource(t, "paper-a", chunksOf("a0", "a1", "a2", "a3"))

	farIdx, err := index.NewFlat(2)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, farIdx.Add([]float32{float32(10 + i), 0}))
	}
	far := Resource{Stem: "paper-b", Dim: 2, Chunks: chunksOf("b0", "b1", "b2", "b3"), Index: farIdx}

	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, []Resource{near, far}, "q",
		Options{TotalPassages: 3, MaxPerDoc: 2, Trim: 700})
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert.Equal(t, "a0", notes[0].Text)
	assert.Equal(t, "a1", notes[1].Text)
	assert.Equal(t, "b0", notes[2].Text)
	assert.Equal(t, 3, notes[2].NoteID)
}

func TestRetrieveTotalPassagesBound(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("a0", "a1", "a2")),
		makeResource(t, "paper-b", chunksOf("b0", "b1", "b2")),
		makeResource(t, "paper-c", chunksOf("c0", "c1", "c2")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 3, MaxPerDoc: 2, Trim: 700})
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestRetrieveGlobalRanking(t *testing.T) {
	// paper-b's first chunk (distance 0) must outrank paper-a's second
	// chunk (distance 1) even though paper-a is scanned first.
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("a0", "a1")),
		makeResource(t, "paper-b", chunksOf("b0", "b1")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 4, MaxPerDoc: 2, Trim: 700})
	require.NoError(t, err)
	require.Len(t, notes, 4)

	assert.Equal(t, "a0", notes[0].Text)
	assert.Equal(t, "b0", notes[1].Text)
	assert.Equal(t, "a1", notes[2].Text)
	assert.Equal(t, "b1", notes[3].Text)

	// Scores descend; ties break by resource scan order.
	for i := 1; i < len(notes); i++ {
		assert.GreaterOrEqual(t, notes[i-1].Score, notes[i].Score)
	}
}

func TestRetrieveNoteIDsAreSequential(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("a0", "a1", "a2")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 2, MaxPerDoc: 2, Trim: 700})
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, 1, notes[0].NoteID)
	assert.Equal(t, 2, notes[1].NoteID)
}

func TestRetrieveSkipsDimensionMismatch(t *testing.T) {
	mismatched, err := index.NewFlat(3)
	require.NoError(t, err)
	require.NoError(t, mismatched.Add([]float32{1, 1, 1}))

	resources := []Resource{
		{Stem: "old-model", Dim: 3, Chunks: chunksOf("x"), Index: mismatched},
		makeResource(t, "current", chunksOf("y")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, statuses, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 10, MaxPerDoc: 2, Trim: 700})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "current", notes[0].PaperKey)

	require.Len(t, statuses, 2)
	assert.False(t, statuses[0].Used)
	assert.Contains(t, statuses[0].Reason, "dimension mismatch")
	assert.True(t, statuses[1].Used)
}

func TestRetrieveSkipsEmptyChunks(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", []types.Chunk{
			{Text: ""},
			{Text: "kept"},
		}),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 10, MaxPerDoc: 5, Trim: 700})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "kept", notes[0].Text)
}

func TestRetrieveTrimsByRunes(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("日本語テキストです")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, resources, "q",
		Options{TotalPassages: 1, MaxPerDoc: 1, Trim: 4})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "日本語テ", notes[0].Text)
}

func TestRetrieveCarriesChunkMeta(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", []types.Chunk{{
			Text:    "body",
			Title:   "A Study",
			Year:    "2020",
			Section: "Results",
			URL:     "https://example.com",
		}}),
	}
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, _, err := Retrieve(context.Background(), provider, resources, "q", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, notes, 1)

	assert.Equal(t, "A Study", notes[0].Meta.Title)
	assert.Equal(t, "2020", notes[0].Meta.Year)
	assert.Equal(t, "Results", notes[0].Meta.Section)
	assert.Equal(t, "https://example.com", notes[0].Meta.URL)
}

func TestRetrieveEmbeddingFailureAborts(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("a0")),
	}
	provider := fakeProvider{err: errors.New("service unreachable")}

	notes, statuses, err := Retrieve(context.Background(), provider, resources, "q", DefaultOptions())
	assert.Error(t, err)
	assert.Nil(t, notes)
	assert.Nil(t, statuses)
}

func TestRetrieveEmptyResources(t *testing.T) {
	provider := fakeProvider{vec: []float32{0, 0}}

	notes, statuses, err := Retrieve(context.Background(), provider, nil, "q", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Empty(t, statuses)
}

func TestRetrieveDeterministic(t *testing.T) {
	resources := []Resource{
		makeResource(t, "paper-a", chunksOf("a0", "a1", "a2")),
		makeResource(t, "paper-b", chunksOf("b0", "b1", "b2")),
	}
	provider := fakeProvider{vec: []float32{0, 0}}
	opts := Options{TotalPassages: 4, MaxPerDoc: 2, Trim: 700}

	first, _, err := Retrieve(context.Background(), provider, resources, "q", opts)
	require.NoError(t, err)
	second, _, err := Retrieve(context.Background(), provider, resources, "q", opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(types.RetrievalConfig{})
	assert.Equal(t, DefaultOptions(), opts)

	opts = OptionsFromConfig(types.RetrievalConfig{TotalPassages: 8, MaxPerDoc: 1, Trim: 100})
	assert.Equal(t, Options{TotalPassages: 8, MaxPerDoc: 1, Trim: 100}, opts)
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "abc", trim("abc", 10))
	assert.Equal(t, "ab", trim("abc", 2))
	assert.Equal(t, "abc", trim("abc", 0))
	assert.Equal(t, strings.Repeat("x", 700), trim(strings.Repeat("x", 1000), 700))
}
