// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slr-engine/internal/index"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// writeTriplet writes a consistent artifact triplet for stem into dir.
func writeTriplet(t *testing.T, dir, stem string, dim int, chunks []types.Chunk, vecs [][]float32) {
	t.Helper()

	data, err := yaml.Marshal(chunks)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ChunkFile(dir, stem), data, 0o644))

	require.NoError(t, index.WriteMatrix(MatrixFile(dir, stem), dim, vecs))

	idx, err := index.NewFlat(dim)
	require.NoError(t, err)
	require.NoError(t, idx.AddAll(vecs))
	require.NoError(t, idx.WriteFile(IndexFile(dir, stem)))
}

func TestLoadResources(t *testing.T) {
	dir := t.TempDir()
	writeTriplet(t, dir, "beta", 2, chunksOf("b0", "b1"), [][]float32{{0, 0}, {1, 1}})
	writeTriplet(t, dir, "alpha", 2, chunksOf("a0"), [][]float32{{2, 2}})

	resources, statuses, err := LoadResources(dir)
	require.NoError(t, err)
	require.Len(t, resources, 2)

	// Sorted by stem regardless of directory order.
	assert.Equal(t, "alpha", resources[0].Stem)
	assert.Equal(t, "beta", resources[1].Stem)
	assert.Equal(t, 2, resources[0].Dim)
	assert.Len(t, resources[1].Chunks, 2)

	require.Len(t, statuses, 2)
	for _, st := range statuses {
		assert.True(t, st.Used, st.Stem)
	}
}

func TestLoadResourcesMissingDir(t *testing.T) {
	resources, statuses, err := LoadResources(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, resources)
	assert.Nil(t, statuses)
}

func TestLoadResourcesSkipsIncompleteTriplet(t *testing.T) {
	dir := t.TempDir()
	writeTriplet(t, dir, "good", 2, chunksOf("g0"), [][]float32{{1, 1}})

	// A chunk file with no matrix or index.
	data, err := yaml.Marshal(chunksOf("orphan"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ChunkFile(dir, "orphan"), data, 0o644))

	resources, statuses, err := LoadResources(dir)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "good", resources[0].Stem)

	require.Len(t, statuses, 2)
	assert.Equal(t, "good", statuses[0].Stem)
	assert.True(t, statuses[0].Used)
	assert.Equal(t, "orphan", statuses[1].Stem)
	assert.False(t, statuses[1].Used)
	assert.NotEmpty(t, statuses[1].Reason)
}

func TestLoadResourcesSkipsCountMismatch(t *testing.T) {
	dir := t.TempDir()

	// Two chunks but only one indexed vector.
	data, err := yaml.Marshal(chunksOf("c0", "c1"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ChunkFile(dir, "short"), data, 0o644))
	require.NoError(t, index.WriteMatrix(MatrixFile(dir, "short"), 2, [][]float32{{1, 1}}))
	idx, err := index.NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1, 1}))
	require.NoError(t, idx.WriteFile(IndexFile(dir, "short")))

	resources, statuses, err := LoadResources(dir)
	require.NoError(t, err)
	assert.Empty(t, resources)

	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Used)
	assert.Contains(t, statuses[0].Reason, "chunk list")
}

func TestLoadResourcesSkipsMatrixIndexDisagreement(t *testing.T) {
	dir := t.TempDir()

	data, err := yaml.Marshal(chunksOf("c0"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ChunkFile(dir, "skewed"), data, 0o644))
	require.NoError(t, index.WriteMatrix(MatrixFile(dir, "skewed"), 3, [][]float32{{1, 1, 1}}))
	idx, err := index.NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add([]float32{1, 1}))
	require.NoError(t, idx.WriteFile(IndexFile(dir, "skewed")))

	resources, statuses, err := LoadResources(dir)
	require.NoError(t, err)
	assert.Empty(t, resources)

	require.Len(t, statuses, 1)
	assert.Contains(t, statuses[0].Reason, "dimension")
}

func TestLoadResourcesSkipsCorruptIndexHeader(t *testing.T) {
	dir := t.TempDir()
	writeTriplet(t, dir, "good", 2, chunksOf("g0"), [][]float32{{1, 1}})

	// A triplet whose index file carries a valid magic but garbage counts.
	data, err := yaml.Marshal(chunksOf("c0"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ChunkFile(dir, "corrupt"), data, 0o644))
	require.NoError(t, index.WriteMatrix(MatrixFile(dir, "corrupt"), 2, [][]float32{{1, 1}}))
	raw := []byte("SLRI")
	for _, v := range []uint32{1, 0xFFFFFFFF, 0xFFFFFFFF} {
		raw = binary.LittleEndian.AppendUint32(raw, v)
	}
	require.NoError(t, os.WriteFile(IndexFile(dir, "corrupt"), raw, 0o644))

	resources, statuses, err := LoadResources(dir)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "good", resources[0].Stem)

	require.Len(t, statuses, 2)
	assert.Equal(t, "corrupt", statuses[0].Stem)
	assert.False(t, statuses[0].Used)
	assert.Contains(t, statuses[0].Reason, "reading index")
}

func TestLoadResourcesLegacyScalarChunks(t *testing.T) {
	dir := t.TempDir()

	// Early chunk files stored bare strings.
	require.NoError(t, os.WriteFile(ChunkFile(dir, "legacy"),
		[]byte("- first\n- second\n"), 0o644))
	require.NoError(t, index.WriteMatrix(MatrixFile(dir, "legacy"), 2, [][]float32{{0, 0}, {1, 1}}))
	idx, err := index.NewFlat(2)
	require.NoError(t, err)
	require.NoError(t, idx.AddAll([][]float32{{0, 0}, {1, 1}}))
	require.NoError(t, idx.WriteFile(IndexFile(dir, "legacy")))

	resources, _, err := LoadResources(dir)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "first", resources[0].Chunks[0].Text)
	assert.Equal(t, "second", resources[0].Chunks[1].Text)
}
