// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Binary layouts share a fixed header: 4-byte magic, uint32 version, uint32
// dim, uint32 count, followed by count*dim little-endian float32 values.
// The index file and the embedding matrix file carry distinct magics so a
// swapped triplet member fails loudly instead of decoding garbage.
const (
	indexMagic  = "SLRI"
	matrixMagic = "SLRM"
	fileVersion = 1
	headerSize  = 4 + 3*4
)

// WriteFile serializes the index to path atomically: the bytes go to a
// temp file in the same directory which is then renamed over path, so a
// concurrent reader never observes a partial write.
func (f *Flat) WriteFile(path string) error {
	return atomicWrite(path, func(w io.Writer) error {
		return writeVectors(w, indexMagic, f.dim, f.data)
	})
}

// ReadFile deserializes an index written by WriteFile. It validates the
// header and that the payload length matches dim*count.
func ReadFile(path string) (*Flat, error) {
	dim, data, err := readVectors(path, indexMagic)
	if err != nil {
		return nil, err
	}
	return &Flat{dim: dim, data: data}, nil
}

// WriteMatrix serializes an embedding matrix (row-major, one row per chunk)
// to path atomically.
func WriteMatrix(path string, dim int, vecs [][]float32) error {
	flat := make([]float32, 0, len(vecs)*dim)
	for i, v := range vecs {
		if len(v) != dim {
			return fmt.Errorf("row %d: dimension %d does not match %d", i, len(v), dim)
		}
		flat = append(flat, v...)
	}
	return atomicWrite(path, func(w io.Writer) error {
		return writeVectors(w, matrixMagic, dim, flat)
	})
}

// ReadMatrix reads a matrix written by WriteMatrix, returning its dimension
// and row count without materializing per-row slices.
func ReadMatrix(path string) (dim, count int, err error) {
	dim, data, err := readVectors(path, matrixMagic)
	if err != nil {
		return 0, 0, err
	}
	return dim, len(data) / dim, nil
}

func writeVectors(w io.Writer, magic string, dim int, data []float32) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	count := 0
	if dim > 0 {
		count = len(data) / dim
	}
	for _, v := range []uint32{fileVersion, uint32(dim), uint32(count)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, data)
}

func readVectors(path, wantMagic string) (int, []float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return 0, nil, fmt.Errorf("reading %s header: %w", path, err)
	}
	if string(magic) != wantMagic {
		return 0, nil, fmt.Errorf("%s: unexpected magic %q, want %q", path, magic, wantMagic)
	}

	var version, dim, count uint32
	for _, p := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return 0, nil, fmt.Errorf("reading %s header: %w", path, err)
		}
	}
	if version != fileVersion {
		return 0, nil, fmt.Errorf("%s: unsupported version %d", path, version)
	}
	if dim == 0 {
		return 0, nil, fmt.Errorf("%s: zero dimension", path)
	}

	// The header's counts are untrusted; size the allocation from the file
	// itself so a corrupt header cannot demand an absurd slice.
	info, err := file.Stat()
	if err != nil {
		return 0, nil, fmt.Errorf("reading %s header: %w", path, err)
	}
	payload := info.Size() - headerSize
	if payload < 0 || payload%4 != 0 {
		return 0, nil, fmt.Errorf("%s: payload truncated mid-value", path)
	}
	want := uint64(dim) * uint64(count)
	if got := uint64(payload) / 4; got != want {
		if got > want {
			return 0, nil, fmt.Errorf("%s: payload longer than header declares", path)
		}
		return 0, nil, fmt.Errorf("%s: header declares %d values but file holds %d", path, want, got)
	}

	data := make([]float32, int(want))
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return 0, nil, fmt.Errorf("reading %s payload: %w", path, err)
	}

	return int(dim), data, nil
}

// atomicWrite writes via a temp file in path's directory and renames it
// into place. Ingestion rewrites of a live triplet member must never be
// observable half-written by a concurrent retrieval.
func atomicWrite(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
