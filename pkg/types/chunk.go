// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Chunk is the atomic retrievable unit of an ingested document. Text is
// required; all descriptive fields default to empty. Chunks are written once
// at ingestion time and never mutated.
type Chunk struct {
	// Text is the chunk body.
	Text string `json:"text" yaml:"text"`

	// Title is the source document title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Year is the publication year as it appeared in the source metadata.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Section is the heading under which the chunk was found.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// URL points at the source document.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// SourceID is the acquisition slug of the source document.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`
}

// UnmarshalYAML accepts both chunk file formats: a bare scalar string (early
// ingestion runs stored chunks as plain strings) and a mapping with text and
// optional descriptive fields. Both decode to the same defaulted-field view.
func (c *Chunk) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		c.Text = value.Value
		c.Title, c.Year, c.Section, c.URL, c.SourceID = "", "", "", "", ""
		return nil
	case yaml.MappingNode:
		type plain Chunk
		var p plain
		if err := value.Decode(&p); err != nil {
			return fmt.Errorf("decoding chunk mapping: %w", err)
		}
		*c = Chunk(p)
		return nil
	default:
		return fmt.Errorf("chunk must be a string or mapping, got yaml kind %d", value.Kind)
	}
}

// IsEmpty reports whether the chunk has no usable text.
func (c Chunk) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Meta returns the chunk's descriptive fields without the body text.
func (c Chunk) Meta() ChunkMeta {
	return ChunkMeta{
		Title:    c.Title,
		Year:     c.Year,
		Section:  c.Section,
		URL:      c.URL,
		SourceID: c.SourceID,
	}
}

// ChunkMeta carries a chunk's descriptive fields into retrieval results.
type ChunkMeta struct {
	Title    string `json:"title" yaml:"title"`
	Year     string `json:"year" yaml:"year"`
	Section  string `json:"section" yaml:"section"`
	URL      string `json:"url" yaml:"url"`
	SourceID string `json:"source_id" yaml:"source_id"`
}

// EvidenceNote is a ranked, trimmed retrieval result. NoteID is a 1-based
// citation number assigned after final selection and is local to one
// retrieval call: two calls may hand out the same numeral for different
// sources. PaperKey groups notes from the same document for the per-document
// diversity cap and for the reference list.
type EvidenceNote struct {
	// NoteID is the local citation number, 1..N within one retrieval call.
	NoteID int `json:"note_id" yaml:"note_id"`

	// PaperKey identifies the source document.
	PaperKey string `json:"paper_key" yaml:"paper_key"`

	// Text is the chunk text truncated to the configured trim bound.
	Text string `json:"text" yaml:"text"`

	// Meta holds the source chunk's descriptive fields.
	Meta ChunkMeta `json:"meta" yaml:"meta"`

	// Score ranks the note; higher is more relevant. It is the negated
	// vector distance, so ordering matches ascending distance.
	Score float64 `json:"score" yaml:"score"`
}
