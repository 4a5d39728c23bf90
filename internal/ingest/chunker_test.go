// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "splits into fixed windows with remainder",
			text: "abcdefghij",
			size: 4,
			want: []string{"abcd", "efgh", "ij"},
		},
		{
			name: "exact multiple has no short tail",
			text: "abcdef",
			size: 3,
			want: []string{"abc", "def"},
		},
		{
			name: "short text is one chunk",
			text: "abc",
			size: 100,
			want: []string{"abc"},
		},
		{
			name: "empty text yields nothing",
			text: "",
			size: 4,
			want: nil,
		},
		{
			name: "whitespace-only text yields nothing",
			text: "   \n\t  ",
			size: 4,
			want: nil,
		},
		{
			name: "windows count runes not bytes",
			text: "日本語テキスト",
			size: 3,
			want: []string{"日本語", "テキス", "ト"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitChunks(tt.text, tt.size))
		})
	}
}

func TestSplitChunksDefaultSize(t *testing.T) {
	text := strings.Repeat("x", DefaultChunkSize+1)
	chunks := SplitChunks(text, 0)
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], DefaultChunkSize)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Paper (2021)", "my-paper-2021"},
		{"already-slugged", "already-slugged"},
		{"Weird___chars!!", "weird-chars"},
		{"  spaces  ", "spaces"},
		{"UPPER", "upper"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}
