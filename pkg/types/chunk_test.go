// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestChunkUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want []Chunk
	}{
		{
			name: "bare scalar strings",
			yaml: "- first chunk\n- second chunk\n",
			want: []Chunk{
				{Text: "first chunk"},
				{Text: "second chunk"},
			},
		},
		{
			name: "mappings with metadata",
			yaml: `
- text: body text
  title: A Study
  year: "2021"
  section: Methods
  url: https://example.com/paper
  source_id: a-study
`,
			want: []Chunk{{
				Text:     "body text",
				Title:    "A Study",
				Year:     "2021",
				Section:  "Methods",
				URL:      "https://example.com/paper",
				SourceID: "a-study",
			}},
		},
		{
			name: "mapping with only text defaults the rest",
			yaml: "- text: just text\n",
			want: []Chunk{{Text: "just text"}},
		},
		{
			name: "mixed scalar and mapping entries",
			yaml: `
- plain string chunk
- text: mapped chunk
  title: T
`,
			want: []Chunk{
				{Text: "plain string chunk"},
				{Text: "mapped chunk", Title: "T"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Chunk
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunkUnmarshalYAMLRejectsSequence(t *testing.T) {
	var got []Chunk
	err := yaml.Unmarshal([]byte("- [nested, sequence]\n"), &got)
	assert.Error(t, err)
}

func TestChunkIsEmpty(t *testing.T) {
	assert.True(t, Chunk{}.IsEmpty())
	assert.True(t, Chunk{Text: "   \n\t"}.IsEmpty())
	assert.False(t, Chunk{Text: "x"}.IsEmpty())
}

func TestChunkMeta(t *testing.T) {
	c := Chunk{
		Text:     "body",
		Title:    "T",
		Year:     "1999",
		Section:  "Intro",
		URL:      "u",
		SourceID: "s",
	}
	meta := c.Meta()
	assert.Equal(t, ChunkMeta{Title: "T", Year: "1999", Section: "Intro", URL: "u", SourceID: "s"}, meta)
}

func TestQuestionsFileQuestions(t *testing.T) {
	qf := QuestionsFile{
		Objective: "obj",
		ResearchQuestions: []ResearchQuestion{
			{Question: "q1", Purpose: "p1"},
			{Question: "q2"},
		},
	}
	assert.Equal(t, []string{"q1", "q2"}, qf.Questions())
	assert.Empty(t, QuestionsFile{}.Questions())
}
