// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCitations(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		noteCount int
		want      []int
	}{
		{
			name:      "all in range",
			text:      "Finding [1] and [2], confirmed by [3].",
			noteCount: 3,
			want:      nil,
		},
		{
			name:      "out of range",
			text:      "Claim [5] contradicts [1].",
			noteCount: 3,
			want:      []int{5},
		},
		{
			name:      "zero is out of range",
			text:      "See [0].",
			noteCount: 3,
			want:      []int{0},
		},
		{
			name:      "multi-citation markers",
			text:      "Several studies [1; 9] agree [2;10].",
			noteCount: 4,
			want:      []int{9, 10},
		},
		{
			name:      "duplicates reported once, sorted",
			text:      "[9] then [7] then [9] again.",
			noteCount: 2,
			want:      []int{7, 9},
		},
		{
			name:      "no citations",
			text:      "Plain prose without markers.",
			noteCount: 3,
			want:      nil,
		},
		{
			name:      "non-numeric brackets ignored",
			text:      "See [ref] and [Smith 2020].",
			noteCount: 1,
			want:      nil,
		},
		{
			name:      "no notes makes every citation invalid",
			text:      "Evidence [1] here.",
			noteCount: 0,
			want:      []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckCitations(tt.text, tt.noteCount))
		})
	}
}
