// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"regexp"
	"sort"
	"strconv"
)

// citationPattern matches numeric inline citations: [3] or [1; 4].
var citationPattern = regexp.MustCompile(`\[([\d;\s]+)\]`)

// CheckCitations scans generated text for [n] citation markers and returns
// the marker values outside 1..noteCount, sorted and deduplicated. The
// evidence-only rule is a prompt-level contract; this is the only
// mechanical check available against it.
func CheckCitations(text string, noteCount int) []int {
	seen := make(map[int]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		for _, part := range splitMarkers(m[1]) {
			id, err := strconv.Atoi(part)
			if err != nil {
				continue
			}
			if id < 1 || id > noteCount {
				seen[id] = true
			}
		}
	}

	var bad []int
	for id := range seen {
		bad = append(bad, id)
	}
	sort.Ints(bad)
	return bad
}

// splitMarkers splits a multi-citation body like "1; 4" into trimmed parts.
func splitMarkers(s string) []string {
	var parts []string
	start := -1
	for i, c := range s {
		switch {
		case c >= '0' && c <= '9':
			if start < 0 {
				start = i
			}
		default:
			if start >= 0 {
				parts = append(parts, s[start:i])
				start = -1
			}
		}
	}
	if start >= 0 {
		parts = append(parts, s[start:])
	}
	return parts
}
