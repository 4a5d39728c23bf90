// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import "strings"

// DefaultChunkSize bounds one chunk in runes. Sized so a chunk stays well
// inside the embedding model's input window.
const DefaultChunkSize = 4000

// SplitChunks cuts text into fixed-size rune windows. The final window
// carries the remainder; windows are never rebalanced on word boundaries.
// Empty or whitespace-only text yields no chunks.
func SplitChunks(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Slugify derives an artifact name stem from a document name: lowercase,
// alphanumerics kept, everything else collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
