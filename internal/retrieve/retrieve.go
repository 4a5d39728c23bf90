// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"sort"

	"github.com/pdiddy/slr-engine/internal/embed"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// overfetchFactor controls how many neighbors are requested per document
// relative to the per-document cap. Over-fetching lets diversification
// discard weaker same-document hits without a second search.
const overfetchFactor = 4

// Options bounds one retrieval call.
type Options struct {
	// TotalPassages is the maximum number of notes returned.
	TotalPassages int

	// MaxPerDoc caps how many notes one document may contribute.
	MaxPerDoc int

	// Trim is the hard character bound applied to each note's text. The
	// cut ignores word boundaries; downstream synthesis tolerates mid-word
	// truncation.
	Trim int
}

// DefaultOptions mirrors the tuned report-generation values: 12-36 total
// passages is the typical range, two per document keeps sources diverse,
// and 700 characters keeps notes compact.
func DefaultOptions() Options {
	return Options{TotalPassages: 24, MaxPerDoc: 2, Trim: 700}
}

// OptionsFromConfig builds Options from config, substituting defaults for
// unset fields.
func OptionsFromConfig(cfg types.RetrievalConfig) Options {
	opts := DefaultOptions()
	if cfg.TotalPassages > 0 {
		opts.TotalPassages = cfg.TotalPassages
	}
	if cfg.MaxPerDoc > 0 {
		opts.MaxPerDoc = cfg.MaxPerDoc
	}
	if cfg.Trim > 0 {
		opts.Trim = cfg.Trim
	}
	return opts
}

// Retrieve embeds query and returns a ranked, diversified, trimmed list of
// evidence notes drawn from resources.
//
// Candidates from every compatible resource are ranked globally by score
// (negated squared-L2 distance, higher is better), then selected greedily
// under the per-document cap until TotalPassages notes are kept. NoteIDs
// are the 1-based positions in the kept list and are local to this call.
//
// Resources whose dimension differs from the query embedding are skipped,
// not failed: a project may mix documents indexed under different embedding
// models over time. Skips are reported in the returned statuses. An
// embedding failure aborts the call with *embed.Error and no partial
// results. Empty resources yield an empty note list and a nil error.
func Retrieve(ctx context.Context, provider embed.Provider, resources []Resource, query string, opts Options) ([]types.EvidenceNote, []ResourceStatus, error) {
	qvec, err := provider.Embed(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	type candidate struct {
		paperKey string
		text     string
		meta     types.ChunkMeta
		score    float64
	}

	var candidates []candidate
	statuses := make([]ResourceStatus, 0, len(resources))

	for _, res := range resources {
		if res.Dim != len(qvec) {
			statuses = append(statuses, ResourceStatus{
				Stem:   res.Stem,
				Reason: "dimension mismatch with query embedding",
			})
			continue
		}
		statuses = append(statuses, ResourceStatus{Stem: res.Stem, Used: true})

		hits, err := res.Index.Search(qvec, opts.MaxPerDoc*overfetchFactor)
		if err != nil {
			// Dimension was checked above; treat anything else as a
			// malformed resource and keep going.
			statuses[len(statuses)-1] = ResourceStatus{Stem: res.Stem, Reason: err.Error()}
			continue
		}

		for _, hit := range hits {
			if hit.ID < 0 || hit.ID >= len(res.Chunks) {
				continue
			}
			chunk := res.Chunks[hit.ID]
			if chunk.Text == "" {
				continue
			}

			meta := chunk.Meta()
			paperKey := res.Stem
			if paperKey == "" {
				paperKey = meta.SourceID
			}

			candidates = append(candidates, candidate{
				paperKey: paperKey,
				text:     trim(chunk.Text, opts.Trim),
				meta:     meta,
				score:    -float64(hit.Distance),
			})
		}
	}

	// Global ranking across all resources. The stable sort makes resource
	// scan order the tie-break, so identical inputs produce identical
	// output ordering.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var kept []types.EvidenceNote
	perPaper := make(map[string]int)
	for _, c := range candidates {
		if perPaper[c.paperKey] >= opts.MaxPerDoc {
			continue
		}
		kept = append(kept, types.EvidenceNote{
			PaperKey: c.paperKey,
			Text:     c.text,
			Meta:     c.meta,
			Score:    c.score,
		})
		perPaper[c.paperKey]++
		if len(kept) >= opts.TotalPassages {
			break
		}
	}

	for i := range kept {
		kept[i].NoteID = i + 1
	}

	return kept, statuses, nil
}

// trim cuts s to at most n runes. The bound is a hard boundary with no
// word-boundary awareness.
func trim(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
