// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat answers free-form questions over a project's corpus: plain
// top-k retrieval (no per-document diversification, unlike report
// generation) with the matched chunks supplied as context.
package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/slr-engine/internal/embed"
	"github.com/pdiddy/slr-engine/internal/genai"
	"github.com/pdiddy/slr-engine/internal/retrieve"
)

const chatTemperature = 0.3

// DefaultTopK is the context passage count when none is configured.
const DefaultTopK = 5

// Answer holds a chat response and the passages it was grounded on.
type Answer struct {
	Text    string   `json:"answer"`
	Context []string `json:"context"`
}

// Ask embeds question, collects the topK closest chunks across all
// compatible resources, and asks the generation service to answer from
// that context. Resources with a mismatched dimension are skipped.
func Ask(ctx context.Context, provider embed.Provider, backend genai.Backend, resources []retrieve.Resource, question, model string, topK, maxRetries int) (*Answer, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	qvec, err := provider.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	type hit struct {
		distance float32
		text     string
	}
	var hits []hit

	for _, res := range resources {
		if res.Dim != len(qvec) {
			continue
		}
		results, err := res.Index.Search(qvec, topK)
		if err != nil {
			continue
		}
		for _, r := range results {
			if r.ID < 0 || r.ID >= len(res.Chunks) {
				continue
			}
			text := res.Chunks[r.ID].Text
			if text == "" {
				continue
			}
			hits = append(hits, hit{distance: r.Distance, text: text})
		}
	}

	// Keep the topK closest across all documents; ties break by resource
	// scan order.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if len(hits) > topK {
		hits = hits[:topK]
	}

	passages := make([]string, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, h.text)
	}

	prompt := fmt.Sprintf(`You are an expert assistant. Use the following context to answer the user's question.

Context:
%s

Question:
%s

Answer:
`, strings.Join(passages, "\n\n"), question)

	text, err := genai.CompleteWithRetry(ctx, backend, genai.Request{
		Model: model,
		Messages: []genai.Message{
			{Role: "system", Content: "You are a helpful research assistant."},
			{Role: "user", Content: prompt},
		},
		Temperature: chatTemperature,
	}, maxRetries)
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Context: passages}, nil
}
