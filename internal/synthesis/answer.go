// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis composes language-model output over retrieved evidence:
// per-question answers with inline citations, and the final structured
// review assembled from those answers.
package synthesis

import (
	"context"

	"github.com/pdiddy/slr-engine/internal/genai"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// Sampling parameters for the two synthesis stages. Answers and the final
// composition run cool; refinement follows the interactive default.
const (
	synthesisTemperature = 0.2
	refineTemperature    = 0.7
	answerMaxTokens      = 2200
	reportMaxTokens      = 7000
)

// AnswerQuestion synthesizes an answer to one research question from its
// evidence notes. The prompt constrains the model to cite notes by [id]
// and to report insufficient evidence rather than fabricate; that rule is
// enforced by instruction, not by output validation (see CheckCitations
// for the spot check).
func AnswerQuestion(ctx context.Context, backend genai.Backend, model, question string, notes []types.EvidenceNote, maxRetries int) (string, error) {
	prompt, err := render(answerPromptTmpl, struct {
		Question string
		Evidence string
	}{
		Question: question,
		Evidence: renderEvidence(notes),
	})
	if err != nil {
		return "", err
	}

	return genai.CompleteWithRetry(ctx, backend, genai.Request{
		Model: model,
		Messages: []genai.Message{
			{Role: "system", Content: answerSystem},
			{Role: "user", Content: prompt},
		},
		Temperature: synthesisTemperature,
		MaxTokens:   answerMaxTokens,
	}, maxRetries)
}
