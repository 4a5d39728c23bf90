// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/slr-engine/internal/genai"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// ComposeInput carries everything the final composition needs: the
// objective, the ordered questions, corpus abstracts for the landscape
// overview, and the per-question sections with their evidence notes.
type ComposeInput struct {
	Objective string
	Questions []string
	Abstracts []string
	Sections  []types.ReportSection
}

// ComposeReport assembles the full review document from per-question
// sections. Answer texts pass through verbatim with their [id] citations;
// the consolidated reference list is deduplicated by exact rendered-string
// equality in first-seen order. Note IDs are scoped per section, so the
// reference list must be read per section as well; composition preserves
// that scoping rather than renumbering.
func ComposeReport(ctx context.Context, backend genai.Backend, model string, input ComposeInput, maxRetries int) (string, error) {
	objective := input.Objective
	if objective == "" {
		objective = "N/A"
	}

	var resultsBlocks []string
	var refs []string
	for i, sec := range input.Sections {
		resultsBlocks = append(resultsBlocks,
			fmt.Sprintf("### RQ%d: %s\n\n%s\n", i+1, sec.Question, sec.Answer))
		for _, n := range sec.Notes {
			refs = append(refs, renderReference(n))
		}
	}

	seen := make(map[string]bool)
	var uniqueRefs []string
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		uniqueRefs = append(uniqueRefs, r)
	}

	prompt, err := render(reportPromptTmpl, struct {
		Objective         string
		QuestionList      string
		AbstractsOverview string
		ResultsBlocks     string
		References        string
	}{
		Objective:         objective,
		QuestionList:      renderQuestionList(input.Questions),
		AbstractsOverview: renderOverview(input.Abstracts),
		ResultsBlocks:     strings.Join(resultsBlocks, "\n"),
		References:        strings.Join(uniqueRefs, "\n"),
	})
	if err != nil {
		return "", err
	}

	return genai.CompleteWithRetry(ctx, backend, genai.Request{
		Model: model,
		Messages: []genai.Message{
			{Role: "system", Content: reportSystem},
			{Role: "user", Content: prompt},
		},
		Temperature: synthesisTemperature,
		MaxTokens:   reportMaxTokens,
	}, maxRetries)
}

// RefineReport rewrites an existing report per the user's feedback while
// preserving its structure.
func RefineReport(ctx context.Context, backend genai.Backend, model, report, feedback string, maxRetries int) (string, error) {
	prompt, err := render(refinePromptTmpl, struct {
		Report   string
		Feedback string
	}{Report: report, Feedback: feedback})
	if err != nil {
		return "", err
	}

	return genai.CompleteWithRetry(ctx, backend, genai.Request{
		Model: model,
		Messages: []genai.Message{
			{Role: "system", Content: "You are a skilled academic assistant helping refine research reports."},
			{Role: "user", Content: prompt},
		},
		Temperature: refineTemperature,
	}, maxRetries)
}
