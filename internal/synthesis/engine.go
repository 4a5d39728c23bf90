// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/slr-engine/internal/embed"
	"github.com/pdiddy/slr-engine/internal/genai"
	"github.com/pdiddy/slr-engine/internal/retrieve"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// ErrNoResources means the project has no usable retrieval artifacts;
// report generation fails fast rather than synthesize with no evidence.
var ErrNoResources = errors.New("no retrieval resources found; ingest documents and build indexes first")

// ErrNoQuestions means the research question list was empty.
var ErrNoQuestions = errors.New("no research questions provided")

// Engine runs the full report pipeline. Construct it once with its
// external clients and pass it by reference; it holds no mutable state.
type Engine struct {
	Provider   embed.Provider
	Backend    genai.Backend
	Model      string
	MaxRetries int
	Retrieval  retrieve.Options
}

// GenerateReport produces a complete review: per-question retrieval and
// synthesis in question order, then final composition with a landscape
// overview from abstracts.
//
// The call is sequential and atomic: any embedding or generation failure
// aborts the whole report with no partial result, and the caller re-invokes
// from scratch. Worst-case latency is proportional to the question count
// times the generation round trip, so callers should bound ctx. Progress
// and skipped-resource lines go to w.
func (e *Engine) GenerateReport(ctx context.Context, resources []retrieve.Resource, objective string, questions, abstracts []string, w io.Writer) (*types.Report, error) {
	if len(resources) == 0 {
		return nil, ErrNoResources
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	report := &types.Report{
		Objective: objective,
		Questions: questions,
	}

	for i, question := range questions {
		fmt.Fprintf(w, "retrieving RQ%d: %s\n", i+1, question)

		notes, statuses, err := retrieve.Retrieve(ctx, e.Provider, resources, question, e.Retrieval)
		if err != nil {
			return nil, fmt.Errorf("retrieving evidence for RQ%d: %w", i+1, err)
		}
		for _, st := range statuses {
			if !st.Used {
				fmt.Fprintf(w, "  skipped %s: %s\n", st.Stem, st.Reason)
			}
		}
		fmt.Fprintf(w, "  %d notes, synthesizing\n", len(notes))

		answer, err := AnswerQuestion(ctx, e.Backend, e.Model, question, notes, e.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("synthesizing RQ%d: %w", i+1, err)
		}

		if bad := CheckCitations(answer, len(notes)); len(bad) > 0 {
			fmt.Fprintf(w, "  warning: RQ%d cites unknown notes %v\n", i+1, bad)
		}

		report.Sections = append(report.Sections, types.ReportSection{
			Question: question,
			Answer:   answer,
			Notes:    notes,
		})
	}

	fmt.Fprintln(w, "composing final report")
	text, err := ComposeReport(ctx, e.Backend, e.Model, ComposeInput{
		Objective: objective,
		Questions: questions,
		Abstracts: abstracts,
		Sections:  report.Sections,
	}, e.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("composing report: %w", err)
	}
	report.Text = text
	report.Sources = collectSources(report.Sections)

	return report, nil
}

// collectSources flattens every section's notes into a deduplicated source
// listing in first-seen order.
func collectSources(sections []types.ReportSection) []types.ReportSource {
	var sources []types.ReportSource
	seen := make(map[types.ReportSource]bool)
	for _, sec := range sections {
		for _, n := range sec.Notes {
			title := n.Meta.Title
			if title == "" {
				title = "Paper " + n.PaperKey
			}
			src := types.ReportSource{
				Question: sec.Question,
				Title:    title,
				Year:     n.Meta.Year,
				URL:      n.Meta.URL,
				PaperKey: n.PaperKey,
			}
			if seen[src] {
				continue
			}
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}
