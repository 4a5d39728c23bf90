// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/slr-engine/pkg/types"
)

// Prompt-size bounds for the landscape overview. The overview orients the
// introduction; it is deliberately not exhaustive.
const (
	maxOverviewAbstracts = 40
	abstractTrim         = 400
)

// answerSystem instructs the per-question synthesis persona.
const answerSystem = "You are an exacting SLR writer. Be precise; cite with [#]."

// answerPromptTmpl renders the per-question synthesis request. Evidence
// notes are pre-rendered in note-ID order; an empty evidence block is the
// literal "None." so the request never silently omits the section.
var answerPromptTmpl = template.Must(template.New("answer").Parse(`Research Question: {{.Question}}

Evidence Notes (cite with [#] using the note IDs):
{{.Evidence}}

Write:
- A 400-700 word synthesis integrating patterns/contradictions across the notes, with in-text citations [#].
- A short **Answer:** paragraph directly answering the research question (2-4 sentences).
- A brief 'Limitations for this question'.

Rules:
- Use ONLY the evidence provided.
- If a claim isn't supported by the notes, say the evidence is insufficient.
- No invented numbers or external sources.
`))

// reportSystem instructs the final composition persona.
const reportSystem = "You are an exacting SLR author following Kitchenham & Charters."

// reportPromptTmpl renders the final report composition request. The
// per-question answer texts arrive verbatim with their [#] citations
// already embedded; the reference entries are scoped per question, so the
// same numeral may map to different sources in different sections.
var reportPromptTmpl = template.Must(template.New("report").Parse(`Objective:
{{.Objective}}

Research Questions:
{{.QuestionList}}

--- INTRO INPUT (Abstracts overview; do NOT cite [#] here) ---
{{.AbstractsOverview}}

--- RESULTS INPUT (Per-question texts already include [#] citations) ---
{{.ResultsBlocks}}

--- REFERENCES INPUT (map [#] to these entries; scoped per question) ---
{{.References}}

Now produce the final SLR with:

1. Abstract (150-250 words)
2. Introduction (use abstracts overview; no [#])
3. Method (SLR Protocol): uploaded corpus; semantic vector retrieval; selection; inclusion/exclusion; quality appraisal; data extraction & synthesis.
4. Results (by research question): keep the [#] in-text citations; end each with **Answer:**.
5. Discussion (implications; contradictions; gaps)
6. Threats to Validity
7. Limitations & Future Work
8. Conclusion
9. References: list only entries that appeared with [#].

Rules:
- Do NOT fabricate references; use only provided entries.
- Academic tone; specific and descriptive.
`))

// refinePromptTmpl renders a report refinement request.
var refinePromptTmpl = template.Must(template.New("refine").Parse(`Below is a research report previously generated:

{{.Report}}

Based on the following user feedback or refinement instruction:
"{{.Feedback}}"

Please adjust and improve the report accordingly, while preserving structure and coherence.
`))

// renderEvidence formats notes as numbered evidence blocks in note-ID
// order. Empty input yields the literal placeholder "None.".
func renderEvidence(notes []types.EvidenceNote) string {
	if len(notes) == 0 {
		return "None."
	}
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("[%d] (title: %s; year: %s; section: %s)\n%s",
			n.NoteID, n.Meta.Title, n.Meta.Year, n.Meta.Section, n.Text))
	}
	return strings.Join(lines, "\n\n")
}

// renderReference formats one reference-list entry. Year and URL appear
// only when non-empty; a missing title falls back to the paper key.
func renderReference(n types.EvidenceNote) string {
	title := strings.TrimSpace(n.Meta.Title)
	if title == "" {
		title = "Paper " + n.PaperKey
	}
	ref := fmt.Sprintf("[%d] %s", n.NoteID, title)
	if year := strings.TrimSpace(n.Meta.Year); year != "" {
		ref += fmt.Sprintf(" (%s)", year)
	}
	if url := strings.TrimSpace(n.Meta.URL); url != "" {
		ref += ". " + url
	}
	return ref
}

// renderQuestionList formats the numbered research question listing.
func renderQuestionList(questions []string) string {
	lines := make([]string, 0, len(questions))
	for i, q := range questions {
		lines = append(lines, fmt.Sprintf("- RQ%d: %s", i+1, q))
	}
	return strings.Join(lines, "\n")
}

// renderOverview formats the landscape overview: at most
// maxOverviewAbstracts abstracts, each hard-truncated to abstractTrim
// characters.
func renderOverview(abstracts []string) string {
	if len(abstracts) > maxOverviewAbstracts {
		abstracts = abstracts[:maxOverviewAbstracts]
	}
	lines := make([]string, 0, len(abstracts))
	for _, a := range abstracts {
		runes := []rune(a)
		if len(runes) > abstractTrim {
			a = string(runes[:abstractTrim])
		}
		lines = append(lines, "- "+a)
	}
	return strings.Join(lines, "\n")
}

// render executes tmpl with data.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
