// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResearchQuestion pairs a review question with the purpose statement
// explaining its significance.
type ResearchQuestion struct {
	// Question is the research question text.
	Question string `json:"question" yaml:"question"`

	// Purpose explains why the question matters for the review.
	Purpose string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

// QuestionsFile holds the research questions for a project, as written by
// `slr-engine plan questions` and read by `slr-engine report`.
type QuestionsFile struct {
	// Objective is the research objective the questions were derived from.
	Objective string `json:"objective,omitempty" yaml:"objective,omitempty"`

	// ResearchQuestions lists the questions in review order.
	ResearchQuestions []ResearchQuestion `json:"research_questions" yaml:"research_questions"`
}

// Questions returns the bare question strings in order.
func (f QuestionsFile) Questions() []string {
	qs := make([]string, 0, len(f.ResearchQuestions))
	for _, rq := range f.ResearchQuestions {
		qs = append(qs, rq.Question)
	}
	return qs
}

// ReportSection is one research question's block of the final report: the
// question, the synthesized answer text, and the evidence notes the answer
// cites. Citation markers [n] inside Answer resolve against Notes by NoteID
// and are valid only within this section.
type ReportSection struct {
	Question string         `json:"question" yaml:"question"`
	Answer   string         `json:"answer" yaml:"answer"`
	Notes    []EvidenceNote `json:"notes" yaml:"notes"`
}

// ReportSource is a flattened entry in a report's source listing, one per
// distinct (question, document) pairing.
type ReportSource struct {
	Question string `json:"question" yaml:"question"`
	Title    string `json:"title" yaml:"title"`
	Year     string `json:"year,omitempty" yaml:"year,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	PaperKey string `json:"paper_key" yaml:"paper_key"`
}

// Report is a completed systematic literature review draft.
type Report struct {
	// Objective is the research objective the review addresses.
	Objective string `json:"objective" yaml:"objective"`

	// Questions lists the research questions in review order.
	Questions []string `json:"questions" yaml:"questions"`

	// Text is the full generated document.
	Text string `json:"text" yaml:"text"`

	// Sections holds the per-question answers and their evidence notes.
	Sections []ReportSection `json:"sections" yaml:"sections"`

	// Sources is the deduplicated flat listing of cited documents.
	Sources []ReportSource `json:"sources" yaml:"sources"`
}
