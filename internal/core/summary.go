package core

// DocumentChunk is a slice of a de-identified document, created per
// summarization call. CharStart/CharEnd are offsets into the clean text.
type DocumentChunk struct {
	SourceDocID string `json:"source_doc_id"`
	Index       int    `json:"index"`
	Text        string `json:"text"`
	CharStart   int    `json:"char_start"`
	CharEnd     int    `json:"char_end"`
}

// Snippet is a bounded excerpt with a citation that resolves back to a
// document id and character range.
type Snippet struct {
	Text           string  `json:"text"`
	Citation       string  `json:"citation"`
	RelevanceScore float64 `json:"relevance_score"`
}

type SummarySection struct {
	Title     string   `json:"title"`
	Bullets   []string `json:"bullets"`
	Citations []string `json:"citations"`
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for conflict resolution when merging risk flags.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

type RiskFlag struct {
	Code      string   `json:"code"`
	Severity  Severity `json:"severity"`
	Rationale string   `json:"rationale"`
	Citations []string `json:"citations"`
}

const (
	StyleClinical        = "clinical"
	StylePatientFriendly = "patient-friendly"
)

// SummaryDocument is the canonical summary. It is immutable once rendered;
// all markdown output derives deterministically from it.
type SummaryDocument struct {
	DocID             string           `json:"doc_id,omitempty"`
	Style             string           `json:"style"`
	Sections          []SummarySection `json:"sections"`
	Risks             []RiskFlag       `json:"risks"`
	RedactionsApplied bool             `json:"redactions_applied"`
	AllChunksFailed   bool             `json:"all_chunks_failed,omitempty"`
}

// ChatAnswer is the Q&A result returned to the caller.
type ChatAnswer struct {
	Answer      string   `json:"answer"`
	Citations   []string `json:"citations"`
	ContextUsed bool     `json:"context_used"`
}
