package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medivise/medivise/internal/core"
)

// partialSummary is one chunk's structured contribution.
type partialSummary struct {
	Sections []core.SummarySection `json:"sections"`
	Risks    []core.RiskFlag       `json:"risks"`
}

// parsePartial parses a model response into a partial summary. The model
// is schema-agnostic: responses may carry markdown fences, commentary, or
// truncated JSON. Repair is bounded — strip fences, then take the first
// balanced JSON object — and failure is a chunk-scoped ErrSchemaRepair,
// never an abort of the whole run.
func parsePartial(content string) (*partialSummary, error) {
	content = stripFences(content)

	var p partialSummary
	if err := json.Unmarshal([]byte(content), &p); err == nil {
		normalize(&p)
		return &p, nil
	}

	obj := firstBalancedObject(content)
	if obj == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", core.ErrSchemaRepair)
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSchemaRepair, err)
	}
	normalize(&p)
	return &p, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// firstBalancedObject scans for the first brace-balanced JSON object,
// respecting string literals and escapes.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func normalize(p *partialSummary) {
	for i := range p.Risks {
		switch core.Severity(strings.ToLower(string(p.Risks[i].Severity))) {
		case core.SeverityHigh:
			p.Risks[i].Severity = core.SeverityHigh
		case core.SeverityMedium:
			p.Risks[i].Severity = core.SeverityMedium
		default:
			p.Risks[i].Severity = core.SeverityLow
		}
		if p.Risks[i].Code == "" {
			p.Risks[i].Code = "UNKNOWN"
		}
	}
}
