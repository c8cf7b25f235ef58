package summarizer

import (
	"strings"

	"github.com/medivise/medivise/internal/core"
)

// Render maps a canonical summary to markdown. Pure and deterministic:
// identical input always yields byte-identical output. Heading text comes
// from the fixed template only — the model controls bullet content, never
// headings — so duplicate or garbled headings cannot occur.
func Render(doc core.SummaryDocument) string {
	var b strings.Builder

	b.WriteString("# Document Summary\n")

	if doc.AllChunksFailed {
		b.WriteString("\n_No content could be summarized from this document._\n")
		return b.String()
	}

	byTitle := make(map[string]core.SummarySection, len(doc.Sections))
	var extras []core.SummarySection
	for _, sec := range doc.Sections {
		if isCanonical(sec.Title) {
			byTitle[sec.Title] = sec
		} else {
			extras = append(extras, sec)
		}
	}

	for _, title := range sectionOrder {
		sec, ok := byTitle[title]
		if title == sectionKeyPoints {
			// Hand-built documents may carry non-canonical titles;
			// their bullets fold into Key Points rather than
			// minting new headings.
			for _, extra := range extras {
				sec.Bullets = append(sec.Bullets, extra.Bullets...)
				sec.Citations = append(sec.Citations, extra.Citations...)
				ok = true
			}
		}
		if !ok || len(sec.Bullets) == 0 {
			continue
		}

		b.WriteString("\n## ")
		b.WriteString(title)
		b.WriteString("\n\n")
		for _, bullet := range sec.Bullets {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(bullet))
			b.WriteByte('\n')
		}
		// Citations are merged per section, not attributable to
		// individual bullets, so they render as one trailing set.
		if cites := unionCitations(nil, sec.Citations); len(cites) > 0 {
			b.WriteString("\n_Sources: ")
			b.WriteString(strings.Join(cites, ", "))
			b.WriteString("_\n")
		}
	}

	if len(doc.Risks) > 0 {
		b.WriteString("\n## Risks\n\n")
		for _, risk := range doc.Risks {
			b.WriteString("- **")
			b.WriteString(strings.ToUpper(string(risk.Severity)))
			b.WriteString("** ")
			b.WriteString(risk.Code)
			if risk.Rationale != "" {
				b.WriteString(": ")
				b.WriteString(strings.TrimSpace(risk.Rationale))
			}
			if len(risk.Citations) > 0 {
				b.WriteString(" _[")
				b.WriteString(strings.Join(risk.Citations, ", "))
				b.WriteString("]_")
			}
			b.WriteByte('\n')
		}
	}

	if doc.RedactionsApplied {
		b.WriteString("\n_Identifying information was redacted before processing._\n")
	}

	return b.String()
}

func isCanonical(title string) bool {
	for _, t := range sectionOrder {
		if t == title {
			return true
		}
	}
	return false
}
