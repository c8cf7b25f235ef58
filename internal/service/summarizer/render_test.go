package summarizer

import (
	"strings"
	"testing"

	"github.com/medivise/medivise/internal/core"
)

func sampleDoc() core.SummaryDocument {
	return core.SummaryDocument{
		DocID: "7",
		Style: core.StylePatientFriendly,
		Sections: []core.SummarySection{
			{Title: "Summary", Bullets: []string{"stable condition"}, Citations: []string{"L0-100"}},
			{Title: "Medications", Bullets: []string{"lisinopril 10mg daily", "metformin 500mg"}},
		},
		Risks: []core.RiskFlag{
			{Code: "MED-MONITORING", Severity: core.SeverityMedium, Rationale: "periodic kidney panel", Citations: []string{"L40-90"}},
		},
		RedactionsApplied: true,
	}
}

func TestRender_Deterministic(t *testing.T) {
	doc := sampleDoc()
	first := Render(doc)
	second := Render(doc)
	if first != second {
		t.Fatal("renderer output differs between identical inputs")
	}
}

func TestRender_NoDuplicateHeadings(t *testing.T) {
	out := Render(sampleDoc())

	seen := make(map[string]int)
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "## ") {
			seen[line]++
		}
	}
	for heading, count := range seen {
		if count > 1 {
			t.Errorf("heading %q appears %d times", heading, count)
		}
	}
}

func TestRender_FixedHeadingOrder(t *testing.T) {
	out := Render(sampleDoc())

	iSummary := strings.Index(out, "## Summary")
	iMeds := strings.Index(out, "## Medications")
	iRisks := strings.Index(out, "## Risks")
	if iSummary < 0 || iMeds < 0 || iRisks < 0 {
		t.Fatalf("missing headings in:\n%s", out)
	}
	if !(iSummary < iMeds && iMeds < iRisks) {
		t.Errorf("headings out of template order:\n%s", out)
	}
	if !strings.Contains(out, "- **MEDIUM** MED-MONITORING: periodic kidney panel") {
		t.Errorf("risk line not rendered as expected:\n%s", out)
	}
	if !strings.Contains(out, "redacted before processing") {
		t.Errorf("redaction notice missing:\n%s", out)
	}
}

func TestRender_SectionCitationsAsTrailingSet(t *testing.T) {
	// Merged sections carry fewer citations than bullets and neither
	// list keeps a pairwise correspondence, so citations render once
	// per section rather than attached to arbitrary bullets.
	doc := core.SummaryDocument{
		Style: core.StyleClinical,
		Sections: []core.SummarySection{
			{
				Title:     "Summary",
				Bullets:   []string{"first bullet", "second bullet", "third bullet"},
				Citations: []string{"L0-100", "L200-300", "L0-100"},
			},
		},
	}

	out := Render(doc)
	if !strings.Contains(out, "_Sources: L0-100, L200-300_") {
		t.Errorf("expected one deduplicated sources line:\n%s", out)
	}
	if strings.Contains(out, "first bullet _[") {
		t.Errorf("citation attached to an individual bullet:\n%s", out)
	}
	if strings.Count(out, "L0-100") != 1 {
		t.Errorf("duplicate citation rendered:\n%s", out)
	}
}

func TestRender_NonCanonicalTitlesFoldIntoKeyPoints(t *testing.T) {
	doc := core.SummaryDocument{
		Style: core.StyleClinical,
		Sections: []core.SummarySection{
			{Title: "Assessment And Plan", Bullets: []string{"continue current regimen"}},
		},
	}

	out := Render(doc)
	if strings.Contains(out, "## Assessment And Plan") {
		t.Errorf("model-controlled heading leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "## Key Points") {
		t.Errorf("expected bullets folded under Key Points:\n%s", out)
	}
	if !strings.Contains(out, "continue current regimen") {
		t.Errorf("bullet content lost:\n%s", out)
	}
}

func TestRender_AllChunksFailed(t *testing.T) {
	doc := core.SummaryDocument{Style: core.StyleClinical, AllChunksFailed: true}

	out := Render(doc)
	if !strings.Contains(out, "No content could be summarized") {
		t.Errorf("missing failure notice:\n%s", out)
	}
	if strings.Contains(out, "## ") {
		t.Errorf("failed document should carry no section headings:\n%s", out)
	}
}
