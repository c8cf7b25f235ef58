package summarizer

import (
	"strings"

	"github.com/medivise/medivise/internal/core"
)

// Canonical section titles, in render order. Reduce folds every model
// title into one of these, so the canonical document can never contain
// two sections with the same heading.
const (
	sectionSummary      = "Summary"
	sectionKeyPoints    = "Key Points"
	sectionMedications  = "Medications"
	sectionInstructions = "Instructions"
)

var sectionOrder = []string{sectionSummary, sectionKeyPoints, sectionMedications, sectionInstructions}

var titleAliases = map[string]string{
	"summary":               sectionSummary,
	"overview":              sectionSummary,
	"main findings":         sectionSummary,
	"findings":              sectionSummary,
	"diagnosis":             sectionSummary,
	"key points":            sectionKeyPoints,
	"highlights":            sectionKeyPoints,
	"important information": sectionKeyPoints,
	"medications":           sectionMedications,
	"medication":            sectionMedications,
	"medicines":             sectionMedications,
	"drugs":                 sectionMedications,
	"prescriptions":         sectionMedications,
	"instructions":          sectionInstructions,
	"precautions":           sectionInstructions,
	"recommendations":       sectionInstructions,
	"next steps":            sectionInstructions,
	"follow up":             sectionInstructions,
	"follow-up":             sectionInstructions,
}

// canonicalTitle normalizes a model-produced title (case and whitespace
// insensitive) and maps it into the fixed heading set. Anything
// unrecognized lands in Key Points.
func canonicalTitle(title string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	if canon, ok := titleAliases[norm]; ok {
		return canon
	}
	return sectionKeyPoints
}

// reduce merges per-chunk partials into one canonical document. Bullets
// are concatenated with stable de-duplication (first occurrence wins,
// order preserved); risks are unioned by code keeping the highest
// severity on conflict.
func reduce(partials []*partialSummary) ([]core.SummarySection, []core.RiskFlag) {
	sections := make(map[string]*core.SummarySection)
	seenBullet := make(map[string]map[string]struct{})
	seenCite := make(map[string]map[string]struct{})

	risksByCode := make(map[string]*core.RiskFlag)
	var riskOrder []string

	for _, p := range partials {
		for _, sec := range p.Sections {
			canon := canonicalTitle(sec.Title)
			target, ok := sections[canon]
			if !ok {
				target = &core.SummarySection{Title: canon}
				sections[canon] = target
				seenBullet[canon] = make(map[string]struct{})
				seenCite[canon] = make(map[string]struct{})
			}

			for _, b := range sec.Bullets {
				key := strings.Join(strings.Fields(strings.ToLower(b)), " ")
				if key == "" {
					continue
				}
				if _, dup := seenBullet[canon][key]; dup {
					continue
				}
				seenBullet[canon][key] = struct{}{}
				target.Bullets = append(target.Bullets, b)
			}
			for _, c := range sec.Citations {
				if _, dup := seenCite[canon][c]; dup {
					continue
				}
				seenCite[canon][c] = struct{}{}
				target.Citations = append(target.Citations, c)
			}
		}

		for _, r := range p.Risks {
			existing, ok := risksByCode[r.Code]
			if !ok {
				cp := r
				risksByCode[r.Code] = &cp
				riskOrder = append(riskOrder, r.Code)
				continue
			}
			if r.Severity.Rank() > existing.Severity.Rank() {
				existing.Severity = r.Severity
				existing.Rationale = r.Rationale
			}
			existing.Citations = unionCitations(existing.Citations, r.Citations)
		}
	}

	var outSections []core.SummarySection
	for _, title := range sectionOrder {
		if sec, ok := sections[title]; ok && len(sec.Bullets) > 0 {
			outSections = append(outSections, *sec)
		}
	}

	var outRisks []core.RiskFlag
	for _, code := range riskOrder {
		outRisks = append(outRisks, *risksByCode[code])
	}

	return outSections, outRisks
}

func unionCitations(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, c := range base {
		seen[c] = struct{}{}
	}
	for _, c := range extra {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		base = append(base, c)
	}
	return base
}
