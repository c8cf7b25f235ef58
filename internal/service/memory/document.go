package memory

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/medivise/medivise/pkg/log"
)

// Document text is the richest fact source: a single lab report or
// discharge note can seed medications, conditions, allergies, vitals and
// labs in one pass. Extraction is the same cheap pattern matching as the
// chat rules, just with clinical phrasing.

var (
	medWithDoseRe = regexp.MustCompile(`(?i)\b([a-z][a-z]+)\s+(\d+(?:\.\d+)?)\s*(mg|mcg|g|ml|units?)\b`)
	medLabeledRe  = regexp.MustCompile(`(?i)(?:medications?|prescriptions?|rx|prescribed|taking)[\s:]+([^,.\n]+)`)
	frequencyRe   = regexp.MustCompile(`(?i)\b(?:once daily|twice daily|three times daily|four times daily|daily|weekly|monthly|qd|bid|tid|qid|prn|as needed)\b`)

	conditionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:diagnosis|condition)[\s:]+([^,.\n]+)`),
		regexp.MustCompile(`(?i)(?:history of|h/o|diagnosed with)\s+([^,.\n]+)`),
	}

	allergyRe = regexp.MustCompile(`(?i)(?:allergies|allergy|allergic to|adverse reaction)[\s:]+([^,.\n]+)`)

	vitalRes = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"blood_pressure", regexp.MustCompile(`(?i)(?:blood pressure|bp)[\s:]+(\d+/\d+)`)},
		{"heart_rate", regexp.MustCompile(`(?i)(?:heart rate|pulse)[\s:]+(\d+)\b`)},
		{"temperature", regexp.MustCompile(`(?i)(?:temperature|temp)[\s:]+(\d+(?:\.\d+)?)`)},
		{"weight", regexp.MustCompile(`(?i)weight[\s:]+(\d+(?:\.\d+)?)\s*(?:kg|lbs?)`)},
		{"height", regexp.MustCompile(`(?i)height[\s:]+(\d+(?:\.\d+)?)\s*(?:cm|in|inches)`)},
	}

	labRes = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"glucose", regexp.MustCompile(`(?i)(?:glucose|blood sugar)[\s:]+(\d+(?:\.\d+)?)`)},
		{"hemoglobin", regexp.MustCompile(`(?i)(?:hemoglobin|hgb)[\s:]+(\d+(?:\.\d+)?)`)},
		{"cholesterol", regexp.MustCompile(`(?i)cholesterol[\s:]+(\d+(?:\.\d+)?)`)},
		{"creatinine", regexp.MustCompile(`(?i)creatinine[\s:]+(\d+(?:\.\d+)?)`)},
		{"a1c", regexp.MustCompile(`(?i)(?:a1c|hba1c)[\s:]+(\d+(?:\.\d+)?)`)},
	}

	// Lab and vital terms also sit next to dose-shaped numbers
	// ("glucose 95 mg/dL"), so dose matches on these names are not
	// medications.
	notMedications = map[string]struct{}{
		"glucose": {}, "cholesterol": {}, "hemoglobin": {}, "creatinine": {},
		"weight": {}, "height": {}, "temperature": {}, "sodium": {},
		"potassium": {}, "calcium": {},
	}
)

// extractDocumentContext pulls fact candidates out of clinical document
// text. Dedupe runs on key, so repeated mentions collapse to one upsert.
func extractDocumentContext(text string) []candidate {
	var out []candidate
	seen := make(map[string]struct{})

	add := func(category, key string, value map[string]string) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		out = append(out, candidate{Category: category, Key: key, Value: string(data)})
	}

	for _, idx := range medWithDoseRe.FindAllStringSubmatchIndex(text, -1) {
		name := strings.ToLower(text[idx[2]:idx[3]])
		if _, skip := notMedications[name]; skip {
			continue
		}
		value := map[string]string{
			"name":   name,
			"dosage": text[idx[4]:idx[5]],
			"unit":   strings.ToLower(text[idx[6]:idx[7]]),
			"source": "document",
		}
		// Frequency, when stated, sits on the same line after the dose.
		rest := text[idx[1]:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[:nl]
		}
		if freq := frequencyRe.FindString(rest); freq != "" {
			value["frequency"] = strings.ToLower(freq)
		}
		add("medications", "medication_"+slugify(name), value)
	}
	for _, m := range medLabeledRe.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(strings.ToLower(m[1]))
		if len(phrase) < 3 {
			continue
		}
		name := strings.Fields(phrase)[0]
		if _, skip := notMedications[name]; skip {
			continue
		}
		add("medications", "medication_"+slugify(name), map[string]string{
			"name": name, "raw_text": phrase, "source": "document",
		})
	}

	for _, re := range conditionRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			phrase := strings.TrimSpace(strings.ToLower(m[1]))
			if len(phrase) < 4 {
				continue
			}
			add("conditions", "condition_"+slugify(phrase), map[string]string{
				"name": phrase, "source": "document",
			})
		}
	}

	for _, m := range allergyRe.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(strings.ToLower(m[1]))
		if len(phrase) < 3 || strings.Contains(phrase, "no known") {
			continue
		}
		add("allergies", "allergy_"+slugify(phrase), map[string]string{
			"allergen": phrase, "source": "document",
		})
	}

	for _, v := range vitalRes {
		if m := v.re.FindStringSubmatch(text); m != nil {
			add("vitals", "vital_"+v.name, map[string]string{
				"value": m[1], "source": "document",
			})
		}
	}

	for _, l := range labRes {
		if m := l.re.FindStringSubmatch(text); m != nil {
			add("labs", "lab_"+l.name, map[string]string{
				"value": m[1], "source": "document",
			})
		}
	}

	return out
}

// LearnFromDocument extracts facts from a document's text and routes each
// through UpsertFact, so repeat mentions across documents boost confidence
// instead of duplicating. One candidate's failure never blocks the others.
func (s *Store) LearnFromDocument(ctx context.Context, userID, docID, text string) int {
	logger := log.FromCtx(ctx)

	learned := 0
	for _, cand := range extractDocumentContext(text) {
		_, err := s.UpsertFact(ctx, userID, cand.Category, cand.Key, cand.Value, "document:"+docID, DefaultBaseConfidence)
		if err != nil {
			logger.Warn().Err(err).Str("key", cand.Key).Msg("failed to learn fact from document")
			continue
		}
		learned++
	}

	if learned > 0 {
		logger.Info().Int("count", learned).Str("doc_id", docID).Str("user", userID).Msg("learned facts from document")
	}
	return learned
}
