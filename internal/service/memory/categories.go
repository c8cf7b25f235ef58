package memory

import "strings"

type categoryVocab struct {
	name     string
	keywords []string
}

// Vocabulary used to narrow fact retrieval by query keywords. Ordered so
// category inference is deterministic.
var categoryVocabs = []categoryVocab{
	{"medications", []string{"medication", "drug", "prescription", "medicine", "dose", "pill"}},
	{"conditions", []string{"condition", "diagnosis", "disease", "illness", "problem"}},
	{"allergies", []string{"allergy", "allergic", "adverse reaction"}},
	{"preferences", []string{"prefer", "like", "dislike", "avoid"}},
	{"vitals", []string{"blood pressure", "heart rate", "temperature", "weight", "height"}},
	{"labs", []string{"glucose", "cholesterol", "hemoglobin", "creatinine", "a1c", "lab"}},
	{"providers", []string{"doctor", "physician", "nurse", "provider"}},
	{"procedures", []string{"procedure", "surgery", "operation", "treatment"}},
}

// relevantCategories maps a free-text query onto memory categories. The
// general category is always appended so uncategorized facts stay
// reachable. A nil result means "no narrowing".
func relevantCategories(query string) []string {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return nil
	}

	var matched []string
	for _, cv := range categoryVocabs {
		for _, kw := range cv.keywords {
			if strings.Contains(q, kw) {
				matched = append(matched, cv.name)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return append(matched, "general")
}
