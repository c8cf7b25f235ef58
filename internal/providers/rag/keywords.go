package rag

import (
	"regexp"
	"strings"

	"github.com/medivise/medivise/internal/core"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"has": {}, "have": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {},
	"my": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// QueryKeywords lowercases the query, splits it into word tokens and drops
// stopwords, preserving first-occurrence order.
func QueryKeywords(query string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, w := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}
	return keywords
}

// Medical vocabulary worth pulling out of a conversation when building a
// retrieval query. Mirrors the terms the summarizer's prompts care about.
var medicalVocab = []string{
	"medication", "drug", "medicine", "dose", "dosage", "mg", "tablet",
	"capsule", "injection", "prescription", "allergy", "side effect",
	"contraindication", "interaction", "monitor", "lab", "test", "result",
	"diagnosis", "condition", "treatment", "therapy", "appointment",
	"follow-up", "blood pressure", "heart rate", "glucose", "diabetes",
	"hypertension", "cholesterol", "a1c", "hemoglobin", "creatinine",
	"symptom", "pain", "fever",
}

// KeywordsFromConversation harvests retrieval keywords from the most
// recent user turns. Used when the current message alone is too thin to
// retrieve against.
func KeywordsFromConversation(history []core.Message) []string {
	const recentTurns = 6
	start := len(history) - recentTurns
	if start < 0 {
		start = 0
	}

	var parts []string
	for _, msg := range history[start:] {
		if msg.Role == core.RoleUser {
			parts = append(parts, msg.Content)
		}
	}
	combined := strings.ToLower(strings.Join(parts, " "))

	seen := make(map[string]struct{})
	var keywords []string
	for _, term := range medicalVocab {
		if !strings.Contains(combined, term) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		keywords = append(keywords, term)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}
