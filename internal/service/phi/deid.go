// Package phi removes identifying information from document text before it
// crosses the trust boundary to the model server.
package phi

import "regexp"

type patternClass struct {
	re    *regexp.Regexp
	token string
}

// Ordered and non-overlapping: labeled identifiers go first so that
// "Patient ID: 123" is consumed whole, digit shapes before the address
// heuristic, and the name heuristic last so labels and street names have
// already been taken out of play. Replacement tokens are bracketed
// all-caps and never re-match any class, which makes Deidentify
// idempotent by construction.
var patternClasses = []patternClass{
	{regexp.MustCompile(`(?i)\bMRN\s*(?:no\.?|#|:)?\s*\d+\b`), "[REDACTED_MRN]"},
	{regexp.MustCompile(`(?i)\bPatient\s+ID\s*(?:no\.?|#|:)?\s*\d+\b`), "[REDACTED_PATIENT_ID]"},
	{regexp.MustCompile(`(?i)\b(?:Acct|Account|Record)\s*(?:no\.?|#|:)?\s*\d+\b`), "[REDACTED_ID]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[REDACTED_SSN]"},
	{regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`), "[REDACTED_PHONE]"},
	{regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`), "[REDACTED_PHONE]"},
	{regexp.MustCompile(`\b\d+\s+[A-Za-z ]+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd)\b`), "[REDACTED_ADDRESS]"},
	{regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+){1,2}\b`), "[REDACTED_NAME]"},
}

// Deidentify replaces identifying text with class tokens. It never fails:
// text without matches comes back unchanged with redacted=false.
func Deidentify(text string) (clean string, redacted bool) {
	clean = text
	for _, pc := range patternClasses {
		if !pc.re.MatchString(clean) {
			continue
		}
		redacted = true
		clean = pc.re.ReplaceAllString(clean, pc.token)
	}
	return clean, redacted
}
