package memory

import (
	"encoding/json"
	"regexp"
	"strings"
)

type candidate struct {
	Category string
	Key      string
	Value    string
}

type learnRule struct {
	category string
	prefix   string
	patterns []*regexp.Regexp
}

// Lightweight statement rules: first capture group is the learned phrase.
// Matching runs on the lowercased user message.
var learnRules = []learnRule{
	{
		category: "medications",
		prefix:   "medication",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:i take|i'm taking|i am taking|my medication is|i use)\s+([^,.\n]+)`),
			regexp.MustCompile(`(?:prescribed|was given)\s+([^,.\n]+)`),
		},
	},
	{
		category: "conditions",
		prefix:   "condition",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:i have|i've been diagnosed with|i suffer from)\s+([^,.\n]+)`),
			regexp.MustCompile(`(?:my condition is|i'm dealing with)\s+([^,.\n]+)`),
		},
	},
	{
		category: "preferences",
		prefix:   "preference",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:i prefer|i like|i don't like|i avoid)\s+([^,.\n]+)`),
			regexp.MustCompile(`(?:i'm allergic to|i can't take)\s+([^,.\n]+)`),
		},
	},
}

// extractLearnings pulls candidate facts out of a user message with the
// statement rules above. Purely heuristic: misses are fine, the goal is
// cheap incremental learning without a model call.
func extractLearnings(userMessage string) []candidate {
	msg := strings.ToLower(userMessage)

	var out []candidate
	seen := make(map[string]struct{})

	for _, rule := range learnRules {
		for _, re := range rule.patterns {
			for _, m := range re.FindAllStringSubmatch(msg, -1) {
				phrase := strings.TrimSpace(m[1])
				if phrase == "" {
					continue
				}
				key := rule.prefix + "_" + slugify(phrase)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				value, err := json.Marshal(map[string]string{
					"name":   phrase,
					"source": "user_statement",
				})
				if err != nil {
					continue
				}
				out = append(out, candidate{
					Category: rule.category,
					Key:      key,
					Value:    string(value),
				})
			}
		}
	}
	return out
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "_"), "_")
}
