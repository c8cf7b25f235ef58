package rag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medivise/medivise/internal/core"
)

type RetrieverOptions struct {
	MaxSnippets int
	Window      int
}

func DefaultRetrieverOptions() RetrieverOptions {
	return RetrieverOptions{
		MaxSnippets: 5,
		Window:      450,
	}
}

type window struct {
	start, end int
	score      float64
}

// ExtractSnippets finds the highest keyword-density windows of a document
// for a query. Windows are centered on keyword occurrences, merged when
// they overlap, scored as distinct-keyword-count over window length, and
// ranked score-descending with earliest-position tie-break. An empty query
// or a query of pure stopwords yields nothing; snippets are never
// fabricated.
func ExtractSnippets(doc core.Document, query string, opts RetrieverOptions) []core.Snippet {
	keywords := QueryKeywords(query)
	if len(keywords) == 0 || doc.FullText == "" {
		return nil
	}

	lower := asciiFold(doc.FullText)
	n := len(lower)

	candidates := candidateWindows(lower, keywords, opts.Window)
	if len(candidates) == 0 {
		return nil
	}

	merged := mergeWindows(candidates)
	for i := range merged {
		merged[i].score = scoreWindow(lower, merged[i], keywords)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].start < merged[j].start
	})

	if opts.MaxSnippets > 0 && len(merged) > opts.MaxSnippets {
		merged = merged[:opts.MaxSnippets]
	}

	snippets := make([]core.Snippet, 0, len(merged))
	for _, w := range merged {
		snippets = append(snippets, core.Snippet{
			Text:           trimToWords(doc.FullText[w.start:w.end], w.start > 0, w.end < n),
			Citation:       fmt.Sprintf("L%d-%d", w.start, w.end),
			RelevanceScore: w.score,
		})
	}
	return snippets
}

// ExtractSnippetsByDocument retrieves up to perDoc snippets from each
// document and interleaves them round-robin in ascending document id
// order, so every document keeps coverage before any document gets a
// second slot. Citations carry the owning document id.
func ExtractSnippetsByDocument(docs []core.Document, query string, perDoc int, opts RetrieverOptions) []core.Snippet {
	sorted := make([]core.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	perDocOpts := opts
	perDocOpts.MaxSnippets = perDoc

	perDocResults := make([][]core.Snippet, 0, len(sorted))
	rounds := 0
	for _, doc := range sorted {
		snips := ExtractSnippets(doc, query, perDocOpts)
		for i := range snips {
			snips[i].Citation = fmt.Sprintf("doc:%s %s", doc.ID, snips[i].Citation)
		}
		perDocResults = append(perDocResults, snips)
		if len(snips) > rounds {
			rounds = len(snips)
		}
	}

	var all []core.Snippet
	for r := 0; r < rounds; r++ {
		for _, snips := range perDocResults {
			if r < len(snips) {
				all = append(all, snips[r])
			}
		}
	}

	all = dedupeByText(all)
	if opts.MaxSnippets > 0 && len(all) > opts.MaxSnippets {
		all = all[:opts.MaxSnippets]
	}
	return all
}

// asciiFold lowercases ASCII letters byte-wise. Unlike strings.ToLower it
// preserves byte length (Unicode case mapping can change it, e.g. U+023A
// grows from two bytes to three), so every offset into the folded text
// indexes the original. Keywords are ASCII alphanumerics, so non-ASCII
// bytes can never be part of a match anyway.
func asciiFold(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = c + ('a' - 'A')
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}

func candidateWindows(lower string, keywords []string, size int) []window {
	n := len(lower)

	// A document shorter than the window is one whole-document candidate.
	if n <= size {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return []window{{start: 0, end: n}}
			}
		}
		return nil
	}

	var out []window
	half := size / 2
	for _, kw := range keywords {
		from := 0
		for {
			i := strings.Index(lower[from:], kw)
			if i < 0 {
				break
			}
			center := from + i + len(kw)/2
			start := center - half
			if start < 0 {
				start = 0
			}
			end := start + size
			if end > n {
				end = n
				start = end - size
			}
			out = append(out, window{start: start, end: end})
			from += i + len(kw)
		}
	}
	return out
}

func mergeWindows(ws []window) []window {
	sort.Slice(ws, func(i, j int) bool { return ws[i].start < ws[j].start })

	var merged []window
	for _, w := range ws {
		if len(merged) > 0 && w.start < merged[len(merged)-1].end {
			if w.end > merged[len(merged)-1].end {
				merged[len(merged)-1].end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

func scoreWindow(lower string, w window, keywords []string) float64 {
	text := lower[w.start:w.end]
	distinct := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			distinct++
		}
	}
	return float64(distinct) / float64(w.end-w.start)
}

// trimToWords drops partial words cut off at window boundaries.
func trimToWords(text string, trimLeft, trimRight bool) string {
	if trimLeft {
		if i := strings.IndexByte(text, ' '); i >= 0 {
			text = text[i+1:]
		}
	}
	if trimRight {
		if i := strings.LastIndexByte(text, ' '); i > 0 {
			text = text[:i]
		}
	}
	return strings.TrimSpace(text)
}

func dedupeByText(snips []core.Snippet) []core.Snippet {
	seen := make(map[string]struct{}, len(snips))
	out := snips[:0]
	for _, s := range snips {
		key := strings.Join(strings.Fields(strings.ToLower(s.Text)), " ")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
