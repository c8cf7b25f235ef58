package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags
	policy     = bluemonday.NewPolicy()
)

func init() {
	// Summaries are plain structured text: headings, lists, emphasis.
	// Everything else (scripts, images, raw HTML from model output that
	// survived rendering) is stripped.
	policy.AllowElements(
		"h1", "h2", "h3", "h4",
		"p", "ul", "ol", "li", "blockquote",
		"b", "strong", "i", "em", "code", "pre",
	)
}

// MarkdownToHTML converts rendered summary markdown into sanitized HTML
// suitable for embedding in a page or email.
func MarkdownToHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(policy.SanitizeBytes(unsafeHTML))
}
