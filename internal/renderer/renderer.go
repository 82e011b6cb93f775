// Package renderer turns a markdown document into a finished HTML page.
//
// The pipeline is: convert markdown to an HTML fragment, substitute it into
// the template at Marker, turn code-only paragraphs into preformatted blocks,
// then wrap the content after each heading in a <section>. Sectioning is a
// textual rewrite applied level by level from h6 up to h1, so deeper sections
// end up nested inside shallower ones.
package renderer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bassista/mkdoc/internal/markdown"
)

// Marker is the placeholder replaced by the rendered body.
const Marker = "{%body%}"

var codeParagraph = regexp.MustCompile(`(?s)<p><code>(.*?)</code></p>`)

// sectionPatterns[n-1] matches the content following </hN> up to the next
// heading of level <= N, </body>, or end of text.
var sectionPatterns = buildSectionPatterns()

func buildSectionPatterns() [6]*regexp.Regexp {
	var patterns [6]*regexp.Regexp
	for level := 1; level <= 6; level++ {
		patterns[level-1] = regexp.MustCompile(fmt.Sprintf(
			`(?s)</h%d>(.*?)(<h[1-%d](?:\s[^>]*)?>|</body>|\z)`, level, level))
	}
	return patterns
}

// Renderer is safe for concurrent use if its Converter is.
type Renderer struct {
	converter markdown.Converter
}

func New(converter markdown.Converter) *Renderer {
	return &Renderer{converter: converter}
}

// Render produces the final page for document using template.
// A template without Marker is returned unchanged (the body is dropped).
func (r *Renderer) Render(document, template string) (string, error) {
	body, err := r.converter.Convert(document)
	if err != nil {
		return "", err
	}

	wrapped := Wrap(template, body)
	return Sectionize(PreformatCode(wrapped)), nil
}

// Wrap substitutes body for every Marker in template.
func Wrap(template, body string) string {
	return strings.ReplaceAll(template, Marker, body)
}

// HasMarker reports whether template contains Marker.
func HasMarker(template string) bool {
	return strings.Contains(template, Marker)
}

// PreformatCode rewrites paragraphs whose sole content is a code span into
// <pre><code> blocks. The match is non-greedy and ignores nested markup.
func PreformatCode(html string) string {
	return codeParagraph.ReplaceAllString(html, "<pre><code>${1}</code></pre>")
}

// Sectionize wraps the content after each closing heading tag in a <section>.
func Sectionize(html string) string {
	for level := 6; level >= 1; level-- {
		replacement := fmt.Sprintf("</h%d>\n<section>\n${1}\n</section>\n${2}", level)
		html = sectionPatterns[level-1].ReplaceAllString(html, replacement)
	}
	return html
}
