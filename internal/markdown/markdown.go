// Package markdown converts markdown text to an HTML fragment using goldmark.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options tunes the goldmark engine.
type Options struct {
	// Extensions lists goldmark extension names (see extensionRegistry).
	// Empty means plain CommonMark.
	Extensions []string
	// UnsafeHTML passes raw HTML blocks through untouched.
	UnsafeHTML bool
	HardWraps  bool
	// HeadingIDs adds generated id attributes to headings.
	HeadingIDs bool
	// FrontMatter strips a leading YAML/TOML front matter block before conversion.
	FrontMatter bool
}

// DefaultOptions mirrors a stock markdown converter: no extensions, raw HTML kept.
func DefaultOptions() Options {
	return Options{UnsafeHTML: true}
}

// Converter turns markdown into an HTML fragment.
type Converter interface {
	Convert(text string) (string, error)
}

// GoldmarkConverter is stateless after construction and safe for concurrent use.
type GoldmarkConverter struct {
	engine      goldmark.Markdown
	frontMatter bool
}

func NewGoldmarkConverter(opts Options) *GoldmarkConverter {
	return &GoldmarkConverter{
		engine:      newEngine(opts),
		frontMatter: opts.FrontMatter,
	}
}

// Convert renders text to HTML. Trailing newlines are trimmed so
// "# Title\n\nHello" yields "<h1>Title</h1>\n<p>Hello</p>".
func (c *GoldmarkConverter) Convert(text string) (string, error) {
	source := []byte(text)
	if c.frontMatter {
		var meta map[string]any
		rest, err := frontmatter.Parse(strings.NewReader(text), &meta)
		if err != nil {
			return "", fmt.Errorf("front matter: %w", err)
		}
		source = rest
	}

	var buf bytes.Buffer
	if err := c.engine.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func newEngine(opts Options) goldmark.Markdown {
	var parserOptions []parser.Option
	if opts.HeadingIDs {
		parserOptions = append(parserOptions, parser.WithAutoHeadingID())
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.UnsafeHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	var engineOptions []goldmark.Option
	if len(parserOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithParserOptions(parserOptions...))
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// KnownExtension reports whether name maps to a goldmark extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// collectExtensions resolves names, skipping blanks, duplicates and unknown names.
func collectExtensions(names []string) []goldmark.Extender {
	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
