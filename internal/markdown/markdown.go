// Package markdown converts article bodies to HTML and derives the plain-text
// pieces (title, description) the parse stage needs.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Options controls markdown conversion.
type Options struct {
	// DescriptionLength caps the derived description, in runes.
	DescriptionLength int
}

// DefaultDescriptionLength matches the length used for index previews.
const DefaultDescriptionLength = 200

// Result is the outcome of converting one body.
type Result struct {
	HTML string

	// Title is the text of the first level-1 heading, if any.
	Title string

	// Description is the leading plain text of the rendered HTML.
	Description string
}

// Renderer converts markdown with GitHub Flavored Markdown extensions.
// A Renderer is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.DescriptionLength <= 0 {
		opts.DescriptionLength = DefaultDescriptionLength
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return &Renderer{md: md, opts: opts}
}

// Convert renders body to HTML.
func (r *Renderer) Convert(body []byte) (Result, error) {
	root := r.md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, root); err != nil {
		return Result{}, err
	}

	html := buf.String()
	return Result{
		HTML:        html,
		Title:       firstHeading(root, body),
		Description: PlainText(html, r.opts.DescriptionLength),
	}, nil
}

func firstHeading(root gmast.Node, source []byte) string {
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = nodeText(h, source)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

func nodeText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
