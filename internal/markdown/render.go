// Package markdown renders stored markdown files to HTML for preview.
package markdown

import (
	"bytes"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Preview is a rendered markdown document.
type Preview struct {
	Title   string    `json:"title"`
	HTML    string    `json:"html"`
	Outline []Heading `json:"toc"`
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GFM and syntax highlighting enabled.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &Renderer{md: md}
}

// Render parses source once, collects its headings and renders it to HTML.
// Raw HTML in the source is escaped.
func (r *Renderer) Render(source []byte) (*Preview, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))

	outline := collectHeadings(doc, source)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, err
	}

	p := &Preview{HTML: buf.String(), Outline: outline}
	for _, h := range outline {
		if h.Level == 1 {
			p.Title = h.Text
			break
		}
	}
	if p.Title == "" && len(outline) > 0 {
		p.Title = outline[0].Text
	}
	return p, nil
}

func collectHeadings(doc ast.Node, source []byte) []Heading {
	outline := []Heading{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		h := Heading{Level: heading.Level, Text: plainText(heading, source)}
		if id, found := heading.AttributeString("id"); found {
			if b, isBytes := id.([]byte); isBytes {
				h.ID = string(b)
			}
		}
		outline = append(outline, h)
		return ast.WalkSkipChildren, nil
	})
	return outline
}

// plainText concatenates the text segments below n, descending into
// emphasis, links and code spans.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
