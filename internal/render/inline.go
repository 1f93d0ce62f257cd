package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

var md = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

// inlineHTML renders the inline markdown emphasis of generator text
// ("**kata**", "*kata*") as HTML. Text that goldmark would turn into
// anything other than a single paragraph (a heading, list or quote) is
// escaped literally so nothing the generator wrote is reinterpreted.
func inlineHTML(s string) string {
	if s == "" {
		return ""
	}
	src := strings.ReplaceAll(s, "<", "&lt;")
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return literalHTML(s)
	}
	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "<p>") || !strings.HasSuffix(out, "</p>") || strings.Count(out, "<p>") != 1 {
		return literalHTML(s)
	}
	return strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
}

func literalHTML(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>\n")
}

// span is a run of text with uniform emphasis.
type span struct {
	Text   string
	Bold   bool
	Italic bool
}

// inlineSpans splits s into emphasis runs for writers that do not take
// HTML. The fallback matches inlineHTML: one plain run.
func inlineSpans(s string) []span {
	if s == "" {
		return nil
	}
	src := []byte(s)
	doc := md.Parser().Parse(text.NewReader(src))
	para, ok := doc.FirstChild().(*ast.Paragraph)
	if !ok || para.NextSibling() != nil {
		return []span{{Text: s}}
	}

	var out []span
	var walk func(n ast.Node, bold, italic bool)
	walk = func(n ast.Node, bold, italic bool) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				t := string(c.Value(src))
				if c.SoftLineBreak() || c.HardLineBreak() {
					t += "\n"
				}
				out = appendSpan(out, span{Text: t, Bold: bold, Italic: italic})
			case *ast.String:
				out = appendSpan(out, span{Text: string(c.Value), Bold: bold, Italic: italic})
			case *ast.Emphasis:
				walk(c, bold || c.Level >= 2, italic || c.Level == 1)
			case *ast.RawHTML:
				for i := 0; i < c.Segments.Len(); i++ {
					seg := c.Segments.At(i)
					out = appendSpan(out, span{Text: string(seg.Value(src)), Bold: bold, Italic: italic})
				}
			case *ast.AutoLink:
				out = appendSpan(out, span{Text: string(c.Label(src)), Bold: bold, Italic: italic})
			default:
				walk(c, bold, italic)
			}
		}
	}
	walk(para, false, false)
	return out
}

func appendSpan(out []span, s span) []span {
	if s.Text == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Bold == s.Bold && out[n-1].Italic == s.Italic {
		out[n-1].Text += s.Text
		return out
	}
	return append(out, s)
}
