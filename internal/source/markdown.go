package source

import (
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownImporter handles Markdown files using goldmark with GFM tables.
// Ordered list items come out as "N." lines and tables as pipe rows.
// Inline emphasis is kept as markdown for the renderers.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	title := titleFromName(filename)
	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && len(blocks) == 0 {
			title = inlineText(h, src)
			continue
		}
		if b := blockText(n, src); b != "" {
			blocks = append(blocks, b)
		}
	}

	return &Document{Title: title, Text: strings.Join(blocks, "\n\n")}, nil
}

func blockText(n ast.Node, src []byte) string {
	switch node := n.(type) {
	case *ast.Heading:
		return inlineText(node, src)
	case *ast.List:
		return strings.Join(listLines(node, src, ""), "\n")
	case *extast.Table:
		return tableText(node, src)
	case *ast.Blockquote:
		var parts []string
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockText(c, src); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "\n")
	case *ast.ThematicBreak:
		return ""
	}
	return rawLines(n, src)
}

// rawLines returns the source lines of a leaf block, markdown intact.
func rawLines(n ast.Node, src []byte) string {
	if n.Type() != ast.TypeBlock {
		return ""
	}
	var lines []string
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		if l := strings.TrimRight(string(seg.Value(src)), " \t\r\n"); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func listLines(list *ast.List, src []byte, indent string) []string {
	var out []string
	num := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if list.IsOrdered() {
			marker = strconv.Itoa(num) + "."
			num++
		}

		var body []string
		var nested []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, listLines(sub, src, indent+"  ")...)
				continue
			}
			if t := blockText(c, src); t != "" {
				body = append(body, strings.Join(strings.Fields(t), " "))
			}
		}
		out = append(out, indent+marker+" "+strings.Join(body, " "))
		out = append(out, nested...)
	}
	return out
}

func tableText(tbl *extast.Table, src []byte) string {
	var rows []string
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, inlineText(c, src))
		}
		rows = append(rows, pipeRow(cells))
		if _, ok := r.(*extast.TableHeader); ok {
			sep := make([]string, len(cells))
			for i := range sep {
				sep[i] = "---"
			}
			rows = append(rows, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return strings.Join(rows, "\n")
}

// inlineText flattens inline children, re-marking emphasis with asterisks.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				buf.Write(node.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(node.Value)
			case *ast.Emphasis:
				mark := strings.Repeat("*", node.Level)
				buf.WriteString(mark)
				walk(node)
				buf.WriteString(mark)
			default:
				walk(node)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
