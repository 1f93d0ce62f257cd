package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/parser"
	"golang.org/x/net/html"
)

// HTMLImporter handles HTML files. Non-content elements are dropped and the
// body goes through the same normalizer as generator output, so tables
// become pipe rows and the rest plain text.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromName(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}
	dropNonContent(body)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("render html body: %w", err)
		}
	}

	return &Document{Title: title, Text: parser.Normalize(buf.String())}, nil
}

// dropNonContent removes scripts, styles and page chrome in place.
func dropNonContent(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "nav", "footer", "header", "noscript":
				n.RemoveChild(c)
			default:
				dropNonContent(c)
			}
		}
		c = next
	}
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
