// Package render turns parsed instructional documents into markup for the
// screen preview, print, and word-processor export surfaces.
//
// All surfaces are driven by the same layout pass, so they carry the same
// text and the same step ordinals in the same order. Only markup and styling
// differ.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

// Document is a render-ready lesson: one or more sessions of nodes.
type Document struct {
	Title    string            `json:"title,omitempty"`
	Sessions []doctree.Session `json:"sessions"`
}

// Surface names a render target.
type Surface string

const (
	SurfacePreview Surface = "preview"
	SurfacePrint   Surface = "print"
	SurfaceExport  Surface = "export"
)

// Surfaces lists every surface in output order.
var Surfaces = []Surface{SurfacePreview, SurfacePrint, SurfaceExport}

// ParseSurface validates a surface name. The empty string is allowed and
// means all surfaces.
func ParseSurface(s string) (Surface, error) {
	switch Surface(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case SurfacePreview:
		return SurfacePreview, nil
	case SurfacePrint:
		return SurfacePrint, nil
	case SurfaceExport:
		return SurfaceExport, nil
	}
	return "", fmt.Errorf("unknown surface %q", s)
}

// Fragments holds the markup of one document for each surface.
type Fragments struct {
	Preview string `json:"preview,omitempty"`
	Print   string `json:"print,omitempty"`
	Export  string `json:"export,omitempty"`
}

// Get returns the fragment for s.
func (f Fragments) Get(s Surface) string {
	switch s {
	case SurfacePreview:
		return f.Preview
	case SurfacePrint:
		return f.Print
	case SurfaceExport:
		return f.Export
	}
	return ""
}

// Only returns a copy of f holding just the fragment for s. An empty s
// keeps every fragment.
func (f Fragments) Only(s Surface) Fragments {
	switch s {
	case SurfacePreview:
		return Fragments{Preview: f.Preview}
	case SurfacePrint:
		return Fragments{Print: f.Print}
	case SurfaceExport:
		return Fragments{Export: f.Export}
	}
	return f
}

// Renderer renders documents with a fixed theme. It holds no mutable state
// and is safe for concurrent use.
type Renderer struct {
	theme Theme
}

// New returns a Renderer for theme.
func New(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() Theme { return r.theme }

// Render renders doc with the default theme.
func Render(doc Document) Fragments {
	return New(DefaultTheme()).Render(doc)
}

// Render produces all three fragments from one layout pass.
func (r *Renderer) Render(doc Document) Fragments {
	pages := layout(doc)
	return Fragments{
		Preview: emit(pages, newPreview(r.theme)),
		Print:   emit(pages, newPrint(r.theme)),
		Export:  emit(pages, newExport(r.theme)),
	}
}

// group is a section header and the nodes under it. Header is nil for
// nodes before the first header of a session.
type group struct {
	Header *doctree.SectionHeader
	Nodes  []doctree.Node
}

type page struct {
	Label  string
	Index  int
	Groups []group
}

// layout is the grouping pass shared by every surface.
func layout(doc Document) []page {
	pages := make([]page, 0, len(doc.Sessions))
	for i, s := range doc.Sessions {
		p := page{Label: s.Label(), Index: i}
		var cur *group
		for _, n := range s.Nodes {
			if h, ok := n.(*doctree.SectionHeader); ok {
				p.Groups = append(p.Groups, group{Header: h})
				cur = &p.Groups[len(p.Groups)-1]
				continue
			}
			if cur == nil {
				p.Groups = append(p.Groups, group{})
				cur = &p.Groups[len(p.Groups)-1]
			}
			cur.Nodes = append(cur.Nodes, n)
		}
		pages = append(pages, p)
	}
	return pages
}

// surface is one markup target. Section headers and the nodes under them
// arrive through the embedded Visitor; the open/close calls bracket them.
type surface interface {
	doctree.Visitor
	openSession(label string, index int)
	closeSession()
	openGroup(hasHeader bool)
	closeGroup()
	String() string
}

func emit(pages []page, s surface) string {
	for _, p := range pages {
		s.openSession(p.Label, p.Index)
		for _, g := range p.Groups {
			s.openGroup(g.Header != nil)
			if g.Header != nil {
				g.Header.Accept(s)
			}
			doctree.Walk(g.Nodes, s)
			s.closeGroup()
		}
		s.closeSession()
	}
	return s.String()
}

// cellHTML renders a table cell's text; empty cells stay empty.
func cellHTML(s string) string {
	return inlineHTML(strings.TrimSpace(s))
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
