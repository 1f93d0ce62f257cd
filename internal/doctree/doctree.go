package doctree

import (
	"strconv"
	"strings"
)

// Kind identifies which variant of the node union a Node is.
type Kind string

const (
	KindSectionHeader Kind = "section_header"
	KindStep          Kind = "step"
	KindTable         Kind = "table"
	KindParagraph     Kind = "paragraph"
)

// Node is one element of a parsed instructional document.
//
// The set of implementations is closed: SectionHeader, Step, Table and
// Paragraph. Consumers that need to handle every kind implement Visitor, so
// adding a kind breaks every consumer at compile time.
type Node interface {
	Kind() Kind
	Accept(v Visitor)
}

// Visitor receives one call per node, dispatched on the node's kind.
type Visitor interface {
	VisitSectionHeader(h *SectionHeader)
	VisitStep(s *Step)
	VisitTable(t *Table)
	VisitParagraph(p *Paragraph)
}

// Walk dispatches every node in order to v.
func Walk(nodes []Node, v Visitor) {
	for _, n := range nodes {
		n.Accept(v)
	}
}

// SectionHeader labels a pedagogical phase, e.g. "A. MEMAHAMI".
type SectionHeader struct {
	Label string `json:"label"`
}

func (*SectionHeader) Kind() Kind { return KindSectionHeader }
func (h *SectionHeader) Accept(v Visitor) { v.VisitSectionHeader(h) }

// ChoiceMode says how many choices of a step may be selected.
type ChoiceMode string

const (
	ChoiceNone     ChoiceMode = ""
	ChoiceSingle   ChoiceMode = "single"
	ChoiceMultiple ChoiceMode = "multiple"
)

// Choice is one lettered option of an assessment step.
type Choice struct {
	Label string `json:"label"` // "A", "B", ...
	Text  string `json:"text"`
}

// Step is one numbered instruction. Ordinal is assigned by the parser and is
// not the number written in the source text.
type Step struct {
	Ordinal    int        `json:"ordinal"`
	Text       string     `json:"text"`
	Tags       []Tag      `json:"tags,omitempty"`
	Choices    []Choice   `json:"choices,omitempty"`
	ChoiceMode ChoiceMode `json:"choice_mode,omitempty"`
}

func (*Step) Kind() Kind { return KindStep }
func (s *Step) Accept(v Visitor) { v.VisitStep(s) }

// Paragraph is text that belongs to no step. Newlines are preserved.
type Paragraph struct {
	Text string `json:"text"`
}

func (*Paragraph) Kind() Kind { return KindParagraph }
func (p *Paragraph) Accept(v Visitor) { v.VisitParagraph(p) }

// Session is the node sequence of one meeting. Number is 1-based; 0 means
// the document is not partitioned into meetings.
type Session struct {
	Number int    `json:"number"`
	Nodes  []Node `json:"nodes"`
}

// Label returns the display heading for a session.
func (s Session) Label() string {
	if s.Number <= 0 {
		return ""
	}
	return "Pertemuan " + strconv.Itoa(s.Number)
}

// Steps returns the steps of a node sequence in order.
func Steps(nodes []Node) []*Step {
	var out []*Step
	for _, n := range nodes {
		if s, ok := n.(*Step); ok {
			out = append(out, s)
		}
	}
	return out
}

// PlainText flattens a node sequence to text, one node per line. Used for
// hashing and for comparing surfaces.
func PlainText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *SectionHeader:
			b.WriteString(n.Label)
		case *Step:
			b.WriteString(strconv.Itoa(n.Ordinal) + ". " + n.Text)
			for _, c := range n.Choices {
				b.WriteString("\n" + c.Label + ". " + c.Text)
			}
		case *Table:
			for i, row := range n.Rows {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString("| " + strings.Join(row, " | ") + " |")
			}
		case *Paragraph:
			b.WriteString(n.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}
