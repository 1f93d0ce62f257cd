// Package parser turns generator-written instructional text into a sequence
// of document nodes: section headers, numbered steps, tables and paragraphs.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

// Options parametrizes a Parser for one kind of content.
type Options struct {
	Headers bool // detect "A. PHASE" section header lines
	Tags    bool // extract classification tags from step text
	Table   TableContext
}

// DefaultOptions suits lesson activity text.
func DefaultOptions() Options {
	return Options{Headers: true, Tags: true}
}

// State is threaded through consecutive Parse calls. Ordinal is the last
// step ordinal emitted; the next step gets Ordinal+1.
type State struct {
	Ordinal int
}

var (
	headerLine  = regexp.MustCompile(`^#{0,6}\s*(?:\*\*)?\s*([ABC])\.\s+(.+?)\s*:?\s*(?:\*\*)?\s*:?$`)
	ordinalLine = regexp.MustCompile(`^(?:\*\*)?(\d{1,3})[.)](?:\*\*)?(?:\s+(.*))?$`)
)

const maxHeaderWords = 8

// Parser splits text into nodes. It holds only its options and is safe for
// concurrent use.
type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// HasOrdinal reports whether line starts with a step ordinal such as "3." or
// "3)".
func HasOrdinal(line string) bool {
	return ordinalLine.MatchString(strings.TrimSpace(line))
}

// ParseBlocks parses text with DefaultOptions, numbering steps from 1.
func ParseBlocks(text string) []doctree.Node {
	nodes, _ := New(DefaultOptions()).Parse(text, State{})
	return nodes
}

// Parse walks text top to bottom.
//
// Header lines become SectionHeader nodes. Lines starting with "<n>." or
// "<n>)" open a new Step; lines without an ordinal are joined onto the open
// Step with a space. Step ordinals count up from st.Ordinal across the whole
// call and are not reset by headers. Pipe rows become Table nodes, which
// close the open Step.
//
// Text before the first ordinal of a block becomes its own Step when the
// input has ordinals elsewhere, or a Paragraph when it directly follows a
// header or a table. If the text has no header, ordinal or table at all, the
// result is one Paragraph holding the trimmed text. Empty text yields no
// nodes.
func (p *Parser) Parse(text string, st State) ([]doctree.Node, State) {
	trimmed := strings.TrimSpace(Normalize(text))
	if trimmed == "" {
		return nil, st
	}

	items := DetectTables(strings.Split(trimmed, "\n"), p.opts.Table)
	hasTable, hasOrdinal, hasHeader := false, false, false
	for _, it := range items {
		switch it := it.(type) {
		case *doctree.Table:
			hasTable = true
		case *doctree.Paragraph:
			line := strings.TrimSpace(it.Text)
			if p.opts.Headers && headerLabel(line) != "" {
				hasHeader = true
			} else if ordinalLine.MatchString(line) {
				hasOrdinal = true
			}
		}
	}
	if !hasTable && !hasOrdinal && !hasHeader {
		return []doctree.Node{&doctree.Paragraph{Text: trimmed}}, st
	}

	b := &builder{opts: p.opts, ordinal: st.Ordinal, hasOrdinal: hasOrdinal, raw: make(map[*doctree.Step]string)}
	for _, it := range items {
		switch it := it.(type) {
		case *doctree.Table:
			b.table(it)
		case *doctree.Paragraph:
			b.line(it.Text)
		}
	}
	return b.finish(), State{Ordinal: b.ordinal}
}

// headerLabel returns the normalized "L. PHRASE" label when line is a
// section header, else "".
func headerLabel(line string) string {
	m := headerLine.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	phrase := strings.Trim(m[2], "* :")
	if phrase == "" || len(strings.Fields(phrase)) > maxHeaderWords {
		return ""
	}
	upper := 0
	for i, r := range phrase {
		if unicode.IsLower(r) {
			return ""
		}
		if i == 0 && !unicode.IsUpper(r) {
			return ""
		}
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if upper < 3 {
		return ""
	}
	return m[1] + ". " + strings.Join(strings.Fields(phrase), " ")
}

type builder struct {
	opts       Options
	ordinal    int
	hasOrdinal bool

	nodes []doctree.Node
	raw   map[*doctree.Step]string
	open  *doctree.Step
	para  []string

	afterHeader bool // block opened by a header, no ordinal yet
	afterTable  bool // a table closed the last step, no ordinal yet
}

func (b *builder) line(text string) {
	line := strings.TrimSpace(text)
	if line == "" {
		return
	}

	if b.opts.Headers {
		if label := headerLabel(line); label != "" {
			b.closeParagraph()
			b.open = nil
			b.nodes = append(b.nodes, &doctree.SectionHeader{Label: label})
			b.afterHeader, b.afterTable = true, false
			return
		}
	}

	if m := ordinalLine.FindStringSubmatch(line); m != nil {
		b.closeParagraph()
		b.openStep(m[2])
		b.afterHeader, b.afterTable = false, false
		return
	}

	if b.open != nil {
		b.raw[b.open] += " " + line
		return
	}
	if len(b.para) == 0 && b.hasOrdinal && !b.afterHeader && !b.afterTable {
		b.openStep(line)
		return
	}
	b.para = append(b.para, line)
}

func (b *builder) table(t *doctree.Table) {
	b.closeParagraph()
	b.open = nil
	b.nodes = append(b.nodes, t)
	b.afterTable = true
}

func (b *builder) openStep(text string) {
	b.ordinal++
	s := &doctree.Step{Ordinal: b.ordinal}
	b.raw[s] = text
	b.nodes = append(b.nodes, s)
	b.open = s
}

func (b *builder) closeParagraph() {
	if len(b.para) == 0 {
		return
	}
	b.nodes = append(b.nodes, &doctree.Paragraph{Text: strings.Join(b.para, "\n")})
	b.para = nil
}

func (b *builder) finish() []doctree.Node {
	b.closeParagraph()
	for _, n := range b.nodes {
		s, ok := n.(*doctree.Step)
		if !ok {
			continue
		}
		text := strings.TrimSpace(b.raw[s])
		if b.opts.Tags {
			s.Text, s.Tags = ExtractTags(text)
		} else {
			s.Text = text
		}
	}
	return b.nodes
}
