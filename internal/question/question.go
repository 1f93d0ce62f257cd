// Package question formats assessment items, worksheets and lesson activities
// on top of the shared block parser.
package question

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/dgallion1/lessonfmt/internal/parser"
)

// Kind is the declared shape of a piece of content.
type Kind string

const (
	FormatActivity             Kind = "kegiatan"
	FormatWorksheet            Kind = "lkpd"
	FormatPilihanGanda         Kind = "pilihan_ganda"
	FormatPilihanGandaKompleks Kind = "pilihan_ganda_kompleks"
	FormatIsian                Kind = "isian"
	FormatUraian               Kind = "uraian"
	FormatBenarSalah           Kind = "benar_salah"
	FormatMenjodohkan          Kind = "menjodohkan"
)

// Context is what the assessment record knows about an item.
type Context struct {
	Format  Kind
	Subtype parser.Subtype
	Hint    string // free-form matching/grid hint, e.g. "ya/tidak"
}

// BlankIndicator is appended to fill-in-the-blank items that lack one.
const BlankIndicator = "……………"

var (
	nonWord      = regexp.MustCompile(`[^a-z]+`)
	blankPattern = regexp.MustCompile(`_{3,}|\.{4,}|…{2,}|\(\s*\)`)
	optionMarker = regexp.MustCompile(`(?:^|\s)\(?([A-Ea-e])[.)]\s+`)
)

func squash(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(s), "")
}

// ParseFormat maps loose spellings ("Pilihan Ganda Kompleks", "PG", "isian
// singkat", "LKPD") to a Kind. Unknown names map to FormatActivity.
func ParseFormat(name string) Kind {
	switch squash(name) {
	case "pilihanganda", "pg", "multiplechoice":
		return FormatPilihanGanda
	case "pilihangandakompleks", "pgkompleks", "pgk", "multipleresponse":
		return FormatPilihanGandaKompleks
	case "isian", "isiansingkat", "isianrumpang", "fillintheblank", "fillblank":
		return FormatIsian
	case "uraian", "esai", "essay":
		return FormatUraian
	case "benarsalah", "truefalse", "bs":
		return FormatBenarSalah
	case "menjodohkan", "matching", "jodohkan":
		return FormatMenjodohkan
	case "lkpd", "worksheet", "lembarkerja", "lembarkerjapesertadidik":
		return FormatWorksheet
	}
	return FormatActivity
}

// ParseSubtype maps a subtype name or hint ("benar/salah", "Ya-Tidak",
// "setuju / tidak setuju", "jodohkan") to a Subtype.
func ParseSubtype(name string) parser.Subtype {
	switch squash(name) {
	case "benarsalah", "bs", "truefalse":
		return parser.SubtypeBenarSalah
	case "yatidak", "yesno":
		return parser.SubtypeYaTidak
	case "setujutidaksetuju", "setujutidak", "agreedisagree":
		return parser.SubtypeSetujuTidakSetuju
	case "menjodohkan", "jodohkan", "matching":
		return parser.SubtypeMenjodohkan
	}
	return parser.SubtypeNone
}

// tableSubtype resolves the subtype the table detector should use.
func (c Context) tableSubtype() parser.Subtype {
	if c.Subtype != parser.SubtypeNone {
		return c.Subtype
	}
	hinted := ParseSubtype(c.Hint)
	switch c.Format {
	case FormatMenjodohkan:
		return parser.SubtypeMenjodohkan
	case FormatBenarSalah:
		if _, ok := hinted.Grid(); ok {
			return hinted
		}
		return parser.SubtypeBenarSalah
	}
	return hinted
}

func (c Context) isAssessment() bool {
	return c.Format != FormatActivity && c.Format != FormatWorksheet && c.Format != ""
}

// Options returns the parser options for c. Assessment items do not use
// section headers, so "A. DNA" stays an option line.
func (c Context) Options() parser.Options {
	return parser.Options{
		Headers: !c.isAssessment(),
		Tags:    true,
		Table:   parser.TableContext{Subtype: c.tableSubtype()},
	}
}

// Format parses text for ctx, numbering steps from 1.
func Format(text string, ctx Context) []doctree.Node {
	nodes, _ := FormatFrom(text, ctx, parser.State{})
	return nodes
}

// FormatFrom parses text for ctx continuing from st and applies the
// format-specific fixes: lettered options inside a step become Choices, and
// fill-in-the-blank items get a blank indicator when they have none.
func FormatFrom(text string, ctx Context, st parser.State) ([]doctree.Node, parser.State) {
	nodes, next := parser.New(ctx.Options()).Parse(text, st)

	mode := doctree.ChoiceSingle
	if ctx.Format == FormatPilihanGandaKompleks {
		mode = doctree.ChoiceMultiple
	}

	// A lone unnumbered question with options is promoted to a step so its
	// choices render.
	if len(nodes) == 1 && ctx.isAssessment() {
		if p, ok := nodes[0].(*doctree.Paragraph); ok {
			flat := strings.Join(strings.Fields(p.Text), " ")
			if stem, choices := SplitChoices(flat); len(choices) > 0 {
				next.Ordinal++
				nodes[0] = &doctree.Step{Ordinal: next.Ordinal, Text: stem, Choices: choices, ChoiceMode: mode}
			}
		}
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *doctree.Step:
			if len(n.Choices) == 0 {
				if stem, choices := SplitChoices(n.Text); len(choices) > 0 {
					n.Text, n.Choices, n.ChoiceMode = stem, choices, mode
				}
			}
			if ctx.Format == FormatIsian {
				n.Text = ensureBlank(n.Text)
			}
		case *doctree.Paragraph:
			if ctx.Format == FormatIsian && len(nodes) == 1 {
				n.Text = ensureBlank(n.Text)
			}
		}
	}
	return nodes, next
}

func ensureBlank(text string) string {
	if blankPattern.MatchString(text) {
		return text
	}
	if text == "" {
		return BlankIndicator
	}
	return text + " " + BlankIndicator
}

// SplitChoices splits "stem A. x B. y" into the stem and lettered choices.
// At least two options lettered consecutively from A (or a) are required;
// otherwise the text is returned unchanged with no choices.
func SplitChoices(text string) (string, []doctree.Choice) {
	matches := optionMarker.FindAllStringSubmatchIndex(text, -1)

	type mark struct {
		start, end int
		label      string
	}
	var seq []mark
	var want byte
	for _, m := range matches {
		letter := text[m[2]]
		if len(seq) == 0 {
			if letter != 'A' && letter != 'a' {
				continue
			}
			want = letter
		}
		if letter != want {
			continue
		}
		seq = append(seq, mark{start: m[0], end: m[1], label: strings.ToUpper(string(letter))})
		want++
	}
	if len(seq) < 2 {
		return text, nil
	}

	choices := make([]doctree.Choice, len(seq))
	for i, mk := range seq {
		end := len(text)
		if i+1 < len(seq) {
			end = seq[i+1].start
		}
		choices[i] = doctree.Choice{Label: mk.label, Text: strings.TrimSpace(text[mk.end:end])}
	}
	return strings.TrimSpace(text[:seq[0].start]), choices
}
