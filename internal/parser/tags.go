package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

var (
	bracketToken = regexp.MustCompile(`\[([^\[\]\n]{1,80})\]`)

	// A bare vocabulary word ending the text, directly after a sentence
	// boundary or in parentheses.
	trailingTag = regexp.MustCompile(`(?i)(^|[.!?;:])[ \t]*(berkesadaran|bermakna|menggembirakan)[ \t]*[.!]?[ \t]*$`)
	parenTag    = regexp.MustCompile(`(?i)()[ \t]*\([ \t]*(berkesadaran|bermakna|menggembirakan)[ \t]*\)[ \t]*[.!]?[ \t]*$`)

	// "B." or "3." directly before the boundary is an item label, not the end
	// of a sentence.
	labelBefore = regexp.MustCompile(`(?:^|[\s(])(?:[A-Za-z]|\d{1,3})$`)

	tagListSep  = regexp.MustCompile(`(?i)\s*(?:[,/;&+]|\bdan\b)\s*`)
	spaceRun    = regexp.MustCompile(`[ \t]{2,}`)
	spaceBefore = regexp.MustCompile(`[ \t]+([.,;:!?])`)
)

// ExtractTags removes classification markers from a step's text and returns
// the cleaned text and the tags in order of first appearance.
//
// Bracketed tokens are matched anywhere; a bracket whose content is not
// entirely vocabulary names stays in the text untouched. Bare names count
// only when they end the text after a sentence boundary, so "pembelajaran
// bermakna." inside a sentence is left alone.
func ExtractTags(text string) (string, []doctree.Tag) {
	var tags []doctree.Tag
	seen := make(map[doctree.Tag]bool)
	add := func(t doctree.Tag) {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}

	changed := false
	out := bracketToken.ReplaceAllStringFunc(text, func(tok string) string {
		parsed, ok := parseTagList(tok[1 : len(tok)-1])
		if !ok {
			return tok
		}
		for _, t := range parsed {
			add(t)
		}
		changed = true
		return " "
	})

	var trailing []doctree.Tag
	for {
		m := trailingTag.FindStringSubmatchIndex(out)
		if m != nil && m[3] > m[2] && labelBefore.MatchString(out[:m[2]]) {
			m = nil
		}
		if m == nil {
			m = parenTag.FindStringSubmatchIndex(out)
		}
		if m == nil {
			break
		}
		t, _ := doctree.ParseTag(out[m[4]:m[5]])
		trailing = append(trailing, t)
		out = strings.TrimRight(out[:m[3]], " \t")
		changed = true
	}
	for i := len(trailing) - 1; i >= 0; i-- {
		add(trailing[i])
	}

	if !changed {
		return text, nil
	}
	return tidySpaces(out), tags
}

func parseTagList(s string) ([]doctree.Tag, bool) {
	parts := tagListSep.Split(strings.TrimSpace(s), -1)
	out := make([]doctree.Tag, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		t, ok := doctree.ParseTag(p)
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	return out, len(out) > 0
}

func tidySpaces(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = spaceBefore.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
