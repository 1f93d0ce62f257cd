package parser

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	htmlTag    = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(?:\s[^<>]*)?/?>`)
	tableSpan  = regexp.MustCompile(`(?is)<table[\s>].*?</table\s*>`)
	breakTag   = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockClose = regexp.MustCompile(`(?i)</(?:p|li|div|tr|h[1-6])>`)
	blankRun   = regexp.MustCompile(`\n{3,}`)

	// Escaping is disabled so "1." and "|" survive as the parser expects them.
	htmlConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(commonmark.WithListEndComment(false)),
			table.NewTablePlugin(),
		),
		converter.WithEscapeMode(converter.EscapeModeDisabled),
	)

	stripPolicy = bluemonday.StrictPolicy()
)

// Normalize brings generator output into the line-oriented plain form the
// parser reads. Plain text only has its line endings normalized.
//
// Each HTML table is converted to markdown on its own so it becomes pipe
// rows. Text around the tables has its tags stripped, with line breaks kept.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if !htmlTag.MatchString(text) {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range tableSpan.FindAllStringIndex(text, -1) {
		b.WriteString(stripHTML(text[last:loc[0]]))
		span := text[loc[0]:loc[1]]
		if md, err := htmlConverter.ConvertString(span); err == nil {
			b.WriteString("\n" + strings.TrimSpace(md) + "\n")
		} else {
			b.WriteString(stripHTML(span))
		}
		last = loc[1]
	}
	b.WriteString(stripHTML(text[last:]))

	return strings.TrimSpace(blankRun.ReplaceAllString(b.String(), "\n\n"))
}

func stripHTML(s string) string {
	s = breakTag.ReplaceAllString(s, "\n")
	s = blockClose.ReplaceAllString(s, "$0\n")
	return html.UnescapeString(stripPolicy.Sanitize(s))
}
