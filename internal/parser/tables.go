package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

// Subtype selects how tabular content of an assessment item is read.
type Subtype string

const (
	SubtypeNone              Subtype = ""
	SubtypeMenjodohkan       Subtype = "menjodohkan"
	SubtypeBenarSalah        Subtype = Subtype(doctree.GridBenarSalah)
	SubtypeYaTidak           Subtype = Subtype(doctree.GridYaTidak)
	SubtypeSetujuTidakSetuju Subtype = Subtype(doctree.GridSetujuTidakSetuju)
)

// Grid reports the statement-grid subtype, if s is one.
func (s Subtype) Grid() (doctree.GridSubtype, bool) {
	switch s {
	case SubtypeBenarSalah, SubtypeYaTidak, SubtypeSetujuTidakSetuju:
		return doctree.GridSubtype(s), true
	}
	return "", false
}

// TableContext carries the assessment subtype into table detection.
type TableContext struct {
	Subtype Subtype
}

var (
	separatorCell = regexp.MustCompile(`^:?-+:?$`)
	enumerated    = regexp.MustCompile(`^\s*(\d{1,3}|[a-z])[.)]\s+(.+)$`)
	itemMarker    = regexp.MustCompile(`^\s*(?:(?:\d{1,3}|[A-Za-z])[.)]|[-*•])\s+`)
	answerHint    = regexp.MustCompile(`\s*\(\s*[A-Za-z]+(?:\s+[A-Za-z]+)?\s*/\s*[A-Za-z]+(?:\s+[A-Za-z]+)?\s*\)\s*\.*$`)
	trailingDots  = regexp.MustCompile(`\s*(?:\.{3,}|…+|_{3,})\s*$`)
	leftColumn    = regexp.MustCompile(`(?i)^[\s*#]*kolom\s+kiri\s*(?:\([^)]*\))?[\s*:]*$`)
	rightColumn   = regexp.MustCompile(`(?i)^[\s*#]*kolom\s+kanan\s*(?:\([^)]*\))?[\s*:]*$`)
	gridHeaderHit = regexp.MustCompile(`(?i)\b(?:pernyataan|benar|salah|ya|tidak|setuju)\b`)
)

// DetectTables groups pipe-delimited runs of lines into Table nodes. Lines
// outside a table come back as one Paragraph each, in their original order.
//
// When the input has no pipe characters at all, two implicit layouts are
// first rewritten into pipe rows: a "KOLOM KIRI / KOLOM KANAN" listing (which
// makes the result a matching table), and, under a statement-grid subtype,
// enumerated claim lines.
func DetectTables(lines []string, ctx TableContext) []doctree.Node {
	if !anyPipe(lines) {
		if rewritten, ok := rewriteColumns(lines); ok {
			lines = rewritten
			ctx.Subtype = SubtypeMenjodohkan
		} else if grid, ok := ctx.Subtype.Grid(); ok {
			lines = rewriteClaims(lines, grid)
		}
	}

	var out []doctree.Node
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		if t := buildTable(run, ctx); t != nil {
			out = append(out, t)
		}
		run = nil
	}
	for _, line := range lines {
		if isPipeRow(line) {
			run = append(run, line)
			continue
		}
		flush()
		out = append(out, &doctree.Paragraph{Text: line})
	}
	flush()
	return out
}

func anyPipe(lines []string) bool {
	for _, l := range lines {
		if strings.Contains(l, "|") {
			return true
		}
	}
	return false
}

func isPipeRow(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// splitRow splits "| a | b |" into trimmed cells. "\|" is kept as a literal
// pipe inside a cell.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.ReplaceAll(s, `\|`, "\x00")
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	cells := strings.Split(s, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(strings.ReplaceAll(c, "\x00", "|"))
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	dashes := false
	for _, c := range cells {
		if c == "" {
			continue
		}
		if !separatorCell.MatchString(strings.ReplaceAll(c, " ", "")) {
			return false
		}
		dashes = true
	}
	return dashes
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func buildTable(lines []string, ctx TableContext) *doctree.Table {
	var rows [][]string
	for _, l := range lines {
		cells := splitRow(l)
		if isSeparatorRow(cells) || isEmptyRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil
	}

	if ctx.Subtype == SubtypeMenjodohkan && matchingShape(rows) {
		return matchingTable(rows)
	}
	if grid, ok := ctx.Subtype.Grid(); ok {
		return gridTable(rows, grid)
	}
	return genericTable(rows)
}

// matchingShape accepts rows that are all [left, right] or all
// [left, "", right].
func matchingShape(rows [][]string) bool {
	for _, r := range rows {
		switch {
		case len(r) == 2:
		case len(r) == 3 && r[1] == "":
		default:
			return false
		}
	}
	return true
}

func matchingTable(rows [][]string) *doctree.Table {
	if first := strings.ToLower(rows[0][0]); strings.HasPrefix(first, "kolom") {
		rows = rows[1:]
	}
	t := &doctree.Table{TableKind: doctree.TableMatching}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r[0], r[len(r)-1]})
	}
	return t
}

func gridTable(rows [][]string, grid doctree.GridSubtype) *doctree.Table {
	if first := strings.TrimSuffix(strings.ToLower(rows[0][0]), "."); first == "no" || first == "#" {
		for i, r := range rows {
			if len(r) > 1 {
				rows[i] = r[1:]
			}
		}
	}
	if isGridHeader(rows[0]) {
		rows = rows[1:]
	}

	header := grid.Header()
	t := &doctree.Table{
		TableKind: doctree.TableStatementGrid,
		Grid:      grid,
		Rows:      [][]string{header},
	}
	for _, r := range rows {
		if r[0] == "" {
			continue
		}
		row := make([]string, len(header))
		row[0] = r[0]
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isGridHeader(row []string) bool {
	if strings.EqualFold(row[0], "pernyataan") {
		return true
	}
	for _, c := range row[1:] {
		if gridHeaderHit.MatchString(c) {
			return true
		}
	}
	return false
}

func genericTable(rows [][]string) *doctree.Table {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}
	return &doctree.Table{TableKind: doctree.TableGeneric, Rows: rows}
}

// rewriteClaims turns enumerated claim lines into grid rows, opening each
// contiguous run with the subtype's header row. Instruction lines stay as
// text: a numbered line followed by lettered items, or one ending in "!" or
// ":".
func rewriteClaims(lines []string, grid doctree.GridSubtype) []string {
	header := "| " + strings.Join(grid.Header(), " | ") + " |"
	out := make([]string, 0, len(lines)+1)
	inRun := false
	for i, l := range lines {
		m := enumerated.FindStringSubmatch(l)
		if m != nil && isInstruction(m, lines[i+1:]) {
			m = nil
		}
		if m == nil {
			if strings.TrimSpace(l) == "" && inRun {
				continue
			}
			inRun = false
			out = append(out, l)
			continue
		}
		claim := answerHint.ReplaceAllString(m[2], "")
		claim = trailingDots.ReplaceAllString(claim, "")
		if !inRun {
			out = append(out, header)
			inRun = true
		}
		out = append(out, "| "+strings.TrimSpace(claim)+" | | |")
	}
	return out
}

func isInstruction(m []string, rest []string) bool {
	text := strings.TrimSpace(m[2])
	if strings.HasSuffix(text, "!") || strings.HasSuffix(text, ":") {
		return true
	}
	if !isDigits(m[1]) {
		return false
	}
	for _, l := range rest {
		if strings.TrimSpace(l) == "" {
			continue
		}
		next := enumerated.FindStringSubmatch(l)
		return next != nil && !isDigits(next[1])
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// rewriteColumns finds a KOLOM KIRI / KOLOM KANAN layout and replaces it with
// [left, "", right] pipe rows paired in order. Lines before the left marker
// and after the right list are kept.
func rewriteColumns(lines []string) ([]string, bool) {
	leftAt, rightAt := -1, -1
	for i, l := range lines {
		if leftAt < 0 && leftColumn.MatchString(l) {
			leftAt = i
		} else if leftAt >= 0 && rightColumn.MatchString(l) {
			rightAt = i
			break
		}
	}
	if leftAt < 0 || rightAt < 0 {
		return nil, false
	}

	var left []string
	for _, l := range lines[leftAt+1 : rightAt] {
		if item := stripItemMarker(l); item != "" {
			left = append(left, item)
		}
	}

	// A marked right list ends at the first unmarked line; an unmarked one
	// ends once it pairs every left item.
	var right []string
	marked := false
	end := len(lines)
	for i := rightAt + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			if len(right) > 0 {
				end = i
				break
			}
			continue
		}
		hasMarker := itemMarker.MatchString(line)
		if len(right) == 0 {
			marked = hasMarker
		} else if (marked && !hasMarker) || (!marked && len(right) >= len(left)) {
			end = i
			break
		}
		right = append(right, stripItemMarker(line))
	}

	out := append([]string{}, lines[:leftAt]...)
	for i := 0; i < max(len(left), len(right)); i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		out = append(out, "| "+l+" | | "+r+" |")
	}
	out = append(out, lines[end:]...)
	return out, true
}

func stripItemMarker(line string) string {
	return strings.TrimSpace(itemMarker.ReplaceAllString(line, ""))
}
