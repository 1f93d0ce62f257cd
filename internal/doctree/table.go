package doctree

// TableKind classifies a detected table.
type TableKind string

const (
	TableGeneric       TableKind = "generic"
	TableStatementGrid TableKind = "statement_grid"
	TableMatching      TableKind = "matching"
)

// GridSubtype fixes the judgment columns of a statement grid.
type GridSubtype string

const (
	GridBenarSalah        GridSubtype = "benar_salah"
	GridYaTidak           GridSubtype = "ya_tidak"
	GridSetujuTidakSetuju GridSubtype = "setuju_tidak_setuju"
)

// Header returns the fixed 3-column header for the subtype.
func (g GridSubtype) Header() []string {
	switch g {
	case GridYaTidak:
		return []string{"Pernyataan", "Ya", "Tidak"}
	case GridSetujuTidakSetuju:
		return []string{"Pernyataan", "Setuju", "Tidak Setuju"}
	default:
		return []string{"Pernyataan", "Benar", "Salah"}
	}
}

// Table is a tabular sub-structure of a document.
//
// For Generic and StatementGrid tables Rows[0] is the header row. For a
// StatementGrid every cell after the first in a body row is an empty
// checkable cell. Matching rows are [left, right] pairs with no header.
type Table struct {
	TableKind TableKind   `json:"kind"`
	Grid      GridSubtype `json:"grid,omitempty"`
	Rows      [][]string  `json:"rows"`
}

func (*Table) Kind() Kind { return KindTable }
func (t *Table) Accept(v Visitor) { v.VisitTable(t) }

// Header returns the header row, or nil for matching tables.
func (t *Table) Header() []string {
	if t.TableKind == TableMatching || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns the rows after the header.
func (t *Table) Body() [][]string {
	if t.TableKind == TableMatching {
		return t.Rows
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[1:]
}

// Columns returns the width of the widest row.
func (t *Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}
