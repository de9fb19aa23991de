package core

import "time"

// CellKind discriminates the raw value variants a source can hand us.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindString
	KindNumber
	KindTime
)

type (
	// Cell is a tagged variant for one raw table cell. Sources produce cells,
	// the normalizer consumes them; there is no runtime type inspection past
	// this point.
	Cell struct {
		Kind CellKind
		Str  string
		Num  float64
		Time time.Time
	}

	// RawTable is a loosely-structured input table: named columns in source
	// order, rows of cells. Rows shorter than the column list are read as if
	// padded with empty cells.
	RawTable struct {
		Columns []string
		Rows    [][]Cell
	}
)

func EmptyCell() Cell {
	return Cell{Kind: KindEmpty}
}

func StringCell(s string) Cell {
	return Cell{Kind: KindString, Str: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: KindNumber, Num: f}
}

func TimeCell(t time.Time) Cell {
	return Cell{Kind: KindTime, Time: t}
}

// IsEmpty reports whether the cell carries no value at all.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty
}

// ColumnIndex returns the index of the named column, or -1.
func (t RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// At returns the cell at (row, col), or an empty cell when the row is short
// or the column is absent.
func (t RawTable) At(row, col int) Cell {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return EmptyCell()
	}
	r := t.Rows[row]
	if col >= len(r) {
		return EmptyCell()
	}
	return r[col]
}

// Len returns the number of data rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}
