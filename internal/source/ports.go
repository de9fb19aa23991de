// Package source defines the boundary to the systems a raw expense table can
// be fetched from, plus helpers shared by the adapters.
package source

import (
	"context"
	"time"

	"homespend/internal/core"
)

// TableFetcher is the outbound port for the remote file store: give me the
// current raw table, or an error. Decoding concerns (Excel, sheet ranges)
// live behind this interface.
type TableFetcher interface {
	FetchTable(ctx context.Context) (core.RawTable, error)
}

// Name identifies an adapter in logs and refresh records.
type Name interface {
	Name() string
}

// TableFromValues converts a values matrix, as produced by spreadsheet APIs,
// into a RawTable. The first row is read as the header row; cells keep their
// wire type so the normalizer can apply its own conversions.
func TableFromValues(values [][]interface{}) core.RawTable {
	if len(values) == 0 {
		return core.RawTable{}
	}

	headerRow := values[0]
	columns := make([]string, 0, len(headerRow))
	for _, h := range headerRow {
		columns = append(columns, core.TextValue(cellFromValue(h)))
	}

	rows := make([][]core.Cell, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]core.Cell, 0, len(raw))
		for _, v := range raw {
			row = append(row, cellFromValue(v))
		}
		rows = append(rows, row)
	}
	return core.RawTable{Columns: columns, Rows: rows}
}

// cellFromValue maps a decoded JSON value onto the cell variant.
func cellFromValue(v interface{}) core.Cell {
	switch val := v.(type) {
	case nil:
		return core.EmptyCell()
	case string:
		if val == "" {
			return core.EmptyCell()
		}
		return core.StringCell(val)
	case float64:
		return core.NumberCell(val)
	case int:
		return core.NumberCell(float64(val))
	case int64:
		return core.NumberCell(float64(val))
	case bool:
		if val {
			return core.StringCell("true")
		}
		return core.StringCell("false")
	case time.Time:
		return core.TimeCell(val)
	default:
		return core.EmptyCell()
	}
}
