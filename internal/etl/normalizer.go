// Package etl implements the transaction normalization and KPI aggregation
// engine: raw table in, canonical table and monthly summary out. Every entry
// point is a pure function of its inputs; the engine holds no mutable state
// and is safe for concurrent use.
package etl

import (
	"homespend/internal/core"
)

// canonical column names.
const (
	colDate        = "Date"
	colDescription = "Description"
	colAmount      = "Amount"
	colResponsible = "Responsible"
	colCard        = "Card"
)

// columnAliases maps known alternate column names to canonical ones. The
// source files mix Spanish and English headers.
var columnAliases = map[string]string{
	"Fecha":       colDate,
	"Descripción": colDescription,
	"Descripcion": colDescription,
	"Business":    colDescription,
	"Monto":       colAmount,
	"Responsable": colResponsible,
	"Tarjeta":     colCard,
}

// Normalizer cleans a loosely-structured table into the canonical schema.
type Normalizer struct{}

// Clean reconciles columns, converts cells and filters invalid rows.
//
// Rows without a parseable date and rows whose amount parses to exactly 0
// are dropped; malformed individual cells degrade rather than fail. The
// result has trimmed text fields and no zero amounts. An empty or
// column-less input yields an empty canonical table, never an error.
func (Normalizer) Clean(raw core.RawTable) []core.Transaction {
	cols := canonicalIndexes(raw.Columns)

	out := make([]core.Transaction, 0, raw.Len())
	for i := 0; i < raw.Len(); i++ {
		date, ok := core.DateValue(raw.At(i, cols[colDate]))
		if !ok {
			continue
		}
		amount := core.AmountValue(raw.At(i, cols[colAmount]))
		if amount == 0 {
			continue
		}
		out = append(out, core.Transaction{
			Date:        core.Date{Time: date},
			Description: core.TextValue(raw.At(i, cols[colDescription])),
			Amount:      amount,
			Responsible: core.TextValue(raw.At(i, cols[colResponsible])),
			Card:        core.TextValue(raw.At(i, cols[colCard])),
		})
	}
	return out
}

// canonicalIndexes resolves each canonical column to a source column index.
// When several source columns map to the same canonical name the first one
// in source order wins. Absent columns map to -1, which RawTable.At reads as
// an empty cell for every row.
func canonicalIndexes(columns []string) map[string]int {
	idx := map[string]int{
		colDate:        -1,
		colDescription: -1,
		colAmount:      -1,
		colResponsible: -1,
		colCard:        -1,
	}
	for i, name := range columns {
		canonical := name
		if alias, ok := columnAliases[name]; ok {
			canonical = alias
		}
		if pos, known := idx[canonical]; known && pos == -1 {
			idx[canonical] = i
		}
	}
	return idx
}
