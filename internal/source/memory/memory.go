// Package memory provides an in-process table source seeded with sample
// data, used for demo runs and tests where no remote store is configured.
package memory

import (
	"context"
	"sync"

	"homespend/internal/core"
)

type Store struct {
	mu    sync.Mutex
	table core.RawTable
}

// New returns a store holding the given raw table.
func New(table core.RawTable) *Store {
	return &Store{table: table}
}

// NewSample returns a store seeded with a deterministic sample month: mixed
// date formats, currency strings and partially assigned responsibles, the
// same shapes the remote spreadsheet produces.
func NewSample() *Store {
	return New(core.RawTable{
		Columns: []string{"Fecha", "Descripción", "Monto", "Responsable", "Tarjeta"},
		Rows: [][]core.Cell{
			{
				core.StringCell("2024-03-02"),
				core.StringCell("SUPERMERCADO LA COSECHA"),
				core.StringCell("₡52,300"),
				core.EmptyCell(),
				core.StringCell("***9366"),
			},
			{
				core.StringCell("05/03/2024"),
				core.StringCell("GASOLINERA DELTA"),
				core.NumberCell(38000),
				core.EmptyCell(),
				core.StringCell("***2081"),
			},
			{
				core.StringCell("2024-03-08"),
				core.StringCell("FARMACIA FISCHEL"),
				core.StringCell("₡12,750"),
				core.StringCell("FIORELLA INFANTE AMORE"),
				core.StringCell("***9366"),
			},
			{
				core.StringCell("12/03/2024"),
				core.StringCell("UBER TRIP"),
				core.NumberCell(4500),
				core.EmptyCell(),
				core.StringCell("***4136"),
			},
			{
				core.StringCell("2024-03-15"),
				core.StringCell("WALMART"),
				core.StringCell("₡86,900"),
				core.EmptyCell(),
				core.StringCell("***7777"),
			},
			{
				core.StringCell("2024-03-20"),
				core.StringCell("NETFLIX"),
				core.NumberCell(6900),
				core.EmptyCell(),
				core.StringCell("***2081"),
			},
		},
	})
}

// FetchTable implements source.TableFetcher.
func (s *Store) FetchTable(_ context.Context) (core.RawTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy rows so callers can never alias the seed table.
	rows := make([][]core.Cell, len(s.table.Rows))
	for i, r := range s.table.Rows {
		rows[i] = append([]core.Cell(nil), r...)
	}
	return core.RawTable{
		Columns: append([]string(nil), s.table.Columns...),
		Rows:    rows,
	}, nil
}

// Replace swaps the stored table, for tests that need to vary the source.
func (s *Store) Replace(table core.RawTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

// Name implements source.Name.
func (s *Store) Name() string {
	return "memory"
}
