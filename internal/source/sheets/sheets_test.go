package sheets

import (
	"context"
	"errors"
	"testing"

	"homespend/internal/core"
)

func fakeClient(values [][]interface{}, err error) *Client {
	return &Client{
		spreadsheetID: "sheet-id",
		sheetName:     "Gastos",
		fetchValues: func(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
			return values, err
		},
	}
}

func TestFetchTable(t *testing.T) {
	values := [][]interface{}{
		{"Fecha", "Descripcion", "Monto", "Tarjeta"},
		{"2024-03-05", "SUPERMERCADO XYZ", "₡45,000", "***9366-VISA"},
		{"06/03/2024", "GASOLINERA", 30000.0, "***2081"},
	}

	table, err := fakeClient(values, nil).FetchTable(context.Background())
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if len(table.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(table.Columns))
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if cell := table.At(1, 2); cell.Kind != core.KindNumber || cell.Num != 30000 {
		t.Errorf("expected numeric cell 30000, got %+v", cell)
	}
	if cell := table.At(0, 2); cell.Str != "₡45,000" {
		t.Errorf("expected currency text preserved, got %q", cell.Str)
	}
}

func TestFetchTable_Empty(t *testing.T) {
	table, err := fakeClient(nil, nil).FetchTable(context.Background())
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if len(table.Columns) != 0 || table.Len() != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestFetchTable_Error(t *testing.T) {
	readErr := errors.New("quota exceeded")
	if _, err := fakeClient(nil, readErr).FetchTable(context.Background()); !errors.Is(err, readErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestName(t *testing.T) {
	if got := fakeClient(nil, nil).Name(); got != "sheets" {
		t.Errorf("Name() = %q", got)
	}
}
