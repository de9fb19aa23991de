package core

import (
	"testing"
	"time"
)

func TestDateValue_StringFormats(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  time.Time
		notOK bool
	}{
		{
			name: "iso",
			in:   "2024-03-01",
			want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day first slash",
			in:   "15/03/2024",
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			// Day-first cannot parse month 15, so the month-first pattern
			// catches it.
			name: "month first when day first impossible",
			in:   "03/15/2024",
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			// Both readings are plausible; the fixed priority list resolves
			// ambiguity as day-first.
			name: "ambiguous resolves day first",
			in:   "03/04/2024",
			want: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day first dash",
			in:   "25-12-2024",
			want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "fallback datetime",
			in:   "2024-03-01 14:30:00",
			want: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		},
		{
			name:  "garbage",
			in:    "not a date",
			notOK: true,
		},
		{
			name:  "blank",
			in:    "   ",
			notOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateValue(StringCell(tt.in))
			if tt.notOK {
				if ok {
					t.Errorf("DateValue(%q) ok = true, want false", tt.in)
				}
				return
			}
			if !ok {
				t.Fatalf("DateValue(%q) ok = false", tt.in)
			}
			if !got.Equal(tt.want) {
				t.Errorf("DateValue(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateValue_NonStringCells(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 45, 0, 0, time.UTC)
	got, ok := DateValue(TimeCell(ts))
	if !ok || !got.Equal(ts) {
		t.Errorf("DateValue(TimeCell) = %v, %v; want passthrough", got, ok)
	}

	if _, ok := DateValue(EmptyCell()); ok {
		t.Error("DateValue(EmptyCell) ok = true")
	}
	if _, ok := DateValue(NumberCell(45000)); ok {
		t.Error("DateValue(NumberCell) ok = true")
	}
}

func TestAmountValue(t *testing.T) {
	tests := []struct {
		name string
		in   Cell
		want float64
	}{
		{
			name: "number passthrough",
			in:   NumberCell(75000),
			want: 75000,
		},
		{
			name: "colon symbol and thousands separator",
			in:   StringCell("₡50,000"),
			want: 50000,
		},
		{
			name: "decimal with spaces",
			in:   StringCell(" 1 234.50 "),
			want: 1234.5,
		},
		{
			name: "negative amount",
			in:   StringCell("-12000"),
			want: -12000,
		},
		{
			name: "euro symbol",
			in:   StringCell("€99.90"),
			want: 99.9,
		},
		{
			name: "unparseable degrades to zero",
			in:   StringCell("n/a"),
			want: 0,
		},
		{
			name: "missing degrades to zero",
			in:   EmptyCell(),
			want: 0,
		},
		{
			name: "date cell degrades to zero",
			in:   TimeCell(time.Now()),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AmountValue(tt.in); got != tt.want {
				t.Errorf("AmountValue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextValue(t *testing.T) {
	tests := []struct {
		name string
		in   Cell
		want string
	}{
		{name: "trims whitespace", in: StringCell("  UBER TRIP  "), want: "UBER TRIP"},
		{name: "missing becomes empty", in: EmptyCell(), want: ""},
		{name: "number stringified", in: NumberCell(9366), want: "9366"},
		{name: "time stringified", in: TimeCell(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), want: "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextValue(tt.in); got != tt.want {
				t.Errorf("TextValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRawTable_At(t *testing.T) {
	table := RawTable{
		Columns: []string{"a", "b"},
		Rows: [][]Cell{
			{StringCell("x")}, // short row
		},
	}

	if got := table.At(0, 1); !got.IsEmpty() {
		t.Errorf("short row should read as empty cell, got %+v", got)
	}
	if got := table.At(5, 0); !got.IsEmpty() {
		t.Errorf("out of range row should read as empty cell, got %+v", got)
	}
	if got := table.At(0, table.ColumnIndex("a")); got.Str != "x" {
		t.Errorf("At(0, a) = %+v", got)
	}
	if table.ColumnIndex("missing") != -1 {
		t.Error("ColumnIndex(missing) != -1")
	}
}
