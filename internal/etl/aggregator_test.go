package etl

import (
	"reflect"
	"testing"
	"time"

	"homespend/internal/core"
)

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	rules := core.RuleSet{
		Rules: []core.Rule{
			{CardKey: "9366", Responsible: "Fiorella"},
			{CardKey: "2081", Responsible: "Luis"},
		},
		Default: "Alvaro",
	}
	agg, err := NewAggregator(rules, core.DefaultFixedExpenses(), time.UTC)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return agg
}

func TestNewAggregator_InvalidConfig(t *testing.T) {
	_, err := NewAggregator(core.RuleSet{}, nil, time.UTC)
	if err == nil {
		t.Fatal("expected error for rule set without default")
	}

	_, err = NewAggregator(core.DefaultRuleSet(), []core.FixedExpense{{Description: "", Amount: 10}}, time.UTC)
	if err == nil {
		t.Fatal("expected error for fixed expense without description")
	}
}

func TestAssignResponsible(t *testing.T) {
	agg := testAggregator(t)

	tests := []struct {
		name string
		tx   core.Transaction
		want string
	}{
		{
			name: "blank gets rule match on card substring",
			tx:   core.Transaction{Card: "***9366-VISA"},
			want: "Fiorella",
		},
		{
			name: "blank with unmatched card gets default",
			tx:   core.Transaction{Card: "5678"},
			want: "Alvaro",
		},
		{
			name: "pre-existing label is never overwritten",
			tx:   core.Transaction{Card: "9366", Responsible: "Maria"},
			want: "Maria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.AssignResponsible([]core.Transaction{tt.tx})
			if got[0].Responsible != tt.want {
				t.Errorf("responsible = %q, want %q", got[0].Responsible, tt.want)
			}
		})
	}
}

func TestAssignResponsible_Idempotent(t *testing.T) {
	agg := testAggregator(t)
	txs := []core.Transaction{
		{Date: core.NewDate(2024, 3, 1), Card: "9366"},
		{Date: core.NewDate(2024, 3, 2), Card: "x", Responsible: "Maria"},
		{Date: core.NewDate(2024, 3, 3), Card: "unknown"},
	}

	once := agg.AssignResponsible(txs)
	twice := agg.AssignResponsible(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("double assignment changed the table:\n once: %+v\ntwice: %+v", once, twice)
	}
	for i, tx := range once {
		if tx.Responsible == "" {
			t.Errorf("row %d still blank after assignment", i)
		}
	}
}

func TestInjectFixed_EmptyTable(t *testing.T) {
	agg := testAggregator(t)

	got := agg.InjectFixed(nil, 3, 2024)
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	for _, tx := range got {
		if !tx.Date.InMonth(3, 2024) || tx.Date.Day() != 1 {
			t.Errorf("fixed row dated %v, want 2024-03-01", tx.Date)
		}
		if !tx.IsFixed() || tx.Card != core.FixedCard {
			t.Errorf("fixed row not carrying sentinels: %+v", tx)
		}
	}
}

func TestInjectFixed_Idempotent(t *testing.T) {
	agg := testAggregator(t)
	base := []core.Transaction{
		{Date: core.NewDate(2024, 3, 15), Description: "market", Amount: 100, Responsible: "Maria"},
	}

	once := agg.InjectFixed(base, 3, 2024)
	twice := agg.InjectFixed(once, 3, 2024)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second injection modified the table:\n once: %+v\ntwice: %+v", once, twice)
	}
	if len(once) != 4 {
		t.Errorf("got %d rows after injection, want 4", len(once))
	}
}

func TestInjectFixed_DifferentMonthInjectsAgain(t *testing.T) {
	agg := testAggregator(t)

	march := agg.InjectFixed(nil, 3, 2024)
	both := agg.InjectFixed(march, 4, 2024)
	if len(both) != 6 {
		t.Errorf("got %d rows, want fixed rows for both months", len(both))
	}
}

func TestInjectFixed_SortedByDate(t *testing.T) {
	agg := testAggregator(t)
	base := []core.Transaction{
		{Date: core.NewDate(2024, 3, 20), Description: "late", Amount: 10},
		{Date: core.NewDate(2024, 3, 5), Description: "early", Amount: 10},
	}

	got := agg.InjectFixed(base, 3, 2024)
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date.Time) {
			t.Fatalf("rows not sorted ascending by date: %v before %v", got[i].Date, got[i-1].Date)
		}
	}
	if !got[0].IsFixed() {
		t.Errorf("first-of-month fixed rows should sort first, got %+v", got[0])
	}
}

func TestInjectFixedNow_UsesConfiguredZone(t *testing.T) {
	rules := core.DefaultRuleSet()
	loc := time.FixedZone("UTC-6", -6*60*60)
	agg, err := NewAggregator(rules, core.DefaultFixedExpenses(), loc)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}

	// 2024-04-01 03:00 UTC is still 2024-03-31 in UTC-6.
	now := time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC)
	got := agg.InjectFixedNow(nil, now)
	for _, tx := range got {
		if !tx.Date.InMonth(3, 2024) {
			t.Errorf("fixed row dated %v, want March in UTC-6", tx.Date)
		}
	}
}
