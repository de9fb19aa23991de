package etl

import (
	"fmt"
	"sort"
	"time"

	"homespend/internal/core"
)

// Aggregator applies the responsible-assignment rules, injects the recurring
// fixed expenses and computes KPIs. Its configuration is immutable for the
// lifetime of the process.
type Aggregator struct {
	rules core.RuleSet
	fixed []core.FixedExpense
	loc   *time.Location
}

// NewAggregator validates the configuration once; rule-table misconfiguration
// is a startup error, never a per-row one.
func NewAggregator(rules core.RuleSet, fixed []core.FixedExpense, loc *time.Location) (*Aggregator, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rule set: %w", err)
	}
	for _, f := range fixed {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("fixed expense %q: %w", f.Description, err)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{rules: rules, fixed: fixed, loc: loc}, nil
}

// Location returns the configured time zone used to resolve "now".
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// AssignResponsible fills in the responsible party for rows where it is
// blank. Pre-existing labels are never overwritten, so a second pass over an
// already-assigned table is a no-op.
func (a *Aggregator) AssignResponsible(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Responsible == "" {
			tx.Responsible = a.rules.Match(tx.Card)
		}
		out[i] = tx
	}
	return out
}

// InjectFixed guarantees the configured fixed expenses appear exactly once
// for the target month and year. If any fixed-expense row already exists in
// that month the input is returned unchanged, which makes repeated refresh
// cycles safe. Otherwise one row per template entry is appended, dated the
// first of the month, and the table is re-sorted by ascending date.
func (a *Aggregator) InjectFixed(txs []core.Transaction, month, year int) []core.Transaction {
	for _, tx := range txs {
		if tx.IsFixed() && tx.Date.InMonth(month, year) {
			return txs
		}
	}

	injected := make([]core.Transaction, 0, len(txs)+len(a.fixed))
	injected = append(injected, txs...)
	for _, f := range a.fixed {
		injected = append(injected, f.Instantiate(month, year))
	}
	if len(txs) == 0 {
		return injected
	}
	sort.SliceStable(injected, func(i, j int) bool {
		return injected[i].Date.Before(injected[j].Date.Time)
	})
	return injected
}

// InjectFixedNow injects for the current month in the configured time zone.
func (a *Aggregator) InjectFixedNow(txs []core.Transaction, now time.Time) []core.Transaction {
	now = now.In(a.loc)
	return a.InjectFixed(txs, int(now.Month()), now.Year())
}
