package etl

import (
	"time"

	"homespend/internal/core"
)

// Processor runs the full pipeline: clean, assign, inject, summarize.
type Processor struct {
	norm Normalizer
	agg  *Aggregator
}

// NewProcessor wires a normalizer and a validated aggregator.
func NewProcessor(rules core.RuleSet, fixed []core.FixedExpense, loc *time.Location) (*Processor, error) {
	agg, err := NewAggregator(rules, fixed, loc)
	if err != nil {
		return nil, err
	}
	return &Processor{agg: agg}, nil
}

// Aggregator exposes the underlying aggregator for callers that need a
// single stage.
func (p *Processor) Aggregator() *Aggregator {
	return p.agg
}

// Process transforms a raw table into the canonical table and its KPI
// summary. now is captured once by the caller; the same instant drives both
// the injection target month and the KPI reference month.
func (p *Processor) Process(raw core.RawTable, now time.Time) ([]core.Transaction, core.KPISummary) {
	txs := p.norm.Clean(raw)
	txs = p.agg.AssignResponsible(txs)
	txs = p.agg.InjectFixedNow(txs, now)
	return txs, p.agg.CalculateKPIs(txs, now)
}
