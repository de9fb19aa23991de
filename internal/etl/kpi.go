package etl

import (
	"sort"
	"time"

	"homespend/internal/core"
)

// topMerchantLimit caps the merchant ranking in the summary.
const topMerchantLimit = 10

// CalculateKPIs produces the monthly summary for the calendar month of now,
// resolved in the configured time zone. The reference time is captured once
// by the caller and held constant, so month boundaries cannot shift while a
// computation is in flight. An empty table yields a zeroed summary.
func (a *Aggregator) CalculateKPIs(txs []core.Transaction, now time.Time) core.KPISummary {
	return CalculateKPIs(txs, now.In(a.loc))
}

// CalculateKPIs is the zone-agnostic form: the caller has already resolved
// now into the zone month boundaries should follow.
func CalculateKPIs(txs []core.Transaction, now time.Time) core.KPISummary {
	summary := core.KPISummary{
		TopMerchants:          []core.MerchantAmount{},
		SpendingByResponsible: map[string]float64{},
	}
	if len(txs) == 0 {
		return summary
	}

	curMonth, curYear := int(now.Month()), now.Year()
	prevMonth, prevYear := curMonth-1, curYear
	if prevMonth < 1 {
		prevMonth = 12
		prevYear--
	}

	var (
		current   []core.Transaction
		prevTotal float64
	)
	for _, tx := range txs {
		switch {
		case tx.Date.InMonth(curMonth, curYear):
			current = append(current, tx)
		case tx.Date.InMonth(prevMonth, prevYear):
			prevTotal += tx.Amount
		}
	}

	var curTotal float64
	for _, tx := range current {
		curTotal += tx.Amount
	}

	summary.TotalAmount = curTotal
	summary.TransactionCount = len(current)
	if len(current) > 0 {
		summary.AverageTicket = curTotal / float64(len(current))
	}
	summary.MonthDelta = monthDelta(curTotal, prevTotal)
	summary.TopMerchants = topMerchants(current)
	for _, tx := range current {
		summary.SpendingByResponsible[tx.Responsible] += tx.Amount
	}
	return summary
}

// monthDelta is the percentage change versus the previous month. The final
// branch is unreachable for a positive previous total under the general
// formula, but it also catches negative baselines, so the explicit ladder is
// kept.
func monthDelta(current, previous float64) float64 {
	switch {
	case previous > 0:
		return (current - previous) / previous * 100
	case previous == 0 && current > 0:
		return 100.0
	case previous == 0 && current == 0:
		return 0.0
	default:
		return -100.0
	}
}

// topMerchants sums amounts by description and returns the largest groups in
// descending order. Ties keep the order in which a merchant first appeared.
func topMerchants(txs []core.Transaction) []core.MerchantAmount {
	sums := map[string]float64{}
	var order []string
	for _, tx := range txs {
		if _, seen := sums[tx.Description]; !seen {
			order = append(order, tx.Description)
		}
		sums[tx.Description] += tx.Amount
	}

	ranked := make([]core.MerchantAmount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, core.MerchantAmount{Name: name, Amount: sums[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})
	if len(ranked) > topMerchantLimit {
		ranked = ranked[:topMerchantLimit]
	}
	return ranked
}
