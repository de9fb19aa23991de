package core

// MerchantAmount is an amount aggregated under a merchant label.
type MerchantAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// KPISummary is the derived monthly overview. It is recomputed from scratch
// on every refresh and never persisted.
type KPISummary struct {
	TotalAmount           float64            `json:"total_amount"`
	TransactionCount      int                `json:"transaction_count"`
	AverageTicket         float64            `json:"average_ticket"`
	MonthDelta            float64            `json:"month_delta"`
	TopMerchants          []MerchantAmount   `json:"top_merchants"`
	SpendingByResponsible map[string]float64 `json:"spending_by_responsible"`
}
