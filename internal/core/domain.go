package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// FixedResponsible labels synthetic recurring charges. Rows carrying it
	// never pass through card-rule matching.
	FixedResponsible = "Gastos Fijos"

	// FixedCard is the payment-instrument sentinel on synthetic rows.
	FixedCard = "FIXED"
)

type (
	Date struct {
		time.Time
	}

	// Transaction is one row of the canonical table. Amount is expressed in
	// the base monetary unit, unscaled.
	Transaction struct {
		Date        Date
		Description string
		Amount      float64
		Responsible string
		Card        string
	}

	// Rule maps a card substring to a responsible party.
	Rule struct {
		CardKey     string
		Responsible string
	}

	// RuleSet is an ordered rule list plus the fallback label. Match order is
	// load-bearing, which is why this is a slice and not a map.
	RuleSet struct {
		Rules   []Rule
		Default string
	}

	// FixedExpense is one template entry for the recurring charges injected
	// each month. The date is unbound until instantiated against a target
	// month and year.
	FixedExpense struct {
		Description string
		Amount      float64
	}
)

var (
	ErrNoDefaultRule = errors.New("rule set has no default responsible")
	ErrEmptyRuleKey  = errors.New("rule has empty card key")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyFixed    = errors.New("fixed expense has empty description")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Month returns the calendar month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// InMonth reports whether the date falls in the given month and year.
// Time-of-day is ignored.
func (d Date) InMonth(month, year int) bool {
	return d.Month() == month && d.Year() == year
}

// IsFixed reports whether the transaction is a synthetic fixed-expense row.
func (t Transaction) IsFixed() bool {
	return t.Responsible == FixedResponsible
}

// Validate checks the rule set once at startup. A missing default is a
// configuration error; per-row matching never fails.
func (rs RuleSet) Validate() error {
	if strings.TrimSpace(rs.Default) == "" {
		return ErrNoDefaultRule
	}
	for _, r := range rs.Rules {
		if strings.TrimSpace(r.CardKey) == "" {
			return ErrEmptyRuleKey
		}
		if strings.TrimSpace(r.Responsible) == "" {
			return errors.New("rule " + r.CardKey + " has empty responsible")
		}
	}
	return nil
}

// Match returns the responsible party for a card value: the first rule whose
// key is a substring of the card wins, otherwise the default.
func (rs RuleSet) Match(card string) string {
	card = strings.TrimSpace(card)
	for _, r := range rs.Rules {
		if strings.Contains(card, r.CardKey) {
			return r.Responsible
		}
	}
	return rs.Default
}

func (f FixedExpense) Validate() error {
	if strings.TrimSpace(f.Description) == "" {
		return ErrEmptyFixed
	}
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Instantiate binds the template entry to the first day of the target month.
func (f FixedExpense) Instantiate(month, year int) Transaction {
	return Transaction{
		Date:        NewDate(year, month, 1),
		Description: f.Description,
		Amount:      f.Amount,
		Responsible: FixedResponsible,
		Card:        FixedCard,
	}
}

// DefaultRuleSet mirrors the household card assignments the system ships with.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{CardKey: "9366", Responsible: "FIORELLA INFANTE AMORE"},
			{CardKey: "2081", Responsible: "LUIS ESTEBAN OVIEDO MATAMOROS"},
			{CardKey: "4136", Responsible: "LUIS ESTEBAN OVIEDO MATAMOROS"},
		},
		Default: "ALVARO FERNANDO OVIEDO MATAMOROS",
	}
}

// DefaultFixedExpenses returns the recurring charges injected every month.
func DefaultFixedExpenses() []FixedExpense {
	return []FixedExpense{
		{Description: "Vivienda", Amount: 430000},
		{Description: "Vehículo", Amount: 230000},
		{Description: "Donaciones", Amount: 240000},
	}
}
