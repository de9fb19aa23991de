// Package core provides the canonical transaction model and the per-field
// cell conversions used by the normalizer.
package core

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts is the fixed priority list tried against string dates. The
// day-first form is tried before the month-first form, so ambiguous values
// like "03/04/2024" resolve as day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// fallbackLayouts is the permissive second chance for strings that match no
// pattern in the fixed list.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// currencyMarks are stripped from amount strings before numeric parsing.
var currencyMarks = []string{"₡", "$", "€", "¢"}

// DateValue converts a cell to a calendar timestamp.
//
// Date-typed cells pass through unchanged. Strings go through the fixed
// layout list, then the permissive fallbacks. Anything else, and any string
// that matches nothing, reports ok=false; the row is dropped later, never
// surfaced as an error.
func DateValue(c Cell) (time.Time, bool) {
	switch c.Kind {
	case KindTime:
		return c.Time, true
	case KindString:
		s := strings.TrimSpace(c.Str)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range fallbackLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// AmountValue converts a cell to a signed amount in the base monetary unit.
//
// Missing cells and parse failures degrade to 0 so the row gets dropped by
// the zero filter. Strings are cleaned of currency symbols, thousands
// separators and whitespace first:
//
//	AmountValue(StringCell("₡50,000"))  -> 50000
//	AmountValue(StringCell("1 234.50")) -> 1234.5
//	AmountValue(StringCell("n/a"))      -> 0
func AmountValue(c Cell) float64 {
	switch c.Kind {
	case KindNumber:
		return c.Num
	case KindString:
		s := c.Str
		for _, mark := range currencyMarks {
			s = strings.ReplaceAll(s, mark, "")
		}
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// TextValue converts a cell to a trimmed string, empty for missing values.
func TextValue(c Cell) string {
	switch c.Kind {
	case KindString:
		return strings.TrimSpace(c.Str)
	case KindNumber:
		return strings.TrimSpace(strconv.FormatFloat(c.Num, 'f', -1, 64))
	case KindTime:
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}
