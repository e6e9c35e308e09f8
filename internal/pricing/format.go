package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"crypto-tracker/internal/domain"
)

// Sentinel display strings substituted when data is absent.
const (
	NotFound    = "not found"
	Unavailable = "unavailable"
)

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
)

// Format renders the quote of id in record, e.g. "$67,187.34 (+3.62%)".
// The change suffix is omitted when the provider sent no 24h change.
func Format(record domain.PriceRecord, id domain.CoinID) string {
	q, ok := record.Lookup(id)
	if !ok {
		return NotFound
	}
	return FormatQuote(q)
}

// FormatQuote renders price and optional 24h change of q.
func FormatQuote(q domain.Quote) string {
	s := FormatPrice(q.Price)
	if q.Change24h.Valid {
		s += " (" + FormatPercent(q.Change24h.Decimal) + ")"
	}
	return s
}

// FormatPrice renders a price as "$1,234,567.89" or Unavailable.
func FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return Unavailable
	}
	return FormatUSD(p.Decimal)
}

// FormatUSD renders d with two decimals and thousands separators.
func FormatUSD(d decimal.Decimal) string {
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + "$" + groupThousands(d.Abs().StringFixed(2))
}

// FormatChange renders a 24h change as "+3.46%" or Unavailable.
func FormatChange(c decimal.NullDecimal) string {
	if !c.Valid {
		return Unavailable
	}
	return FormatPercent(c.Decimal)
}

// FormatPercent renders d with two decimals and an explicit sign; values
// >= 0 get "+".
func FormatPercent(d decimal.Decimal) string {
	sign := "+"
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + d.Abs().StringFixed(2) + "%"
}

// FormatMarketCap renders a market cap with unit suffixes:
// >= 1e12 "$1.3T", >= 1e9 "$2.3B", >= 1e6 "$450M", else "$999,999".
// Absent or non-positive values render as Unavailable.
func FormatMarketCap(m decimal.NullDecimal) string {
	if !m.Valid || m.Decimal.Sign() <= 0 {
		return Unavailable
	}
	d := m.Decimal
	switch {
	case d.GreaterThanOrEqual(trillion):
		return "$" + d.Div(trillion).StringFixed(1) + "T"
	case d.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).StringFixed(1) + "B"
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(0) + "M"
	default:
		return "$" + groupThousands(d.StringFixed(0))
	}
}

// printer groups integers the way English renders them, "1,234,567".
var printer = message.NewPrinter(language.English)

// groupThousands inserts commas into the integer part of an unsigned
// fixed-point string. Integers beyond int64 are returned ungrouped.
func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	return printer.Sprintf("%d", n) + frac
}
