// Package money holds the integer-cents helpers shared by the catalog and the
// sale engine. Amounts are always int64 cents; floating point only appears at
// the formatting edge.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when no ISO code is configured.
const DefaultCurrency = "USD"

// ErrInvalidAmount is returned when a decimal price string cannot be parsed.
var ErrInvalidAmount = errors.New("money: invalid amount")

// ClampInt truncates n toward zero and clamps the result into [min, max].
// NaN maps to min.
func ClampInt(n float64, min, max int) int {
	if math.IsNaN(n) {
		return min
	}
	t := math.Trunc(n)
	if t < float64(min) {
		return min
	}
	if t > float64(max) {
		return max
	}
	return int(t)
}

// DivRoundHalfUp divides num by den (den > 0) and rounds exact halves toward
// positive infinity, the same way Math.round does.
func DivRoundHalfUp(num, den int64) int64 {
	return floorDiv(2*num+den, 2*den)
}

// ApplyBasisPoints returns amount*bps/10000 rounded half-up to the cent.
func ApplyBasisPoints(amount int64, bps int) int64 {
	return DivRoundHalfUp(amount*int64(bps), 10_000)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ParseCents converts a decimal string such as "12.50" into cents. Values with
// more than two fractional digits are rounded half away from zero.
func ParseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d.Round(2).Shift(2).IntPart(), nil
}

// Decimal renders cents as a plain fixed-point string ("12.50").
func Decimal(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Format renders cents as a localized currency string. Unknown locales fall
// back to English and unknown currency codes to USD.
func Format(cents int64, locale, code string) string {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	amount := decimal.New(cents, -2).InexactFloat64()
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
