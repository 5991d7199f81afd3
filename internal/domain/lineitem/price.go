// internal/domain/lineitem/price.go
package lineitem

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minUnitPrice = decimal.NewFromFloat(0.01)
	// recomposeTolerance bounds the rounding drift allowed when testing
	// whether a server price was stored as a total
	recomposeTolerance = decimal.NewFromFloat(0.01)
)

// Normalizer validates and canonicalizes monetary values coming from
// callers and from the remote store.
type Normalizer struct {
	ceiling decimal.Decimal
}

// NewNormalizer creates a price normalizer with the given ceiling
func NewNormalizer(ceiling float64) *Normalizer {
	return &Normalizer{ceiling: decimal.NewFromFloat(ceiling)}
}

// Normalize parses and validates a raw price, returning it rounded to the
// nearest cent. It fails with InvalidPriceError on non-numeric input,
// values below 0.01 or above the ceiling, and more than 2 fractional digits.
func (n *Normalizer) Normalize(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, &InvalidPriceError{Raw: raw, Reason: "empty value"}
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &InvalidPriceError{Raw: raw, Reason: "not a number"}
	}

	return n.NormalizeValue(d, raw)
}

// NormalizeValue validates an already-parsed price. The raw form is carried
// through for error reporting.
func (n *Normalizer) NormalizeValue(d decimal.Decimal, raw string) (decimal.Decimal, error) {
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, &InvalidPriceError{Raw: raw, Reason: "more than 2 fractional digits"}
	}
	if d.LessThan(minUnitPrice) {
		return decimal.Zero, &InvalidPriceError{Raw: raw, Reason: "below minimum of 0.01"}
	}
	if d.GreaterThan(n.ceiling) {
		return decimal.Zero, &InvalidPriceError{Raw: raw, Reason: "above configured ceiling"}
	}
	return d.Round(2), nil
}

// ServerPriceToUnit disambiguates the remote store's total-vs-unit pricing.
// When quantity > 1 and dividing the price by the quantity recomposes the
// original within a cent, the server is assumed to have stored a total and
// the per-unit candidate is returned. Otherwise the price is treated as a
// unit price already.
func (n *Normalizer) ServerPriceToUnit(price decimal.Decimal, quantity int) decimal.Decimal {
	if quantity > 1 {
		qty := decimal.NewFromInt(int64(quantity))
		candidate := price.Div(qty).Round(2)
		recomposed := candidate.Mul(qty).Round(2)
		if recomposed.Sub(price).Abs().LessThanOrEqual(recomposeTolerance) {
			return candidate
		}
	}
	return price.Round(2)
}
