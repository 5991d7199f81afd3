// internal/domain/lineitem/price_test.go
package lineitem

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAcceptsValidPrices(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(100000)

	cases := map[string]string{
		"9.99":   "9.99",
		"0.01":   "0.01",
		"10":     "10",
		"10.5":   "10.5",
		" 25.00": "25",
	}
	for raw, want := range cases {
		got, err := n.Normalize(raw)
		require.NoError(t, err, "price %q", raw)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "price %q: got %s", raw, got)
	}
}

func TestNormalizeRejectsInvalidPrices(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(100000)

	cases := []string{
		"9.999",     // 3 fractional digits
		"0",         // below minimum
		"0.001",     // below minimum and too precise
		"-5",        // negative
		"abc",       // non-numeric
		"",          // empty
		"1000000.0", // above ceiling
	}
	for _, raw := range cases {
		_, err := n.Normalize(raw)
		require.Error(t, err, "price %q", raw)
		assert.True(t, IsInvalidPrice(err), "price %q: got %v", raw, err)
	}
}

func TestNormalizeValueKeepsTrailingZeros(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(100000)

	// 9.990 is numerically 2 fractional digits even if written with 3
	got, err := n.Normalize("9.990")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("9.99")))
}

func TestServerPriceToUnitDetectsTotals(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(100000)

	// 10 across 4 units recomposes exactly: stored as a total
	got := n.ServerPriceToUnit(decimal.NewFromInt(10), 4)
	assert.True(t, got.Equal(decimal.RequireFromString("2.5")), "got %s", got)

	// quantity 1 never triggers the heuristic
	got = n.ServerPriceToUnit(decimal.NewFromInt(10), 1)
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)
}

func TestServerPriceToUnitKeepsUnitPrices(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(100000)

	// 10 across 6 units rounds to 1.67 which recomposes to 10.02, outside
	// tolerance: the price was already per unit
	got := n.ServerPriceToUnit(decimal.NewFromInt(10), 6)
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)
}
