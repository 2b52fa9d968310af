// Package price holds the canonical decimal price representation for
// prediction-market shares. Prices are always decimals in [0, 1]; the
// cent-display form is one-way and never fed back into arithmetic.
package price

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("price must be strictly between 0 and 1")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// TickDefault is the standard CLOB tick; TickNegRisk applies to
	// neg-risk markets, which quote in whole cents.
	TickDefault = decimal.RequireFromString("0.001")
	TickNegRisk = decimal.RequireFromString("0.01")
)

// Validate rejects prices outside (0, 1) exclusive. 0 and 1 mean a resolved
// or degenerate market and are never tradable.
func Validate(p decimal.Decimal) error {
	if p.Cmp(decimal.Zero) <= 0 || p.Cmp(one) >= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Quantize rounds p to the nearest multiple of tick. Quantize(Quantize(p)) ==
// Quantize(p) for any positive tick.
func Quantize(p, tick decimal.Decimal) decimal.Decimal {
	if tick.Cmp(decimal.Zero) <= 0 {
		return p
	}
	return p.Div(tick).Round(0).Mul(tick)
}

// Tick returns the minimum price increment for a market.
func Tick(negRisk bool) decimal.Decimal {
	if negRisk {
		return TickNegRisk
	}
	return TickDefault
}

// Display renders a price as whole cents, e.g. 0.35 -> "35¢".
func Display(p decimal.Decimal) string {
	return p.Mul(hundred).Round(0).String() + "¢"
}
