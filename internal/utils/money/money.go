// Package money implements the marketplace's fixed-point currency arithmetic.
// All amounts are integer pence; percentages are decimals. Rounding is always
// half away from zero, which decimal.Round implements.
package money

import (
	"fmt"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReturnFor computes the frozen return figures for a pledge: pct is the TOTAL
// return percentage for the opportunity (not annualised, not pro-rated).
// Returns (expectedReturnPence, expectedTotalPence).
//
// Guard clauses: a non-positive amount or percentage yields a zero return and
// a total of max(amount, 0).
func ReturnFor(amountPence int64, pct decimal.Decimal) (int64, int64) {
	if amountPence <= 0 || !pct.IsPositive() {
		if amountPence < 0 {
			return 0, 0
		}
		return 0, amountPence
	}

	expectedReturn := decimal.NewFromInt(amountPence).
		Mul(pct).
		Div(hundred).
		Round(0).
		IntPart()

	return expectedReturn, amountPence + expectedReturn
}

// PoundsToPence converts a caller-facing pounds amount to integer pence.
// Amounts with more than two decimal places are rejected rather than rounded,
// so a sub-penny pledge can never slip through as a different amount than the
// caller intended.
func PoundsToPence(pounds decimal.Decimal) (int64, error) {
	if pounds.Exponent() < -2 && !pounds.Equal(pounds.Truncate(2)) {
		return 0, fmt.Errorf("%w: amount must have at most two decimal places", apperrors.ErrValidation)
	}
	return pounds.Mul(hundred).IntPart(), nil
}

// PenceToPounds renders integer pence as a two-decimal pounds value for
// display payloads.
func PenceToPounds(pence int64) decimal.Decimal {
	return decimal.NewFromInt(pence).Div(hundred).Round(2)
}
