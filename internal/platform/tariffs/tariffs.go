// Package tariffs holds the marketplace's static pricing and return-band
// tables. The tables are immutable after construction; one instance is built
// at process start and shared by reference.
package tariffs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/greensquarecapital/gsc_backend/internal/apperrors"
	"github.com/greensquarecapital/gsc_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReturnRange is a closed total-return percentage range.
type ReturnRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Midpoint is the effective rate used for pledges: (min + max) / 2.
func (r ReturnRange) Midpoint() decimal.Decimal {
	return r.Min.Add(r.Max).Div(decimal.NewFromInt(2))
}

// Tariffs bundles the activation-fee tiers and the return-band mapping.
type Tariffs struct {
	fundingTierPence  map[domain.FundingBand]int64
	durationTierPence map[int]int64
	returnBands       map[domain.ReturnBand]ReturnRange
}

// Default returns the standard tariff tables.
func Default() *Tariffs {
	return &Tariffs{
		fundingTierPence: map[domain.FundingBand]int64{
			domain.Band10to20:   1999,
			domain.Band21to30:   2499,
			domain.Band31to40:   2999,
			domain.Band41to50:   3499,
			domain.Band51to75:   4999,
			domain.Band76to100:  6499,
			domain.Band100to150: 8499,
			domain.Band151to250: 10999,
		},
		durationTierPence: map[int]int64{
			7:  499,
			14: 799,
			30: 1299,
			60: 1999,
		},
		returnBands: map[domain.ReturnBand]ReturnRange{
			domain.Return2to4:    {Min: decimal.NewFromInt(2), Max: decimal.NewFromInt(4)},
			domain.Return5to9:    {Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(9)},
			domain.Return10to14:  {Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(14)},
			domain.Return15to175: {Min: decimal.NewFromInt(15), Max: decimal.RequireFromString("17.5")},
		},
	}
}

// PriceForActivation returns the one-off activation fee in pence for the
// given funding band and listing duration: funding tier + duration tier.
func (t *Tariffs) PriceForActivation(band domain.FundingBand, durationDays int) (int64, error) {
	fundingFee, ok := t.fundingTierPence[band]
	if !ok {
		return 0, fmt.Errorf("%w: unknown funding band %q", apperrors.ErrValidation, band)
	}
	durationFee, ok := t.durationTierPence[durationDays]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported listing duration %d days", apperrors.ErrValidation, durationDays)
	}
	return fundingFee + durationFee, nil
}

// ReturnRange resolves a listing's return band to its percentage range.
// An unset or unknown band is a data-consistency failure, never a silent 0%.
func (t *Tariffs) ReturnRange(band domain.ReturnBand) (ReturnRange, error) {
	r, ok := t.returnBands[band]
	if !ok {
		return ReturnRange{}, fmt.Errorf("%w: return band %q is not configured", apperrors.ErrConfiguration, band)
	}
	return r, nil
}

// KnownFundingBand reports whether the band is in the tariff table.
func (t *Tariffs) KnownFundingBand(band domain.FundingBand) bool {
	_, ok := t.fundingTierPence[band]
	return ok
}

// KnownReturnBand reports whether the band has a configured percentage range.
func (t *Tariffs) KnownReturnBand(band domain.ReturnBand) bool {
	_, ok := t.returnBands[band]
	return ok
}

// FundingTargetPence parses the funding target (the band's upper bound, in
// whole pounds) out of the "LOW_HIGH" band value and converts it to pence.
// Returns ok=false when the band is unset or unparsable; callers report
// unknown progress instead of failing.
func FundingTargetPence(band domain.FundingBand) (int64, bool) {
	parts := strings.Split(string(band), "_")
	if len(parts) < 2 {
		return 0, false
	}
	upper, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil || upper <= 0 {
		return 0, false
	}
	return upper * 100, true
}
