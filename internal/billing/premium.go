// Package billing computes policy premiums and charges them through the
// payment provider.
package billing

import (
	"math"

	"perilwatch/internal/types"
)

// Annual base rates per coverage type, as a fraction of the coverage amount.
// Multi-peril is priced as the sum of the single-peril rates.
var coverageRates = map[types.CoverageType]float64{
	types.CoverageFlood:      0.02,
	types.CoverageWind:       0.015,
	types.CoverageDrought:    0.025,
	types.CoverageHail:       0.01,
	types.CoverageMultiPeril: 0.07,
}

// defaultCoverageRate applies when a coverage type has no listed rate.
const defaultCoverageRate = 0.02

// Risk multipliers per crop type. Unlisted crops price at 1.0.
var cropMultipliers = map[string]float64{
	"corn":       1.0,
	"wheat":      0.8,
	"soybeans":   0.9,
	"rice":       1.2,
	"cotton":     1.1,
	"vegetables": 1.3,
	"fruits":     1.4,
}

// Quoter prices policies. It is stateless; the struct exists so handlers can
// depend on an interface and tests can swap in a fixed-price fake.
type Quoter struct{}

// NewQuoter creates a premium Quoter.
func NewQuoter() *Quoter {
	return &Quoter{}
}

// MonthlyPremium computes the monthly premium in USD for the given coverage.
//
// The annual premium is coverageAmount x rate x cropMultiplier; a size factor
// of min(farmSize/100, 2) adds up to 20% for large farms. The result is
// rounded to cents.
func (q *Quoter) MonthlyPremium(coverage types.CoverageType, cropType string, farmSizeHectares, coverageAmount float64) (float64, error) {
	if coverageAmount <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidAmount,
			"coverage amount must be positive",
			nil,
		)
	}

	rate, ok := coverageRates[coverage]
	if !ok {
		rate = defaultCoverageRate
	}

	multiplier, ok := cropMultipliers[cropType]
	if !ok {
		multiplier = 1.0
	}

	sizeFactor := math.Min(farmSizeHectares/100, 2)

	base := coverageAmount * rate * multiplier / 12
	premium := base * (1 + sizeFactor*0.1)

	return math.Round(premium*100) / 100, nil
}
