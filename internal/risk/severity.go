// Package risk implements the weather-risk analysis and payout-eligibility
// engine. The scorers are pure functions over in-memory observation series;
// the only I/O in this package is the Analyzer's observation fetching.
package risk

import "perilwatch/internal/types"

// severityForValue classifies a value against three ascending thresholds.
// value >= t3 -> extreme, >= t2 -> high, >= t1 -> medium, else low.
func severityForValue(value float64, t1, t2, t3 float64) types.Severity {
	switch {
	case value >= t3:
		return types.SeverityExtreme
	case value >= t2:
		return types.SeverityHigh
	case value >= t1:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// severityPoints is the per-event contribution to the flood risk score.
var severityPoints = map[types.Severity]int{
	types.SeverityLow:     10,
	types.SeverityMedium:  20,
	types.SeverityHigh:    35,
	types.SeverityExtreme: 50,
}

// clampScore caps a risk score at 100. Scores are never negative by
// construction, so only the upper bound needs enforcement.
func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}

// Result is the shared output shape of every peril scorer.
type Result struct {
	RiskScore int
	Events    []types.TriggerEvent
}
