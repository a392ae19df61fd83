package risk

import (
	"fmt"

	"perilwatch/internal/types"
)

// EvaluatePayout decides whether the analysis entitles the policy to a
// payout. It returns at most one recommendation, or (nil, nil) when no
// event qualifies.
//
// Events matching the policy's coverage are considered in their existing
// order and the FIRST qualifying event wins; later qualifying events are
// never considered. This mirrors the original contract calibration and can
// under-compensate when multiple qualifying events exist in one window --
// see the test suite, which pins the behavior deliberately.
//
// Hail-only policies are rejected with coverage_not_supported: no automated
// hail payout rule is defined, and guessing one would move real money. Under
// multi_peril cover, hail events are simply never payout-qualifying.
func EvaluatePayout(policy *types.Policy, analysis *types.WeatherAnalysis) (*types.PayoutRecommendation, error) {
	if policy.CoverageType == types.CoverageHail {
		return nil, types.NewAppError(
			types.ErrCodeCoverageNotSupported,
			"hail coverage has no automated payout rule",
			nil,
		)
	}

	if policy.Deductible < 0 || policy.Deductible > 100 {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationPolicyThresholds,
			"policy deductible must be within [0,100]",
			nil,
			map[string]any{"deductible": policy.Deductible},
		)
	}

	var relevant []types.TriggerEvent
	for _, event := range analysis.TriggerEvents {
		if policy.CoverageType.Covers(event.EventType) {
			relevant = append(relevant, event)
		}
	}

	if len(relevant) == 0 {
		return nil, nil
	}

	for _, event := range relevant {
		var (
			shouldPayout     bool
			payoutPercentage float64
		)

		switch event.EventType {
		case types.PerilDrought:
			days := policy.Thresholds.Drought.Days
			if days <= 0 {
				return nil, invalidThreshold(policy, "drought.days", float64(days))
			}
			shouldPayout = event.Duration >= days
			payoutPercentage = cappedPercentage(float64(event.Duration), float64(days))

		case types.PerilFlood:
			threshold := policy.Thresholds.Flood.PrecipitationThreshold
			if threshold <= 0 {
				return nil, invalidThreshold(policy, "flood.precipitation_threshold", threshold)
			}
			shouldPayout = event.PeakValue >= threshold
			payoutPercentage = cappedPercentage(event.PeakValue, threshold)

		case types.PerilWind:
			threshold := policy.Thresholds.Wind.WindSpeedThreshold
			if threshold <= 0 {
				return nil, invalidThreshold(policy, "wind.wind_speed_threshold", threshold)
			}
			shouldPayout = event.PeakValue >= threshold
			payoutPercentage = cappedPercentage(event.PeakValue, threshold)

		case types.PerilHail:
			// No hail payout rule is defined; the event never qualifies.
			shouldPayout = false
		}

		if shouldPayout && payoutPercentage > policy.Deductible {
			netPercentage := payoutPercentage - policy.Deductible
			return &types.PayoutRecommendation{
				PolicyID:         policy.ID,
				EventType:        event.EventType,
				Severity:         event.Severity,
				PayoutAmount:     policy.CoverageAmount * netPercentage / 100,
				PayoutPercentage: netPercentage,
				Justification: fmt.Sprintf(
					"%s event exceeded policy thresholds: %d days duration, peak value %g",
					event.EventType, event.Duration, event.PeakValue,
				),
				EvidenceData: []types.TriggerEvent{event},
			}, nil
		}
	}

	return nil, nil
}

// cappedPercentage returns 100*value/threshold capped at 100.
func cappedPercentage(value, threshold float64) float64 {
	pct := value / threshold * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func invalidThreshold(policy *types.Policy, field string, value float64) *types.AppError {
	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationPolicyThresholds,
		fmt.Sprintf("policy threshold %s must be positive", field),
		nil,
		map[string]any{
			"policy_id": policy.ID,
			"field":     field,
			"value":     value,
		},
	)
}
