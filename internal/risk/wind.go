package risk

import "perilwatch/internal/types"

// Wind detection parameters. Each day is checked independently against the
// larger of sustained speed and gust; there is no windowing.
const (
	windEventThreshold = 20.0

	windAffectedArea = 10000.0
)

// ScoreWind emits a one-day event for every day whose peak wind (max of
// speed and gust) exceeds the event threshold.
//
// The severity bands here are deliberately an independent if/else cascade
// rather than the shared three-threshold classifier: the bands are strict
// greater-than checks and the lowest band is "low", which the shared helper
// cannot express.
//
// The score keeps two accumulators (qualifying-day count and event count)
// even though this algorithm produces exactly one event per qualifying day.
// The payout ledger was calibrated against 5x days + 3x events, so the two
// counts are tracked separately rather than folded into 8x.
func ScoreWind(series types.ObservationSeries) Result {
	var events []types.TriggerEvent
	highWindDays := 0

	for _, day := range series {
		maxWind := day.Observation.MaxWind()
		if maxWind <= windEventThreshold {
			continue
		}

		highWindDays++

		var severity types.Severity
		if maxWind > 40 {
			severity = types.SeverityExtreme
		} else if maxWind > 30 {
			severity = types.SeverityHigh
		} else if maxWind > 25 {
			severity = types.SeverityMedium
		} else {
			severity = types.SeverityLow
		}

		events = append(events, types.TriggerEvent{
			EventType:    types.PerilWind,
			Severity:     severity,
			StartDate:    day.Date,
			EndDate:      day.Date,
			Duration:     1,
			PeakValue:    maxWind,
			AverageValue: maxWind,
			AffectedArea: windAffectedArea,
		})
	}

	return Result{
		RiskScore: clampScore(highWindDays*5 + len(events)*3),
		Events:    events,
	}
}
