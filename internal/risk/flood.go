package risk

import "perilwatch/internal/types"

// Flood detection parameters. Rainfall is accumulated over a rolling
// three-day window; either a high window total or an extreme single-day
// rate triggers an event.
const (
	floodWindowDays      = 3
	floodWindowRainfall  = 50.0
	floodDailyRateLimit  = 20.0
	floodExtremeRate     = 50.0
	floodHighRate        = 30.0
	floodHighWindowTotal = 100.0

	floodAffectedArea = 5000.0
)

// ScoreFlood slides a three-day window across the series and emits an event
// for every window whose cumulative rainfall or peak daily rate crosses the
// trigger levels. Because the window advances one day at a time, adjacent
// windows overlap and produce near-duplicate detections; the result carries
// the deduplicated events, and the risk score is computed from those.
func ScoreFlood(series types.ObservationSeries) Result {
	var events []types.TriggerEvent

	for i := floodWindowDays - 1; i < len(series); i++ {
		var windowRainfall, maxDailyRate float64
		for j := i - floodWindowDays + 1; j <= i; j++ {
			obs := series[j].Observation
			windowRainfall += obs.DailyRainfall()
			if obs.PrecipitationRate > maxDailyRate {
				maxDailyRate = obs.PrecipitationRate
			}
		}

		if windowRainfall <= floodWindowRainfall && maxDailyRate <= floodDailyRateLimit {
			continue
		}

		var severity types.Severity
		switch {
		case maxDailyRate > floodExtremeRate:
			severity = types.SeverityExtreme
		case maxDailyRate > floodHighRate:
			severity = types.SeverityHigh
		case windowRainfall > floodHighWindowTotal:
			severity = types.SeverityHigh
		default:
			severity = types.SeverityMedium
		}

		events = append(events, types.TriggerEvent{
			EventType:    types.PerilFlood,
			Severity:     severity,
			StartDate:    series[i-floodWindowDays+1].Date,
			EndDate:      series[i].Date,
			Duration:     floodWindowDays,
			PeakValue:    maxDailyRate,
			AverageValue: windowRainfall / floodWindowDays,
			AffectedArea: floodAffectedArea,
		})
	}

	unique := DeduplicateEvents(events)

	score := 0
	for _, e := range unique {
		score += severityPoints[e.Severity]
	}

	return Result{RiskScore: clampScore(score), Events: unique}
}
