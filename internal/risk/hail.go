package risk

import "perilwatch/internal/types"

// Hail proxy parameters. No specialized hail sensor data exists upstream, so
// hail is inferred from a sharp day-over-day temperature drop coinciding with
// precipitation. All hail events carry a fixed medium severity.
const (
	hailTempDropMin  = 10.0
	hailPrecipMin    = 5.0
	hailEventPoints  = 15
	hailAffectedArea = 3000.0
)

// ScoreHail scans consecutive day pairs and emits a one-day medium-severity
// event whenever the temperature fell by more than hailTempDropMin degrees
// while the day's precipitation rate exceeded hailPrecipMin.
func ScoreHail(series types.ObservationSeries) Result {
	var events []types.TriggerEvent

	for i := 1; i < len(series); i++ {
		tempDrop := series[i-1].Observation.Temperature - series[i].Observation.Temperature
		precipitation := series[i].Observation.PrecipitationRate

		if tempDrop > hailTempDropMin && precipitation > hailPrecipMin {
			events = append(events, types.TriggerEvent{
				EventType:    types.PerilHail,
				Severity:     types.SeverityMedium,
				StartDate:    series[i].Date,
				EndDate:      series[i].Date,
				Duration:     1,
				PeakValue:    precipitation,
				AverageValue: precipitation,
				AffectedArea: hailAffectedArea,
			})
		}
	}

	return Result{
		RiskScore: clampScore(len(events) * hailEventPoints),
		Events:    events,
	}
}
