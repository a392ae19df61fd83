package risk

import "perilwatch/internal/types"

// Drought detection parameters. A day qualifies as dry when all three
// conditions hold; a run of at least minDroughtRunDays dry days becomes a
// trigger event.
const (
	droughtHumidityMax    = 40.0
	droughtTemperatureMin = 30.0
	droughtPrecipMax      = 1.0
	minDroughtRunDays     = 7

	droughtAffectedArea = 15000.0
)

// ScoreDrought detects sustained dry spells in the series and scores the
// aggregate drought risk.
//
// A dry-day run of minDroughtRunDays or more produces one event whose
// severity is classified from the run length against [7, 14, 21] days.
// PeakValue carries the highest temperature seen during the run. Note that
// AverageValue carries the *minimum* humidity of the run, not an average;
// downstream consumers and the payout evaluator depend on this exact
// semantic, so it must not be "fixed" to a mean.
func ScoreDrought(series types.ObservationSeries) Result {
	if len(series) == 0 {
		return Result{}
	}

	var events []types.TriggerEvent
	var (
		runLength       int
		runStart        = series[0].Date
		peakTemperature float64
		minHumidity     = 100.0
		totalRainfall   float64
	)

	endRun := func(end types.DailyObservation) {
		if runLength >= minDroughtRunDays {
			events = append(events, types.TriggerEvent{
				EventType:    types.PerilDrought,
				Severity:     severityForValue(float64(runLength), 7, 14, 21),
				StartDate:    runStart,
				EndDate:      end.Date,
				Duration:     runLength,
				PeakValue:    peakTemperature,
				AverageValue: minHumidity,
				AffectedArea: droughtAffectedArea,
			})
		}
		runLength = 0
		peakTemperature = 0
		minHumidity = 100
	}

	for _, day := range series {
		obs := day.Observation
		totalRainfall += obs.PrecipitationRate

		isDry := obs.Humidity < droughtHumidityMax &&
			obs.Temperature > droughtTemperatureMin &&
			obs.PrecipitationRate < droughtPrecipMax

		if isDry {
			if runLength == 0 {
				runStart = day.Date
			}
			runLength++
			if obs.Temperature > peakTemperature {
				peakTemperature = obs.Temperature
			}
			if obs.Humidity < minHumidity {
				minHumidity = obs.Humidity
			}
			continue
		}

		endRun(day)
	}

	// A run still in progress at the end of the series counts too.
	endRun(series[len(series)-1])

	longestRun := 0
	for _, e := range events {
		if e.Duration > longestRun {
			longestRun = e.Duration
		}
	}

	score := longestRun * 3
	if totalRainfall/float64(len(series)) < 1 {
		score += 30
	}
	score += len(events) * 10

	return Result{RiskScore: clampScore(score), Events: events}
}
