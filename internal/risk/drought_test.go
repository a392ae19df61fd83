package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

// seriesBase is the first calendar day of every synthetic test series.
var seriesBase = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// day returns the n-th calendar day of a synthetic series.
func day(n int) time.Time {
	return seriesBase.AddDate(0, 0, n)
}

// buildSeries converts a slice of observations into a series with one
// observation per consecutive day.
func buildSeries(observations []types.Observation) types.ObservationSeries {
	series := make(types.ObservationSeries, len(observations))
	for i, obs := range observations {
		series[i] = types.DailyObservation{Date: day(i), Observation: obs}
	}
	return series
}

// dryDay is a drought-qualifying observation: low humidity, high
// temperature, no rain.
func dryDay() types.Observation {
	return types.Observation{Humidity: 10, Temperature: 35, PrecipitationRate: 0}
}

// wetDay is an observation that breaks a dry run and avoids the
// low-rainfall penalty when repeated.
func wetDay() types.Observation {
	return types.Observation{Humidity: 80, Temperature: 20, PrecipitationRate: 5}
}

func TestScoreDrought_NoQualifyingDays(t *testing.T) {
	observations := make([]types.Observation, 10)
	for i := range observations {
		observations[i] = wetDay()
	}

	result := ScoreDrought(buildSeries(observations))

	assert.Equal(t, 0, result.RiskScore)
	assert.Empty(t, result.Events)
}

func TestScoreDrought_TenDayRun(t *testing.T) {
	observations := make([]types.Observation, 10)
	for i := range observations {
		observations[i] = dryDay()
	}

	result := ScoreDrought(buildSeries(observations))

	require.Len(t, result.Events, 1)
	event := result.Events[0]
	assert.Equal(t, types.PerilDrought, event.EventType)
	assert.Equal(t, 10, event.Duration)
	assert.Equal(t, types.SeverityMedium, event.Severity) // 10 >= 7 and < 14
	assert.Equal(t, 35.0, event.PeakValue)
	// AverageValue carries the run's minimum humidity, not a mean.
	assert.Equal(t, 10.0, event.AverageValue)
	assert.Equal(t, 15000.0, event.AffectedArea)
	assert.Equal(t, day(0), event.StartDate)
	assert.Equal(t, day(9), event.EndDate)

	// 10-day run: 10*3 + 30 (no rainfall) + 1 event * 10 = 70.
	assert.Equal(t, 70, result.RiskScore)
}

func TestScoreDrought_RunBrokenMidSeries(t *testing.T) {
	var observations []types.Observation
	for i := 0; i < 8; i++ {
		observations = append(observations, dryDay())
	}
	observations = append(observations, wetDay())
	for i := 0; i < 5; i++ {
		// A second run too short to qualify.
		observations = append(observations, dryDay())
	}

	result := ScoreDrought(buildSeries(observations))

	require.Len(t, result.Events, 1)
	assert.Equal(t, 8, result.Events[0].Duration)
	assert.Equal(t, day(0), result.Events[0].StartDate)
	// The breaking day closes the run and becomes its end date.
	assert.Equal(t, day(8), result.Events[0].EndDate)
}

func TestScoreDrought_SeverityBands(t *testing.T) {
	tests := []struct {
		name     string
		runDays  int
		severity types.Severity
	}{
		{"seven days is medium", 7, types.SeverityMedium},
		{"fourteen days is high", 14, types.SeverityHigh},
		{"twenty-one days is extreme", 21, types.SeverityExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observations := make([]types.Observation, tt.runDays)
			for i := range observations {
				observations[i] = dryDay()
			}

			result := ScoreDrought(buildSeries(observations))

			require.Len(t, result.Events, 1)
			assert.Equal(t, tt.severity, result.Events[0].Severity)
		})
	}
}

func TestScoreDrought_ShortRunEmitsNothing(t *testing.T) {
	observations := make([]types.Observation, 6)
	for i := range observations {
		observations[i] = dryDay()
	}

	result := ScoreDrought(buildSeries(observations))

	assert.Empty(t, result.Events)
	// No events means no run contribution, but the low-rainfall penalty
	// still applies independently.
	assert.Equal(t, 30, result.RiskScore)
}

func TestScoreDrought_RainfallPenaltyIndependentOfEvents(t *testing.T) {
	// Humid but rainless days: never drought-qualifying, yet the mean daily
	// rainfall across the series is below 1mm.
	observations := make([]types.Observation, 10)
	for i := range observations {
		observations[i] = types.Observation{Humidity: 80, Temperature: 20, PrecipitationRate: 0}
	}

	result := ScoreDrought(buildSeries(observations))

	assert.Empty(t, result.Events)
	assert.Equal(t, 30, result.RiskScore)
}

func TestScoreDrought_EmptySeries(t *testing.T) {
	result := ScoreDrought(nil)

	assert.Equal(t, 0, result.RiskScore)
	assert.Empty(t, result.Events)
}

func TestScoreDrought_ScoreClampedAt100(t *testing.T) {
	// A 30-day run: 30*3 + 30 + 10 = 130 before clamping.
	observations := make([]types.Observation, 30)
	for i := range observations {
		observations[i] = dryDay()
	}

	result := ScoreDrought(buildSeries(observations))

	assert.Equal(t, 100, result.RiskScore)
}
