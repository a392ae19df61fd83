package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

func TestScoreWind_GustOverridesSustainedSpeed(t *testing.T) {
	observations := []types.Observation{
		{WindSpeed: 22, WindGust: 45},
	}

	result := ScoreWind(buildSeries(observations))

	require.Len(t, result.Events, 1)
	event := result.Events[0]
	assert.Equal(t, types.PerilWind, event.EventType)
	assert.Equal(t, types.SeverityExtreme, event.Severity)
	assert.Equal(t, 45.0, event.PeakValue)
	assert.Equal(t, 1, event.Duration)
	assert.Equal(t, 10000.0, event.AffectedArea)

	// One qualifying day and one event: 1*5 + 1*3.
	assert.Equal(t, 8, result.RiskScore)
}

func TestScoreWind_SeverityBands(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		severity types.Severity
	}{
		{"above 40 is extreme", 41, types.SeverityExtreme},
		{"above 30 is high", 35, types.SeverityHigh},
		{"above 25 is medium", 26, types.SeverityMedium},
		{"between 20 and 25 is low", 22, types.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreWind(buildSeries([]types.Observation{{WindSpeed: tt.speed}}))

			require.Len(t, result.Events, 1)
			assert.Equal(t, tt.severity, result.Events[0].Severity)
		})
	}
}

func TestScoreWind_ThresholdIsExclusive(t *testing.T) {
	result := ScoreWind(buildSeries([]types.Observation{{WindSpeed: 20, WindGust: 20}}))

	assert.Empty(t, result.Events)
	assert.Equal(t, 0, result.RiskScore)
}

func TestScoreWind_EveryQualifyingDayIsAnEvent(t *testing.T) {
	observations := []types.Observation{
		{WindSpeed: 28},
		{WindSpeed: 5},
		{WindSpeed: 33},
		{WindSpeed: 28},
	}

	result := ScoreWind(buildSeries(observations))

	require.Len(t, result.Events, 3)
	// 3 days * 5 + 3 events * 3.
	assert.Equal(t, 24, result.RiskScore)
	assert.Equal(t, day(0), result.Events[0].StartDate)
	assert.Equal(t, day(2), result.Events[1].StartDate)
}

func TestScoreWind_ScoreClampedAt100(t *testing.T) {
	observations := make([]types.Observation, 15)
	for i := range observations {
		observations[i] = types.Observation{WindSpeed: 50}
	}

	result := ScoreWind(buildSeries(observations))

	assert.Equal(t, 100, result.RiskScore)
	assert.Len(t, result.Events, 15)
}
