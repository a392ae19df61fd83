package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

func TestScoreHail_TemperatureDropWithPrecipitation(t *testing.T) {
	observations := []types.Observation{
		{Temperature: 30},
		{Temperature: 18, PrecipitationRate: 8},
	}

	result := ScoreHail(buildSeries(observations))

	require.Len(t, result.Events, 1)
	event := result.Events[0]
	assert.Equal(t, types.PerilHail, event.EventType)
	assert.Equal(t, types.SeverityMedium, event.Severity)
	assert.Equal(t, day(1), event.StartDate)
	assert.Equal(t, day(1), event.EndDate)
	assert.Equal(t, 1, event.Duration)
	assert.Equal(t, 8.0, event.PeakValue)
	assert.Equal(t, 3000.0, event.AffectedArea)
	assert.Equal(t, 15, result.RiskScore)
}

func TestScoreHail_RequiresBothConditions(t *testing.T) {
	tests := []struct {
		name string
		prev float64
		curr types.Observation
	}{
		{"drop without precipitation", 30, types.Observation{Temperature: 15, PrecipitationRate: 2}},
		{"precipitation without drop", 30, types.Observation{Temperature: 25, PrecipitationRate: 12}},
		{"drop of exactly ten degrees", 30, types.Observation{Temperature: 20, PrecipitationRate: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observations := []types.Observation{
				{Temperature: tt.prev},
				tt.curr,
			}

			result := ScoreHail(buildSeries(observations))

			assert.Empty(t, result.Events)
			assert.Equal(t, 0, result.RiskScore)
		})
	}
}

func TestScoreHail_MultipleDrops(t *testing.T) {
	observations := []types.Observation{
		{Temperature: 32},
		{Temperature: 20, PrecipitationRate: 6},
		{Temperature: 31},
		{Temperature: 19, PrecipitationRate: 7},
	}

	result := ScoreHail(buildSeries(observations))

	require.Len(t, result.Events, 2)
	assert.Equal(t, 30, result.RiskScore)
}

func TestScoreHail_SingleDaySeries(t *testing.T) {
	result := ScoreHail(buildSeries([]types.Observation{{Temperature: 5, PrecipitationRate: 50}}))

	assert.Empty(t, result.Events)
	assert.Equal(t, 0, result.RiskScore)
}
