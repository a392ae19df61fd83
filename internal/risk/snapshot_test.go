package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perilwatch/internal/types"
)

func TestSnapshot_CalmConditions(t *testing.T) {
	snap := Snapshot(types.Observation{
		Humidity:          55,
		Temperature:       22,
		Pressure:          1015,
		PrecipitationRate: 1,
		WindSpeed:         5,
	})

	assert.Equal(t, 0, snap.FloodRisk)
	assert.Equal(t, 0, snap.WindRisk)
	assert.Equal(t, 0, snap.DroughtRisk)
}

func TestSnapshot_FloodBandsStack(t *testing.T) {
	// Heavy rain (40) + saturated air (20) + storm-level pressure (10).
	snap := Snapshot(types.Observation{
		PrecipitationRate: 25,
		Humidity:          95,
		Pressure:          995,
	})

	assert.Equal(t, 70, snap.FloodRisk)
}

func TestSnapshot_WindUsesGust(t *testing.T) {
	snap := Snapshot(types.Observation{
		WindSpeed: 8,
		WindGust:  27,
		Pressure:  1013,
		Humidity:  55,
	})

	assert.Equal(t, 40, snap.WindRisk)
}

func TestSnapshot_DroughtExtremeBonusStacks(t *testing.T) {
	// Humidity band (30) + temperature band (25) + zero rainfall (20) +
	// extreme-conditions bonus (25) = 100.
	snap := Snapshot(types.Observation{
		Humidity:          15,
		Temperature:       42,
		PrecipitationRate: 0,
		Pressure:          1013,
	})

	assert.Equal(t, 100, snap.DroughtRisk)
}

func TestSnapshot_ScoresClampedAt100(t *testing.T) {
	// Absurd input magnitudes must still produce scores within the scale.
	snap := Snapshot(types.Observation{
		PrecipitationRate: 10000,
		Humidity:          100,
		Pressure:          900,
		WindSpeed:         300,
		WindGust:          400,
	})

	assert.LessOrEqual(t, snap.FloodRisk, 100)
	assert.LessOrEqual(t, snap.WindRisk, 100)
	assert.LessOrEqual(t, snap.DroughtRisk, 100)
	assert.Equal(t, 70, snap.FloodRisk)
	assert.Equal(t, 60, snap.WindRisk)
}

func TestSnapshot_BandBoundariesAreExclusive(t *testing.T) {
	tests := []struct {
		name string
		obs  types.Observation
		want types.RiskSnapshot
	}{
		{
			name: "rate exactly 20 stays in the middle band",
			obs:  types.Observation{PrecipitationRate: 20, Humidity: 55, Pressure: 1013},
			want: types.RiskSnapshot{FloodRisk: 30, DroughtRisk: 0},
		},
		{
			name: "wind exactly 25 stays in the middle band",
			obs:  types.Observation{WindSpeed: 25, Humidity: 55, Pressure: 1013, PrecipitationRate: 1},
			want: types.RiskSnapshot{WindRisk: 30},
		},
		{
			name: "humidity exactly 40 earns no drought points",
			obs:  types.Observation{Humidity: 40, Temperature: 22, Pressure: 1013, PrecipitationRate: 1},
			want: types.RiskSnapshot{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snapshot(tt.obs))
		})
	}
}
