package risk

import "perilwatch/internal/types"

// Snapshot computes the instantaneous per-peril risk for a single
// observation, with no historical context. Each score is a sum of banded
// contributions clamped to [0,100], so extreme input magnitudes can never
// overflow the scale.
func Snapshot(obs types.Observation) types.RiskSnapshot {
	return types.RiskSnapshot{
		FloodRisk:   snapshotFloodRisk(obs),
		WindRisk:    snapshotWindRisk(obs),
		DroughtRisk: snapshotDroughtRisk(obs),
	}
}

func snapshotFloodRisk(obs types.Observation) int {
	score := 0

	// Heavy rainfall right now.
	if obs.PrecipitationRate > 20 {
		score += 40
	} else if obs.PrecipitationRate > 10 {
		score += 30
	} else if obs.PrecipitationRate > 5 {
		score += 15
	}

	// Saturated air.
	if obs.Humidity > 90 {
		score += 20
	} else if obs.Humidity > 80 {
		score += 10
	}

	// Low pressure indicates storm systems.
	if obs.Pressure < 1000 {
		score += 10
	} else if obs.Pressure < 1005 {
		score += 5
	}

	return clampScore(score)
}

func snapshotWindRisk(obs types.Observation) int {
	score := 0
	maxWind := obs.MaxWind()

	if maxWind > 25 {
		score += 40
	} else if maxWind > 20 {
		score += 30
	} else if maxWind > 15 {
		score += 20
	} else if maxWind > 10 {
		score += 10
	}

	// Low pressure indicates storm systems.
	if obs.Pressure < 990 {
		score += 20
	} else if obs.Pressure < 1000 {
		score += 10
	}

	return clampScore(score)
}

func snapshotDroughtRisk(obs types.Observation) int {
	score := 0

	if obs.Humidity < 20 {
		score += 30
	} else if obs.Humidity < 30 {
		score += 20
	} else if obs.Humidity < 40 {
		score += 10
	}

	if obs.Temperature > 40 {
		score += 25
	} else if obs.Temperature > 35 {
		score += 20
	} else if obs.Temperature > 30 {
		score += 10
	}

	if obs.PrecipitationRate == 0 {
		score += 20
	}

	// Extreme-conditions bonus, stacking with the bands above.
	if obs.Humidity < 20 && obs.Temperature > 40 {
		score += 25
	}

	return clampScore(score)
}
