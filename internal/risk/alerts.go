package risk

import "perilwatch/internal/types"

// Per-peril alert metadata: the observed value reported in the alert, the
// nominal threshold it is compared against in downstream displays, and the
// affected radius in meters.
const (
	alertFloodThreshold   = 10.0
	alertFloodRadius      = 5000.0
	alertWindThreshold    = 15.0
	alertWindRadius       = 8000.0
	alertDroughtThreshold = 35.0
	alertDroughtRadius    = 15000.0
)

// BuildStationAlerts converts a station's current risk snapshot into zero or
// more alerts. A peril alerts when its snapshot score reaches the alert band
// (60); severity escalates at 70 (high) and 80 (extreme).
//
// ShouldTriggerPayout marks high/extreme alerts for the automation consumers.
// It is a presentation-layer signal only; actual payouts always go through
// EvaluatePayout against a specific policy.
func BuildStationAlerts(station types.Station, sr types.StationRisk) []types.Alert {
	var alerts []types.Alert

	if sr.Risks.FloodRisk >= types.AlertRiskThreshold {
		alerts = append(alerts, newAlert(
			station, types.PerilFlood, sr.Risks.FloodRisk,
			sr.Observation.PrecipitationRate, alertFloodThreshold, alertFloodRadius,
		))
	}

	if sr.Risks.WindRisk >= types.AlertRiskThreshold {
		alerts = append(alerts, newAlert(
			station, types.PerilWind, sr.Risks.WindRisk,
			sr.Observation.MaxWind(), alertWindThreshold, alertWindRadius,
		))
	}

	if sr.Risks.DroughtRisk >= types.AlertRiskThreshold {
		alerts = append(alerts, newAlert(
			station, types.PerilDrought, sr.Risks.DroughtRisk,
			sr.Observation.Temperature, alertDroughtThreshold, alertDroughtRadius,
		))
	}

	return alerts
}

func newAlert(station types.Station, peril types.PerilType, score int, value, threshold, radius float64) types.Alert {
	severity := alertSeverity(score)
	return types.Alert{
		StationID:           station.ID,
		AlertType:           peril,
		Severity:            severity,
		Value:               value,
		Threshold:           threshold,
		Location:            station.Location,
		AffectedRadius:      radius,
		ShouldTriggerPayout: severity == types.SeverityHigh || severity == types.SeverityExtreme,
	}
}

// alertSeverity maps a snapshot risk score to an alert severity band.
func alertSeverity(score int) types.Severity {
	switch {
	case score >= types.PayoutRiskThreshold:
		return types.SeverityExtreme
	case score >= 70:
		return types.SeverityHigh
	default:
		return types.SeverityMedium
	}
}
