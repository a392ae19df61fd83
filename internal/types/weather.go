package types

import "time"

// Observation is a single weather reading from a station. Values use the
// provider's native units: temperature in degrees C, humidity in percent,
// pressure in hPa, wind speeds in m/s, precipitation rate in mm/h and
// accumulated precipitation in mm. Observations are produced externally and
// never mutated by the analysis core.
type Observation struct {
	Timestamp                time.Time `json:"timestamp"`
	Temperature              float64   `json:"temperature"`
	Humidity                 float64   `json:"humidity"`
	Pressure                 float64   `json:"pressure"`
	WindSpeed                float64   `json:"wind_speed"`
	WindGust                 float64   `json:"wind_gust"`
	PrecipitationRate        float64   `json:"precipitation_rate"`
	PrecipitationAccumulated float64   `json:"precipitation_accumulated"`
}

// MaxWind returns the larger of sustained wind speed and gust.
func (o Observation) MaxWind() float64 {
	if o.WindGust > o.WindSpeed {
		return o.WindGust
	}
	return o.WindSpeed
}

// DailyRainfall returns the rainfall total to use for cumulative windows.
// The accumulated figure is preferred; a zero accumulation falls back to the
// instantaneous rate, matching the upstream provider's sparse reporting where
// many stations only populate one of the two fields.
func (o Observation) DailyRainfall() float64 {
	if o.PrecipitationAccumulated > 0 {
		return o.PrecipitationAccumulated
	}
	return o.PrecipitationRate
}

// DailyObservation pairs one calendar day with its observation.
type DailyObservation struct {
	Date        time.Time   `json:"date"`
	Observation Observation `json:"observation"`
}

// ObservationSeries is an ordered sequence of daily observations for one
// station, oldest to newest. Days the provider failed to return are simply
// absent; algorithms treat absent days as not contributing rather than zero.
type ObservationSeries []DailyObservation

// TriggerEvent is a detected, time-bounded occurrence of a peril. Events are
// immutable once created; the deduplicator may drop an event but never
// modifies one.
type TriggerEvent struct {
	EventType    PerilType `json:"event_type"`
	Severity     Severity  `json:"severity"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Duration     int       `json:"duration"` // days, >= 1
	PeakValue    float64   `json:"peak_value"`
	AverageValue float64   `json:"average_value"`
	AffectedArea float64   `json:"affected_area"` // radius in meters
}

// RiskScores holds the 0-100 aggregate score per peril.
type RiskScores struct {
	Drought int `json:"drought"`
	Flood   int `json:"flood"`
	Wind    int `json:"wind"`
	Hail    int `json:"hail"`
}

// WeatherAnalysis is the aggregate result of analyzing one station over one
// lookback period. PayoutRecommendation is populated only by the payout
// evaluator, never by the analyzer itself.
type WeatherAnalysis struct {
	StationID            string                `json:"station_id"`
	AnalysisDate         time.Time             `json:"analysis_date"`
	Period               string                `json:"period"` // e.g. "7d", "30d"
	RiskScores           RiskScores            `json:"risk_scores"`
	TriggerEvents        []TriggerEvent        `json:"trigger_events"`
	PayoutRecommendation *PayoutRecommendation `json:"payout_recommendation"`
}

// RiskSnapshot is the instantaneous per-peril risk derived from a single
// observation, with every score clamped to [0,100]. It powers live dashboards
// and automation alerts and shares the severity vocabulary of the historical
// analysis without consulting any history.
type RiskSnapshot struct {
	FloodRisk   int `json:"flood_risk"`
	WindRisk    int `json:"wind_risk"`
	DroughtRisk int `json:"drought_risk"`
}

// StationRisk is the automation-facing view of a station's current risk:
// the snapshot plus the raw observation it was derived from.
type StationRisk struct {
	StationID   string       `json:"station_id"`
	Timestamp   time.Time    `json:"timestamp"`
	Risks       RiskSnapshot `json:"risks"`
	Observation Observation  `json:"weather_data"`
}

// Alert is an automation notification emitted when a snapshot risk score
// crosses the alert band. ShouldTriggerPayout is a presentation-layer signal;
// the authoritative decision belongs to the payout evaluator.
type Alert struct {
	StationID           string    `json:"station_id"`
	AlertType           PerilType `json:"alert_type"`
	Severity            Severity  `json:"severity"`
	Value               float64   `json:"value"`
	Threshold           float64   `json:"threshold"`
	Location            Location  `json:"location"`
	AffectedRadius      float64   `json:"affected_radius"`
	ShouldTriggerPayout bool      `json:"should_trigger_payout"`
}

// Station identifies a weather station and its location.
type Station struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

// Location represents a geographic coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
