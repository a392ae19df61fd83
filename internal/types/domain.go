package types

import "time"

// DroughtThresholds are the contractual trigger parameters for drought cover.
type DroughtThresholds struct {
	Days                 int     `json:"days" db:"drought_days"`
	HumidityThreshold    float64 `json:"humidity_threshold" db:"drought_humidity_threshold"`
	TemperatureThreshold float64 `json:"temperature_threshold" db:"drought_temperature_threshold"`
}

// FloodThresholds are the contractual trigger parameters for flood cover.
type FloodThresholds struct {
	Days                   int     `json:"days" db:"flood_days"`
	PrecipitationThreshold float64 `json:"precipitation_threshold" db:"flood_precipitation_threshold"`
	CumulativeThreshold    float64 `json:"cumulative_threshold" db:"flood_cumulative_threshold"`
}

// WindThresholds are the contractual trigger parameters for wind cover.
type WindThresholds struct {
	Occurrences        int     `json:"occurrences" db:"wind_occurrences"`
	WindSpeedThreshold float64 `json:"wind_speed_threshold" db:"wind_speed_threshold"`
	GustThreshold      float64 `json:"gust_threshold" db:"wind_gust_threshold"`
}

// PolicyThresholds bundles the per-peril contractual thresholds of a policy.
type PolicyThresholds struct {
	Drought DroughtThresholds `json:"drought"`
	Flood   FloodThresholds   `json:"flood"`
	Wind    WindThresholds    `json:"wind"`
}

// Policy is a parametric weather insurance contract bound to one station.
// Deductible is expressed as a payout-percentage floor (0-100): payouts are
// net of it, and a gross payout percentage at or below it pays nothing.
type Policy struct {
	ID             string           `json:"policy_id" db:"id"`
	FarmerID       string           `json:"farmer_id" db:"farmer_id"`
	FarmerName     string           `json:"farmer_name" db:"farmer_name"`
	FarmerEmail    string           `json:"farmer_email" db:"farmer_email"`
	StationID      string           `json:"station_id" db:"station_id"`
	StationName    string           `json:"station_name" db:"station_name"`
	Location       Location         `json:"location" db:"-"`
	FarmSize       float64          `json:"farm_size" db:"farm_size"` // hectares
	CropType       string           `json:"crop_type" db:"crop_type"`
	CoverageType   CoverageType     `json:"coverage_type" db:"coverage_type"`
	CoverageAmount float64          `json:"coverage_amount" db:"coverage_amount"` // USD
	PremiumAmount  float64          `json:"premium_amount" db:"premium_amount"`   // monthly, USD
	Deductible     float64          `json:"deductible" db:"deductible"`           // percent, 0-100
	Thresholds     PolicyThresholds `json:"thresholds" db:"-"`
	StartDate      time.Time        `json:"start_date" db:"start_date"`
	EndDate        time.Time        `json:"end_date" db:"end_date"`
	Status         PolicyStatus     `json:"status" db:"status"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// IsActive reports whether the policy can be evaluated for payouts.
func (p *Policy) IsActive() bool {
	return p.Status == PolicyStatusActive
}

// PayoutRecommendation is the terminal artifact of a payout evaluation.
// PayoutPercentage is net of the deductible. EvidenceData carries the trigger
// event(s) that justified the payout. Never mutated after creation.
type PayoutRecommendation struct {
	PolicyID         string         `json:"policy_id"`
	EventType        PerilType      `json:"event_type"`
	Severity         Severity       `json:"severity"`
	PayoutAmount     float64        `json:"payout_amount"`
	PayoutPercentage float64        `json:"payout_percentage"`
	Justification    string         `json:"justification"`
	EvidenceData     []TriggerEvent `json:"evidence_data"`
}

// Claim records a payout request against a policy. Evidence is the serialized
// WeatherAnalysis (or submitted weather data) backing the claim.
type Claim struct {
	ID              string      `json:"id" db:"id"`
	PolicyID        string      `json:"policy_id" db:"policy_id"`
	AlertType       PerilType   `json:"alert_type" db:"alert_type"`
	ClaimAmount     float64     `json:"claim_amount" db:"claim_amount"`
	ClaimDate       time.Time   `json:"claim_date" db:"claim_date"`
	Status          ClaimStatus `json:"status" db:"status"`
	Evidence        []byte      `json:"-" db:"evidence"` // zstd-compressed JSON
	TransactionRef  string      `json:"transaction_ref,omitempty" db:"transaction_ref"`
	RejectionReason string      `json:"rejection_reason,omitempty" db:"rejection_reason"`
}

// PremiumPayment records one premium payment against a policy.
type PremiumPayment struct {
	ID             string        `json:"id" db:"id"`
	PolicyID       string        `json:"policy_id" db:"policy_id"`
	Amount         float64       `json:"amount" db:"amount"`
	PaymentDate    time.Time     `json:"payment_date" db:"payment_date"`
	TransactionRef string        `json:"transaction_ref" db:"transaction_ref"`
	Status         PaymentStatus `json:"status" db:"status"`
}
