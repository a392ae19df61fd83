package types

// PerilType identifies a category of insurable weather risk.
type PerilType string

const (
	PerilDrought PerilType = "drought"
	PerilFlood   PerilType = "flood"
	PerilWind    PerilType = "wind"
	PerilHail    PerilType = "hail"
)

// AllPerils lists every peril the platform can detect.
var AllPerils = []PerilType{PerilDrought, PerilFlood, PerilWind, PerilHail}

// IsValid reports whether p is a recognized peril.
func (p PerilType) IsValid() bool {
	switch p {
	case PerilDrought, PerilFlood, PerilWind, PerilHail:
		return true
	}
	return false
}

// CoverageType identifies the peril a policy insures against.
// "multi_peril" covers every peril the platform detects.
type CoverageType string

const (
	CoverageDrought    CoverageType = "drought"
	CoverageFlood      CoverageType = "flood"
	CoverageWind       CoverageType = "wind"
	CoverageHail       CoverageType = "hail"
	CoverageMultiPeril CoverageType = "multi_peril"
)

// IsValid reports whether c is a recognized coverage type.
func (c CoverageType) IsValid() bool {
	switch c {
	case CoverageDrought, CoverageFlood, CoverageWind, CoverageHail, CoverageMultiPeril:
		return true
	}
	return false
}

// Covers reports whether a policy with this coverage type insures the given peril.
func (c CoverageType) Covers(p PerilType) bool {
	return c == CoverageMultiPeril || string(c) == string(p)
}

// Severity is the four-level ordinal classification of a trigger event's intensity.
type Severity string

const (
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityExtreme Severity = "extreme"
)

// Rank returns the ordinal rank of the severity (low=1 .. extreme=4).
// Unknown severities rank 0 so they sort below every valid level.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityExtreme:
		return 4
	default:
		return 0
	}
}

// PolicyStatus represents the lifecycle state of an insurance policy.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusExpired   PolicyStatus = "expired"
	PolicyStatusCancelled PolicyStatus = "cancelled"
	PolicyStatusClaimed   PolicyStatus = "claimed"
)

// ClaimStatus represents the lifecycle state of an insurance claim.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusPaid     ClaimStatus = "paid"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// PaymentStatus represents the state of a premium payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Snapshot risk bands used by the automation surfaces. A score at or above
// AlertRiskThreshold produces an alert; at or above PayoutRiskThreshold the
// automation view marks the peril as payout-eligible. These are presentation
// signals only; the authoritative payout decision is the policy evaluator.
const (
	AlertRiskThreshold  = 60
	PayoutRiskThreshold = 80
)
