package types

import "time"

// PayoutCheckMessage is the SQS payload dispatched by the risk poller when a
// station's snapshot risk crosses the payout band. The claim worker consumes
// it, runs the historical analysis, and evaluates the named policy.
type PayoutCheckMessage struct {
	TraceID      string    `json:"trace_id"`
	PolicyID     string    `json:"policy_id"`
	StationID    string    `json:"station_id"`
	Peril        PerilType `json:"peril"`
	DetectedAt   time.Time `json:"detected_at"`
	LookbackDays int       `json:"lookback_days"`
}
