package types

import (
	"context"
	"time"
)

// ObservationSource supplies weather readings for a station. It is the
// analysis core's only external data dependency. Both calls are fallible
// (network/HTTP) and must surface a distinguishable error rather than
// silently returning zeroed data.
type ObservationSource interface {
	// GetLatestObservation returns the single most recent reading for the
	// station. Powers the instantaneous risk snapshot.
	GetLatestObservation(ctx context.Context, stationID string) (*Observation, error)

	// GetObservationsForDate returns the day-granularity historical reading
	// for the given calendar day.
	GetObservationsForDate(ctx context.Context, stationID string, date time.Time) (*Observation, error)
}

// StationDirectory lists the stations known to the weather provider.
type StationDirectory interface {
	GetStations(ctx context.Context) ([]Station, error)
}

// PolicyRepository provides data access for insurance policies.
type PolicyRepository interface {
	Create(ctx context.Context, policy *Policy) error
	GetByID(ctx context.Context, id string) (*Policy, error)
	List(ctx context.Context, farmerID string) ([]*Policy, error)
	ListActiveByStation(ctx context.Context, stationID string) ([]*Policy, error)
	UpdateStatus(ctx context.Context, id string, status PolicyStatus) error
}

// ClaimRepository provides data access for insurance claims.
type ClaimRepository interface {
	Create(ctx context.Context, claim *Claim) error
	GetByID(ctx context.Context, id string) (*Claim, error)
	List(ctx context.Context, policyID string, status ClaimStatus) ([]*Claim, error)
	UpdateStatus(ctx context.Context, id string, status ClaimStatus, transactionRef, reason string) error
}

// PaymentRepository provides data access for premium payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *PremiumPayment) error
	List(ctx context.Context, policyID string) ([]*PremiumPayment, error)
	UpdateStatus(ctx context.Context, id string, status PaymentStatus) error
}

// AlertPublisher broadcasts weather alerts to downstream consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []Alert) error
}

// PayoutCheckTrigger enqueues payout-check work for the claim worker.
type PayoutCheckTrigger interface {
	TriggerPayoutCheck(ctx context.Context, msg PayoutCheckMessage) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }
