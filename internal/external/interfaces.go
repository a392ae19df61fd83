package external

import (
	"context"
)

// PaymentService abstracts interactions with the payment provider (Stripe).
// Implementations translate between domain types and vendor-specific APIs.
type PaymentService interface {
	// EnsureCustomer retrieves or creates a Stripe customer for the given
	// farmer. Returns the Stripe customer ID. Uses search-first logic to
	// prevent duplicates.
	EnsureCustomer(ctx context.Context, farmerID string, email string) (string, error)

	// ChargePremium collects one premium installment for the policy from the
	// farmer's saved payment method. Returns the provider transaction
	// reference on success. A declined card surfaces as payment_declined.
	ChargePremium(ctx context.Context, farmerID, policyID string, amountUSD float64) (transactionRef string, err error)
}

// WebhookVerifier abstracts Stripe webhook signature checking.
type WebhookVerifier interface {
	// Verify validates a webhook payload against the provided signature header
	// and signing secret. Returns nil on success, an error on failure.
	Verify(payload []byte, header string, secret string) error
}

// Stripe event type constants prevent magic strings in webhook handlers.
const (
	EventStripePaymentSucceeded = "payment_intent.succeeded"
	EventStripePaymentFailed    = "payment_intent.payment_failed"
)
