package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perilwatch/internal/core"
	"perilwatch/internal/external"
	"perilwatch/internal/types"
)

// maxWebhookBodySize caps Stripe webhook payloads at 64 KB.
const maxWebhookBodySize = 64 << 10

// PaymentStatusStore updates recorded payment outcomes from webhook events.
type PaymentStatusStore interface {
	List(ctx context.Context, policyID string) ([]*types.PremiumPayment, error)
	UpdateStatus(ctx context.Context, id string, status types.PaymentStatus) error
}

// stripeEvent is the subset of the Stripe event envelope the handler needs.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhookHandler reconciles asynchronous payment outcomes delivered by
// Stripe. Requests authenticate by signature, not by API key; the route is
// exempt from the automation key middleware.
type StripeWebhookHandler struct {
	payments PaymentStatusStore
	verifier external.WebhookVerifier
	secret   types.SecretString
	logger   *slog.Logger
}

// NewStripeWebhookHandler creates a StripeWebhookHandler with the provided
// dependencies.
func NewStripeWebhookHandler(payments PaymentStatusStore, verifier external.WebhookVerifier, secret types.SecretString, logger *slog.Logger) *StripeWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeWebhookHandler{
		payments: payments,
		verifier: verifier,
		secret:   secret,
		logger:   logger,
	}
}

// RegisterRoutes mounts the webhook route on the provided chi.Router.
func (h *StripeWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/stripe", h.Handle)
}

// Handle processes POST /v1/webhooks/stripe.
//
// Unrecognized event types and events that match no recorded payment are
// acknowledged with 200 so Stripe does not retry them; only verification
// failures and storage errors produce non-2xx responses.
func (h *StripeWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		core.Error(w, r, types.NewAppError(
			errCodeWebhookPayload,
			"failed to read webhook payload",
			err,
		))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.verifier.Verify(payload, signature, h.secret.Unmask()); err != nil {
		h.logger.WarnContext(r.Context(), "stripe webhook signature rejected", "error", err)
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthKeyInvalid,
			"webhook signature verification failed",
			nil,
		))
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		core.Error(w, r, types.NewAppError(
			errCodeWebhookPayload,
			"malformed webhook payload",
			err,
		))
		return
	}

	var status types.PaymentStatus
	switch event.Type {
	case external.EventStripePaymentSucceeded:
		status = types.PaymentStatusConfirmed
	case external.EventStripePaymentFailed:
		status = types.PaymentStatusFailed
	default:
		h.logger.InfoContext(r.Context(), "ignoring unhandled stripe event", "type", event.Type)
		core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]bool{"received": true}})
		return
	}

	if err := h.reconcile(r.Context(), event, status); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]bool{"received": true}})
}

// reconcile finds the recorded payment matching the event's payment intent
// and moves it to the given status. Payment intents carry the policy ID in
// metadata; the intent ID is the recorded transaction reference.
func (h *StripeWebhookHandler) reconcile(ctx context.Context, event stripeEvent, status types.PaymentStatus) error {
	policyID := event.Data.Object.Metadata["policy_id"]
	intentID := event.Data.Object.ID
	if policyID == "" || intentID == "" {
		h.logger.WarnContext(ctx, "stripe event missing reconciliation keys",
			"event_id", event.ID,
			"type", event.Type,
		)
		return nil
	}

	payments, err := h.payments.List(ctx, policyID)
	if err != nil {
		return err
	}

	for _, p := range payments {
		if p.TransactionRef != intentID {
			continue
		}
		if p.Status == status {
			return nil
		}
		if err := h.payments.UpdateStatus(ctx, p.ID, status); err != nil {
			return err
		}
		h.logger.InfoContext(ctx, "payment status reconciled from stripe event",
			"payment_id", p.ID,
			"policy_id", policyID,
			"status", status,
		)
		return nil
	}

	h.logger.WarnContext(ctx, "stripe event matched no recorded payment",
		"event_id", event.ID,
		"policy_id", policyID,
		"payment_intent", intentID,
	)
	return nil
}

// errCodeWebhookPayload covers unreadable or malformed webhook bodies.
const errCodeWebhookPayload types.ErrorCode = "validation_invalid_webhook_payload"
