package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"perilwatch/internal/core"
	"perilwatch/internal/external"
	"perilwatch/internal/types"
)

// PaymentStore defines the data access contract for premium payments.
type PaymentStore interface {
	Create(ctx context.Context, payment *types.PremiumPayment) error
	List(ctx context.Context, policyID string) ([]*types.PremiumPayment, error)
}

// PayPremiumRequest is the request body for POST /v1/payments.
type PayPremiumRequest struct {
	PolicyID string `json:"policy_id" validate:"required"`
}

// PaymentHandler collects premium payments through the payment provider and
// records the outcome.
type PaymentHandler struct {
	payments  PaymentStore
	policies  PolicyStore
	provider  external.PaymentService
	validator *core.Validator
	logger    *slog.Logger
	clock     types.Clock
}

// NewPaymentHandler creates a PaymentHandler with the provided dependencies.
func NewPaymentHandler(
	payments PaymentStore,
	policies PolicyStore,
	provider external.PaymentService,
	v *core.Validator,
	logger *slog.Logger,
	clock types.Clock,
) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &PaymentHandler{
		payments:  payments,
		policies:  policies,
		provider:  provider,
		validator: v,
		logger:    logger,
		clock:     clock,
	}
}

// RegisterRoutes mounts payment routes on the provided chi.Router.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.Pay)
		r.Get("/", h.List)
	})
}

// Pay handles POST /v1/payments. It charges one monthly premium installment
// for the policy off-session. A declined charge is recorded as a failed
// payment and surfaces to the client as 402.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PayPremiumRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	policy, err := h.policies.GetByID(r.Context(), req.PolicyID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if !policy.IsActive() {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeConflictPolicyInactive,
			"premiums can only be collected on active policies",
			nil,
		))
		return
	}

	if _, err := h.provider.EnsureCustomer(r.Context(), policy.FarmerID, policy.FarmerEmail); err != nil {
		core.Error(w, r, err)
		return
	}

	payment := &types.PremiumPayment{
		ID:          "pay_" + uuid.New().String(),
		PolicyID:    policy.ID,
		Amount:      policy.PremiumAmount,
		PaymentDate: h.clock.Now(),
	}

	ref, err := h.provider.ChargePremium(r.Context(), policy.FarmerID, policy.ID, policy.PremiumAmount)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrCodePaymentDeclined {
			payment.Status = types.PaymentStatusFailed
			if storeErr := h.payments.Create(r.Context(), payment); storeErr != nil {
				h.logger.ErrorContext(r.Context(), "failed to record declined payment",
					"payment_id", payment.ID,
					"policy_id", policy.ID,
					"error", storeErr,
				)
			}
		}
		core.Error(w, r, err)
		return
	}

	payment.Status = types.PaymentStatusConfirmed
	payment.TransactionRef = ref
	if err := h.payments.Create(r.Context(), payment); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "premium collected",
		"payment_id", payment.ID,
		"policy_id", policy.ID,
		"amount", payment.Amount,
		"transaction_ref", ref,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: payment})
}

// List handles GET /v1/payments?policy_id=.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	policyID := r.URL.Query().Get("policy_id")
	if policyID == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"policy_id query parameter is required",
			nil,
		))
		return
	}

	payments, err := h.payments.List(r.Context(), policyID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: payments})
}
