package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"perilwatch/internal/core"
	"perilwatch/internal/db"
	"perilwatch/internal/types"
)

// ClaimStore defines the data access contract for claim operations.
type ClaimStore interface {
	Create(ctx context.Context, claim *types.Claim) error
	GetByID(ctx context.Context, id string) (*types.Claim, error)
	List(ctx context.Context, policyID string, status types.ClaimStatus) ([]*types.Claim, error)
}

// SubmitClaimRequest is the request body for POST /v1/claims. The optional
// analysis becomes the claim's evidence.
type SubmitClaimRequest struct {
	PolicyID    string                 `json:"policy_id" validate:"required"`
	AlertType   string                 `json:"alert_type" validate:"required,peril"`
	ClaimAmount float64                `json:"claim_amount" validate:"required,gt=0"`
	Analysis    *types.WeatherAnalysis `json:"analysis,omitempty"`
}

// ClaimDetail is the claim plus its decoded evidence analysis.
type ClaimDetail struct {
	*types.Claim
	Evidence *types.WeatherAnalysis `json:"evidence,omitempty"`
}

// ClaimHandler manages claim submission and retrieval.
type ClaimHandler struct {
	claims    ClaimStore
	policies  PolicyStore
	validator *core.Validator
	logger    *slog.Logger
	clock     types.Clock
}

// NewClaimHandler creates a ClaimHandler with the provided dependencies.
func NewClaimHandler(claims ClaimStore, policies PolicyStore, v *core.Validator, logger *slog.Logger, clock types.Clock) *ClaimHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &ClaimHandler{
		claims:    claims,
		policies:  policies,
		validator: v,
		logger:    logger,
		clock:     clock,
	}
}

// RegisterRoutes mounts claim routes on the provided chi.Router.
func (h *ClaimHandler) RegisterRoutes(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.Post("/", h.Submit)
		r.Get("/", h.List)
		r.Get("/{claimID}", h.Get)
	})
}

// Submit handles POST /v1/claims. The policy must be active and its coverage
// must include the claimed peril; claims start in pending status and are
// resolved by the claim worker or an operator.
func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitClaimRequest
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
			"claims can only be filed against active policies",
			nil,
		))
		return
	}

	peril := types.PerilType(req.AlertType)
	if !policy.CoverageType.Covers(peril) {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeCoverageNotSupported,
			"policy coverage does not include the claimed peril",
			nil,
			map[string]any{
				"coverage_type": policy.CoverageType,
				"alert_type":    peril,
			},
		))
		return
	}

	var evidence []byte
	if req.Analysis != nil {
		evidence, err = db.EncodeEvidence(req.Analysis)
		if err != nil {
			core.Error(w, r, err)
			return
		}
	}

	claim := &types.Claim{
		ID:          "clm_" + uuid.New().String(),
		PolicyID:    policy.ID,
		AlertType:   peril,
		ClaimAmount: req.ClaimAmount,
		ClaimDate:   h.clock.Now(),
		Status:      types.ClaimStatusPending,
		Evidence:    evidence,
	}

	if err := h.claims.Create(r.Context(), claim); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "claim submitted",
		"claim_id", claim.ID,
		"policy_id", claim.PolicyID,
		"alert_type", claim.AlertType,
		"claim_amount", claim.ClaimAmount,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: claim})
}

// List handles GET /v1/claims with optional policy_id and status filters.
func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	status := types.ClaimStatus(r.URL.Query().Get("status"))
	switch status {
	case "", types.ClaimStatusPending, types.ClaimStatusApproved, types.ClaimStatusPaid, types.ClaimStatusRejected:
	default:
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationMissingField,
			"unrecognized claim status filter",
			nil,
			map[string]any{"status": string(status)},
		))
		return
	}

	claims, err := h.claims.List(r.Context(), r.URL.Query().Get("policy_id"), status)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: claims})
}

// Get handles GET /v1/claims/{claimID}. The stored evidence blob is decoded
// into the full analysis; a blob that fails to decode is logged and omitted
// rather than failing the request.
func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	claim, err := h.claims.GetByID(r.Context(), chi.URLParam(r, "claimID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	detail := ClaimDetail{Claim: claim}
	if len(claim.Evidence) > 0 {
		analysis, err := db.DecodeEvidence(claim.Evidence)
		if err != nil {
			h.logger.WarnContext(r.Context(), "claim evidence failed to decode",
				"claim_id", claim.ID,
				"error", err,
			)
		} else {
			detail.Evidence = analysis
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: detail})
}
