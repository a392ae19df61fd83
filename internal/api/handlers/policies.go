package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"perilwatch/internal/core"
	"perilwatch/internal/risk"
	"perilwatch/internal/types"
)

// PolicyStore defines the data access contract for policy operations.
type PolicyStore interface {
	Create(ctx context.Context, policy *types.Policy) error
	GetByID(ctx context.Context, id string) (*types.Policy, error)
	List(ctx context.Context, farmerID string) ([]*types.Policy, error)
	UpdateStatus(ctx context.Context, id string, status types.PolicyStatus) error
}

// PremiumQuoter prices a policy's monthly premium.
type PremiumQuoter interface {
	MonthlyPremium(coverage types.CoverageType, cropType string, farmSizeHectares, coverageAmount float64) (float64, error)
}

// CreatePolicyRequest is the request body for POST /v1/policies.
type CreatePolicyRequest struct {
	FarmerID       string                 `json:"farmer_id" validate:"required"`
	FarmerName     string                 `json:"farmer_name" validate:"required"`
	FarmerEmail    string                 `json:"farmer_email" validate:"required,email"`
	StationID      string                 `json:"station_id" validate:"required"`
	StationName    string                 `json:"station_name,omitempty"`
	Location       types.Location         `json:"location"`
	FarmSize       float64                `json:"farm_size" validate:"required,gt=0"`
	CropType       string                 `json:"crop_type" validate:"required"`
	CoverageType   string                 `json:"coverage_type" validate:"required,coverage"`
	CoverageAmount float64                `json:"coverage_amount" validate:"required,gt=0"`
	Deductible     float64                `json:"deductible" validate:"gte=0,lt=100"`
	Thresholds     types.PolicyThresholds `json:"thresholds"`
	StartDate      time.Time              `json:"start_date"`
	EndDate        time.Time              `json:"end_date"`
}

// EvaluatePolicyRequest is the optional request body for the evaluate
// endpoint. An empty body evaluates with the defaults.
type EvaluatePolicyRequest struct {
	AnalysisDate string `json:"analysis_date,omitempty"`
	LookbackDays int    `json:"lookback_days,omitempty"`
}

// PolicyHandler manages policy CRUD and payout evaluation.
type PolicyHandler struct {
	policies  PolicyStore
	quoter    PremiumQuoter
	analyzer  WeatherAnalyzer
	validator *core.Validator
	logger    *slog.Logger
	clock     types.Clock
}

// NewPolicyHandler creates a PolicyHandler with the provided dependencies.
func NewPolicyHandler(
	policies PolicyStore,
	quoter PremiumQuoter,
	analyzer WeatherAnalyzer,
	v *core.Validator,
	logger *slog.Logger,
	clock types.Clock,
) *PolicyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &PolicyHandler{
		policies:  policies,
		quoter:    quoter,
		analyzer:  analyzer,
		validator: v,
		logger:    logger,
		clock:     clock,
	}
}

// RegisterRoutes mounts policy routes on the provided chi.Router.
func (h *PolicyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{policyID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/cancel", h.Cancel)
			r.Post("/evaluate", h.Evaluate)
		})
	})
}

// Create handles POST /v1/policies. The monthly premium is computed from the
// coverage, crop, and farm size; clients cannot set it.
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	coverage := types.CoverageType(req.CoverageType)
	premium, err := h.quoter.MonthlyPremium(coverage, req.CropType, req.FarmSize, req.CoverageAmount)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	now := h.clock.Now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}
	end := req.EndDate
	if end.IsZero() {
		end = start.AddDate(1, 0, 0)
	}
	if !end.After(start) {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidDate,
			"end_date must be after start_date",
			nil,
		))
		return
	}

	policy := &types.Policy{
		ID:             "pol_" + uuid.New().String(),
		FarmerID:       req.FarmerID,
		FarmerName:     req.FarmerName,
		FarmerEmail:    req.FarmerEmail,
		StationID:      req.StationID,
		StationName:    req.StationName,
		Location:       req.Location,
		FarmSize:       req.FarmSize,
		CropType:       req.CropType,
		CoverageType:   coverage,
		CoverageAmount: req.CoverageAmount,
		PremiumAmount:  premium,
		Deductible:     req.Deductible,
		Thresholds:     req.Thresholds,
		StartDate:      start,
		EndDate:        end,
		Status:         types.PolicyStatusActive,
		CreatedAt:      now,
	}

	if err := h.policies.Create(r.Context(), policy); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "policy created",
		"policy_id", policy.ID,
		"farmer_id", policy.FarmerID,
		"coverage_type", policy.CoverageType,
		"premium_amount", policy.PremiumAmount,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: policy})
}

// List handles GET /v1/policies. The optional farmer_id query parameter
// narrows the result to one farmer.
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.List(r.Context(), r.URL.Query().Get("farmer_id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: policies})
}

// Get handles GET /v1/policies/{policyID}.
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	policy, err := h.policies.GetByID(r.Context(), chi.URLParam(r, "policyID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: policy})
}

// Cancel handles POST /v1/policies/{policyID}/cancel.
func (h *PolicyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "policyID")

	policy, err := h.policies.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if !policy.IsActive() {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeConflictPolicyInactive,
			"only active policies can be cancelled",
			nil,
		))
		return
	}

	if err := h.policies.UpdateStatus(r.Context(), id, types.PolicyStatusCancelled); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "policy cancelled", "policy_id", id)

	policy.Status = types.PolicyStatusCancelled
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: policy})
}

// Evaluate handles POST /v1/policies/{policyID}/evaluate. It runs the
// historical analysis for the policy's station and evaluates the payout
// rules; the returned analysis carries the recommendation, which is null
// when no event qualifies.
func (h *PolicyHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	policy, err := h.policies.GetByID(r.Context(), chi.URLParam(r, "policyID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if !policy.IsActive() {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeConflictPolicyInactive,
			"policy is not active",
			nil,
		))
		return
	}

	var req EvaluatePolicyRequest
	if r.ContentLength > 0 {
		if err := core.DecodeJSON(w, r, &req); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	lookback := req.LookbackDays
	if lookback == 0 {
		lookback = defaultLookbackDays
	}
	if lookback < 1 || lookback > maxLookbackDays {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationLookbackRange,
			"lookback_days out of range",
			nil,
		))
		return
	}

	analysisDate, err := parseAnalysisDate(req.AnalysisDate, h.clock)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), policy.StationID, analysisDate, lookback)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	recommendation, err := risk.EvaluatePayout(policy, analysis)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	analysis.PayoutRecommendation = recommendation

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: analysis})
}
