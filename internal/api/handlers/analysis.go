package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perilwatch/internal/core"
	"perilwatch/internal/types"
)

// maxLookbackDays caps the historical analysis window. The weather provider
// retains roughly a quarter of daily history, so longer windows would only
// produce sparse series.
const maxLookbackDays = 90

// defaultLookbackDays is the analysis window used when a request omits it.
const defaultLookbackDays = 30

// WeatherAnalyzer runs the historical peril analysis for one station.
type WeatherAnalyzer interface {
	Analyze(ctx context.Context, stationID string, analysisDate time.Time, lookbackDays int) (*types.WeatherAnalysis, error)
}

// AnalysisRequest is the request body for POST /v1/analysis.
type AnalysisRequest struct {
	StationID    string `json:"station_id" validate:"required"`
	AnalysisDate string `json:"analysis_date,omitempty"` // YYYY-MM-DD, defaults to today
	LookbackDays int    `json:"lookback_days,omitempty"` // defaults to 30
}

// AnalysisHandler exposes the on-demand historical weather analysis.
type AnalysisHandler struct {
	analyzer  WeatherAnalyzer
	validator *core.Validator
	logger    *slog.Logger
	clock     types.Clock
}

// NewAnalysisHandler creates an AnalysisHandler with the provided dependencies.
func NewAnalysisHandler(analyzer WeatherAnalyzer, v *core.Validator, logger *slog.Logger, clock types.Clock) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &AnalysisHandler{
		analyzer:  analyzer,
		validator: v,
		logger:    logger,
		clock:     clock,
	}
}

// RegisterRoutes mounts analysis routes on the provided chi.Router.
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analysis", h.Analyze)
}

// Analyze handles POST /v1/analysis.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	lookback := req.LookbackDays
	if lookback == 0 {
		lookback = defaultLookbackDays
	}
	if lookback < 1 || lookback > maxLookbackDays {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationLookbackRange,
			fmt.Sprintf("lookback_days must be between 1 and %d", maxLookbackDays),
			nil,
		))
		return
	}

	analysisDate, err := parseAnalysisDate(req.AnalysisDate, h.clock)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.StationID, analysisDate, lookback)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: analysis})
}

// parseAnalysisDate interprets an optional YYYY-MM-DD date, defaulting to the
// current day.
func parseAnalysisDate(raw string, clock types.Clock) (time.Time, error) {
	if raw == "" {
		return clock.Now(), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, types.NewAppError(
			types.ErrCodeValidationInvalidDate,
			"analysis_date must be formatted YYYY-MM-DD",
			err,
		)
	}
	return date, nil
}
