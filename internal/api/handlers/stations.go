// Package handlers contains the HTTP handler implementations for the
// PerilWatch API. Handlers depend on locally defined interfaces rather than
// concrete collaborators so tests can inject hand-rolled fakes.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perilwatch/internal/core"
	"perilwatch/internal/risk"
	"perilwatch/internal/types"
)

// StationSource lists the stations known to the weather provider.
type StationSource interface {
	GetStations(ctx context.Context) ([]types.Station, error)
}

// ObservationReader fetches the most recent reading for a station.
type ObservationReader interface {
	GetLatestObservation(ctx context.Context, stationID string) (*types.Observation, error)
}

// StationRiskView is the contract-facing snapshot: the per-peril scores, the
// raw observation they came from, and whether any score sits in the payout
// band. The payout flag is informational; the policy evaluator decides.
type StationRiskView struct {
	types.StationRisk
	ShouldTriggerPayout bool `json:"should_trigger_payout"`
}

// StationHandler serves the station directory and live risk snapshots.
type StationHandler struct {
	stations     StationSource
	observations ObservationReader
	logger       *slog.Logger
	clock        types.Clock
}

// NewStationHandler creates a StationHandler with the provided dependencies.
func NewStationHandler(stations StationSource, observations ObservationReader, logger *slog.Logger, clock types.Clock) *StationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &StationHandler{
		stations:     stations,
		observations: observations,
		logger:       logger,
		clock:        clock,
	}
}

// RegisterRoutes mounts station routes on the provided chi.Router.
func (h *StationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/stations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{stationID}/risk", h.Risk)
	})
}

// List handles GET /v1/stations.
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.GetStations(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: stations})
}

// Risk handles GET /v1/stations/{stationID}/risk. It fetches the latest
// observation, derives the instantaneous snapshot, and flags payout
// eligibility when any peril score reaches the payout band.
func (h *StationHandler) Risk(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")
	if stationID == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"station ID is required",
			nil,
		))
		return
	}

	obs, err := h.observations.GetLatestObservation(r.Context(), stationID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	snapshot := risk.Snapshot(*obs)
	view := StationRiskView{
		StationRisk: types.StationRisk{
			StationID:   stationID,
			Timestamp:   obs.Timestamp,
			Risks:       snapshot,
			Observation: *obs,
		},
		ShouldTriggerPayout: snapshotInPayoutBand(snapshot),
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: view})
}

// snapshotInPayoutBand reports whether any peril score reaches the payout
// threshold.
func snapshotInPayoutBand(s types.RiskSnapshot) bool {
	return s.FloodRisk >= types.PayoutRiskThreshold ||
		s.WindRisk >= types.PayoutRiskThreshold ||
		s.DroughtRisk >= types.PayoutRiskThreshold
}
