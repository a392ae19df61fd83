package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perilwatch/internal/core"
	"perilwatch/internal/risk"
	"perilwatch/internal/types"
)

// AlertScanResult is the response body for the alert scan endpoint.
type AlertScanResult struct {
	Alerts          []types.Alert `json:"alerts"`
	StationsScanned int           `json:"stations_scanned"`
}

// AlertHandler scans every known station and reports the active alerts. The
// same scan runs on a schedule in the risk poller; the endpoint exists so
// automation clients can pull on demand between poller runs.
type AlertHandler struct {
	stations     StationSource
	observations ObservationReader
	logger       *slog.Logger
	clock        types.Clock
}

// NewAlertHandler creates an AlertHandler with the provided dependencies.
func NewAlertHandler(stations StationSource, observations ObservationReader, logger *slog.Logger, clock types.Clock) *AlertHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &AlertHandler{
		stations:     stations,
		observations: observations,
		logger:       logger,
		clock:        clock,
	}
}

// RegisterRoutes mounts alert routes on the provided chi.Router.
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.Scan)
}

// Scan handles GET /v1/alerts. Stations whose observation fetch fails are
// logged and skipped; the scan reports on the stations it could reach.
func (h *AlertHandler) Scan(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.GetStations(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	alerts := []types.Alert{}
	scanned := 0
	for _, station := range stations {
		obs, err := h.observations.GetLatestObservation(r.Context(), station.ID)
		if err != nil {
			h.logger.WarnContext(r.Context(), "observation fetch failed during alert scan, skipping station",
				"station_id", station.ID,
				"error", err,
			)
			continue
		}
		scanned++

		sr := types.StationRisk{
			StationID:   station.ID,
			Timestamp:   obs.Timestamp,
			Risks:       risk.Snapshot(*obs),
			Observation: *obs,
		}
		alerts = append(alerts, risk.BuildStationAlerts(station, sr)...)
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: AlertScanResult{
		Alerts:          alerts,
		StationsScanned: scanned,
	}})
}
