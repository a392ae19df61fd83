// Package scheduler implements the station risk poller.
//
// The poller walks the weather provider's station directory on a fixed
// interval, computes an instantaneous risk snapshot per station, publishes
// alerts for stations in the alert band, and enqueues payout checks for
// active policies at stations whose risk has reached the extreme band. The
// claim worker performs the authoritative historical analysis; the poller
// only dispatches references, never decisions.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"perilwatch/internal/config"
	"perilwatch/internal/risk"
	"perilwatch/internal/types"
)

// ActivePolicyLister abstracts the single policy read the poller needs.
type ActivePolicyLister interface {
	ListActiveByStation(ctx context.Context, stationID string) ([]*types.Policy, error)
}

// PollStats summarizes one poll cycle for logging and tests.
type PollStats struct {
	StationsScanned  int
	StationsSkipped  int
	AlertsPublished  int
	PayoutChecksSent int
}

// RiskPoller drives the periodic station scan.
type RiskPoller struct {
	stations  types.StationDirectory
	source    types.ObservationSource
	policies  ActivePolicyLister
	publisher types.AlertPublisher
	trigger   types.PayoutCheckTrigger

	interval       time.Duration
	lookbackDays   int
	stationTimeout time.Duration

	scheduler *gocron.Scheduler
	logger    *slog.Logger
	clock     types.Clock
}

// RiskPollerConfig holds the dependencies for creating a RiskPoller.
type RiskPollerConfig struct {
	Stations  types.StationDirectory
	Source    types.ObservationSource
	Policies  ActivePolicyLister
	Publisher types.AlertPublisher
	Trigger   types.PayoutCheckTrigger
	Poller    config.PollerConfig
	Logger    *slog.Logger
	Clock     types.Clock
}

// NewRiskPoller creates a RiskPoller with the given configuration.
func NewRiskPoller(cfg RiskPollerConfig) *RiskPoller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	return &RiskPoller{
		stations:       cfg.Stations,
		source:         cfg.Source,
		policies:       cfg.Policies,
		publisher:      cfg.Publisher,
		trigger:        cfg.Trigger,
		interval:       cfg.Poller.Interval,
		lookbackDays:   cfg.Poller.LookbackDays,
		stationTimeout: cfg.Poller.StationTimeout,
		scheduler:      gocron.NewScheduler(time.UTC),
		logger:         logger,
		clock:          clock,
	}
}

// Start schedules the periodic scan and starts the underlying scheduler.
// The first run fires after one full interval.
func (p *RiskPoller) Start() error {
	_, err := p.scheduler.Every(p.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.interval)
		defer cancel()

		stats, err := p.PollOnce(ctx)
		if err != nil {
			p.logger.ErrorContext(ctx, "poll cycle failed", "error", err)
			return
		}
		p.logger.InfoContext(ctx, "poll cycle complete",
			"stations_scanned", stats.StationsScanned,
			"stations_skipped", stats.StationsSkipped,
			"alerts_published", stats.AlertsPublished,
			"payout_checks_sent", stats.PayoutChecksSent,
		)
	})
	if err != nil {
		return fmt.Errorf("scheduler: scheduling poll job: %w", err)
	}

	p.scheduler.StartAsync()
	p.logger.Info("risk poller started", "interval", p.interval.String())
	return nil
}

// Stop halts the scheduler. In-flight cycles run to completion.
func (p *RiskPoller) Stop() {
	p.scheduler.Stop()
}

// PollOnce runs a single scan over the full station directory. Individual
// station failures are logged and skipped; only a directory listing failure
// aborts the cycle.
func (p *RiskPoller) PollOnce(ctx context.Context) (PollStats, error) {
	var stats PollStats
	traceID := uuid.New().String()

	stations, err := p.stations.GetStations(ctx)
	if err != nil {
		return stats, fmt.Errorf("scheduler: listing stations: %w", err)
	}

	var alerts []types.Alert
	for _, station := range stations {
		stationAlerts, err := p.scanStation(ctx, station)
		if err != nil {
			stats.StationsSkipped++
			p.logger.WarnContext(ctx, "station scan failed",
				"station_id", station.ID,
				"trace_id", traceID,
				"error", err,
			)
			continue
		}
		stats.StationsScanned++
		alerts = append(alerts, stationAlerts...)

		sent := p.dispatchPayoutChecks(ctx, station, stationAlerts, traceID)
		stats.PayoutChecksSent += sent
	}

	if len(alerts) > 0 {
		if err := p.publisher.PublishAlerts(ctx, alerts); err != nil {
			// Alerts are advisory; the payout checks already went out.
			p.logger.ErrorContext(ctx, "failed to publish alerts",
				"trace_id", traceID,
				"count", len(alerts),
				"error", err,
			)
		} else {
			stats.AlertsPublished = len(alerts)
		}
	}

	return stats, nil
}

// scanStation fetches the station's latest observation and converts the
// resulting snapshot into alerts.
func (p *RiskPoller) scanStation(ctx context.Context, station types.Station) ([]types.Alert, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stationTimeout)
	defer cancel()

	obs, err := p.source.GetLatestObservation(ctx, station.ID)
	if err != nil {
		return nil, err
	}

	sr := types.StationRisk{
		StationID:   station.ID,
		Timestamp:   p.clock.Now(),
		Risks:       risk.Snapshot(*obs),
		Observation: *obs,
	}
	return risk.BuildStationAlerts(station, sr), nil
}

// dispatchPayoutChecks enqueues one payout check per active policy whose
// coverage matches an extreme-band alert at the station. High-band alerts
// reach consumers via the alerts topic only; the claim pipeline reserves
// its analysis capacity for the extreme band.
func (p *RiskPoller) dispatchPayoutChecks(ctx context.Context, station types.Station, alerts []types.Alert, traceID string) int {
	var extreme []types.Alert
	for _, a := range alerts {
		if a.Severity == types.SeverityExtreme {
			extreme = append(extreme, a)
		}
	}
	if len(extreme) == 0 {
		return 0
	}

	policies, err := p.policies.ListActiveByStation(ctx, station.ID)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to list active policies",
			"station_id", station.ID,
			"trace_id", traceID,
			"error", err,
		)
		return 0
	}

	sent := 0
	for _, alert := range extreme {
		for _, policy := range policies {
			if !policy.CoverageType.Covers(alert.AlertType) {
				continue
			}
			msg := types.PayoutCheckMessage{
				TraceID:      traceID,
				PolicyID:     policy.ID,
				StationID:    station.ID,
				Peril:        alert.AlertType,
				DetectedAt:   p.clock.Now(),
				LookbackDays: p.lookbackDays,
			}
			if err := p.trigger.TriggerPayoutCheck(ctx, msg); err != nil {
				p.logger.ErrorContext(ctx, "failed to trigger payout check",
					"policy_id", policy.ID,
					"station_id", station.ID,
					"peril", string(alert.AlertType),
					"trace_id", traceID,
					"error", err,
				)
				continue
			}
			sent++
		}
	}
	return sent
}
