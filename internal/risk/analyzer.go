package risk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"perilwatch/internal/types"
)

// fetchConcurrencyLimit caps the number of in-flight per-day observation
// fetches during a historical analysis. The fetches are independent and
// read-only, so they run in parallel; results are reassembled in calendar
// order before scoring.
const fetchConcurrencyLimit = 10

// Analyzer orchestrates the four peril scorers over a lookback window of
// daily observations fetched from the external observation source.
//
// Each Analyze call is independent and carries no shared mutable state, so
// analyses for different stations may run fully in parallel.
type Analyzer struct {
	source types.ObservationSource
	logger *slog.Logger
	clock  types.Clock
}

// NewAnalyzer creates an Analyzer with the provided dependencies.
func NewAnalyzer(source types.ObservationSource, logger *slog.Logger, clock types.Clock) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Analyzer{
		source: source,
		logger: logger,
		clock:  clock,
	}
}

// Analyze fetches the observation series covering
// [analysisDate - lookbackDays, analysisDate) and runs all four peril
// scorers over it, producing a WeatherAnalysis with the payout
// recommendation left unset.
//
// Individual day fetches that fail are logged and skipped; the analysis
// proceeds on the sparse series. Only when the entire window is unavailable
// does Analyze fail, with an upstream_weather_unavailable error. Absent days
// do not contribute to run lengths or window sums.
func (a *Analyzer) Analyze(ctx context.Context, stationID string, analysisDate time.Time, lookbackDays int) (*types.WeatherAnalysis, error) {
	if lookbackDays <= 0 {
		return nil, types.NewAppError(
			types.ErrCodeValidationLookbackRange,
			fmt.Sprintf("lookback days must be positive, got %d", lookbackDays),
			nil,
		)
	}

	series, err := a.fetchSeries(ctx, stationID, analysisDate, lookbackDays)
	if err != nil {
		return nil, err
	}

	drought := ScoreDrought(series)
	flood := ScoreFlood(series)
	wind := ScoreWind(series)
	hail := ScoreHail(series)

	events := make([]types.TriggerEvent, 0,
		len(drought.Events)+len(flood.Events)+len(wind.Events)+len(hail.Events))
	events = append(events, drought.Events...)
	events = append(events, flood.Events...)
	events = append(events, wind.Events...)
	events = append(events, hail.Events...)

	return &types.WeatherAnalysis{
		StationID:    stationID,
		AnalysisDate: analysisDate,
		Period:       fmt.Sprintf("%dd", lookbackDays),
		RiskScores: types.RiskScores{
			Drought: drought.RiskScore,
			Flood:   flood.RiskScore,
			Wind:    wind.RiskScore,
			Hail:    hail.RiskScore,
		},
		TriggerEvents:        events,
		PayoutRecommendation: nil,
	}, nil
}

// fetchSeries retrieves one observation per calendar day in the window,
// in parallel, preserving chronological order. Days whose fetch fails are
// omitted from the returned series.
func (a *Analyzer) fetchSeries(ctx context.Context, stationID string, analysisDate time.Time, lookbackDays int) (types.ObservationSeries, error) {
	start := truncateToDay(analysisDate).AddDate(0, 0, -lookbackDays)

	fetched := make([]*types.Observation, lookbackDays)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrencyLimit)

	for i := 0; i < lookbackDays; i++ {
		i := i
		date := start.AddDate(0, 0, i)

		g.Go(func() error {
			obs, err := a.source.GetObservationsForDate(gCtx, stationID, date)
			if err != nil {
				// Missing days must not abort the whole series; the scorers
				// tolerate sparse input.
				a.logger.WarnContext(gCtx, "observation fetch failed for day, skipping",
					"station_id", stationID,
					"date", date.Format("2006-01-02"),
					"error", err,
				)
				return nil
			}
			fetched[i] = obs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"observation series fetch aborted",
			err,
		)
	}

	series := make(types.ObservationSeries, 0, lookbackDays)
	for i, obs := range fetched {
		if obs == nil {
			continue
		}
		series = append(series, types.DailyObservation{
			Date:        start.AddDate(0, 0, i),
			Observation: *obs,
		})
	}

	if len(series) == 0 {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamWeather,
			"no observations available for the analysis window",
			nil,
			map[string]any{
				"station_id":    stationID,
				"lookback_days": lookbackDays,
			},
		)
	}

	if len(series) < lookbackDays {
		a.logger.InfoContext(ctx, "proceeding with sparse observation series",
			"station_id", stationID,
			"requested_days", lookbackDays,
			"available_days", len(series),
		)
	}

	return series, nil
}

// truncateToDay normalizes a timestamp to UTC midnight of its calendar day.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
