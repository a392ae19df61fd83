package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"perilwatch/internal/types"
)

// WeatherClientConfig holds the configuration for creating a WeatherClient.
type WeatherClientConfig struct {
	BaseURL   string
	APIKey    types.SecretString
	UserAgent string
	Logger    *slog.Logger
}

// WeatherClient talks to the upstream weather data provider's REST API. It
// implements types.ObservationSource and types.StationDirectory, translating
// the provider's wire format into domain observations. All requests go
// through BaseClient for circuit breaking and retries.
type WeatherClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
	logger  *slog.Logger
}

// NewWeatherClient creates a WeatherClient. The httpClient timeout bounds a
// single attempt; overall latency is governed by the retry policy.
func NewWeatherClient(httpClient *http.Client, cfg WeatherClientConfig) *WeatherClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "PerilWatch/1.0"
	}

	base := NewBaseClient(
		httpClient,
		"weather-provider",
		DefaultRetryPolicy(),
		userAgent,
	)

	return &WeatherClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// NewWeatherClientWithBase creates a WeatherClient with a pre-configured
// BaseClient. Useful in tests to control retry and breaker behavior.
func NewWeatherClientWithBase(base *BaseClient, cfg WeatherClientConfig) *WeatherClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherClient{
		base:    base,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// Provider wire types. The provider reports observations flat; stations carry
// a nested location object.
type providerObservation struct {
	Timestamp                time.Time `json:"timestamp"`
	Temperature              float64   `json:"temperature"`
	Humidity                 float64   `json:"humidity"`
	Pressure                 float64   `json:"pressure"`
	WindSpeed                float64   `json:"wind_speed"`
	WindGust                 float64   `json:"wind_gust"`
	PrecipitationRate        float64   `json:"precipitation_rate"`
	PrecipitationAccumulated float64   `json:"precipitation_accumulated"`
}

type providerStation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

func (o providerObservation) toDomain() *types.Observation {
	return &types.Observation{
		Timestamp:                o.Timestamp,
		Temperature:              o.Temperature,
		Humidity:                 o.Humidity,
		Pressure:                 o.Pressure,
		WindSpeed:                o.WindSpeed,
		WindGust:                 o.WindGust,
		PrecipitationRate:        o.PrecipitationRate,
		PrecipitationAccumulated: o.PrecipitationAccumulated,
	}
}

// GetStations lists the stations available to this account.
func (w *WeatherClient) GetStations(ctx context.Context) ([]types.Station, error) {
	resp, err := w.doGet(ctx, "/v1/stations", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, w.unexpectedStatus(resp, "GetStations")
	}

	var payload struct {
		Stations []providerStation `json:"stations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, w.decodeError("GetStations", err)
	}

	stations := make([]types.Station, 0, len(payload.Stations))
	for _, s := range payload.Stations {
		stations = append(stations, types.Station{
			ID:   s.ID,
			Name: s.Name,
			Location: types.Location{
				Lat: s.Location.Lat,
				Lon: s.Location.Lon,
			},
		})
	}
	return stations, nil
}

// GetLatestObservation returns the most recent reading for the station.
func (w *WeatherClient) GetLatestObservation(ctx context.Context, stationID string) (*types.Observation, error) {
	path := fmt.Sprintf("/v1/stations/%s/observations/latest", url.PathEscape(stationID))

	resp, err := w.doGet(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundStation,
			"station not known to the weather provider",
			nil,
			map[string]any{"station_id": stationID},
		)
	default:
		return nil, w.unexpectedStatus(resp, "GetLatestObservation")
	}

	var payload providerObservation
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, w.decodeError("GetLatestObservation", err)
	}
	return payload.toDomain(), nil
}

// GetObservationsForDate returns the day-granularity historical reading for
// the given calendar day.
func (w *WeatherClient) GetObservationsForDate(ctx context.Context, stationID string, date time.Time) (*types.Observation, error) {
	path := fmt.Sprintf("/v1/stations/%s/observations", url.PathEscape(stationID))
	query := url.Values{}
	query.Set("date", date.UTC().Format("2006-01-02"))

	resp, err := w.doGet(ctx, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		// The provider reports 404 both for unknown stations and for days it
		// has no data for. Either way the day is absent from the series.
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamWeather,
			"no observation for requested day",
			nil,
			map[string]any{
				"station_id": stationID,
				"date":       date.UTC().Format("2006-01-02"),
			},
		)
	default:
		return nil, w.unexpectedStatus(resp, "GetObservationsForDate")
	}

	var payload providerObservation
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, w.decodeError("GetObservationsForDate", err)
	}
	return payload.toDomain(), nil
}

func (w *WeatherClient) doGet(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	endpoint := w.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to build weather provider request",
			err,
		)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey.Unmask())
	req.Header.Set("Accept", "application/json")

	return w.base.Do(req)
}

func (w *WeatherClient) unexpectedStatus(resp *http.Response, op string) *types.AppError {
	w.logger.Warn("weather provider returned unexpected status",
		"operation", op,
		"status", resp.StatusCode,
	)
	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamWeather,
		fmt.Sprintf("weather provider returned %d", resp.StatusCode),
		nil,
		map[string]any{"operation": op},
	)
}

func (w *WeatherClient) decodeError(op string, err error) *types.AppError {
	return types.NewAppError(
		types.ErrCodeUpstreamWeather,
		fmt.Sprintf("failed to decode weather provider response for %s", op),
		err,
	)
}
