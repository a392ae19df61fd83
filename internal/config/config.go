// Package config defines the global configuration structure for the PerilWatch
// platform. Configuration is loaded once at process initialization and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup.
package config

import (
	"time"

	"perilwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the PerilWatch platform.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"perilwatch"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Weather       WeatherConfig
	Billing       BillingConfig
	Alerting      AlertingConfig
	Poller        PollerConfig
	Security      SecurityConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"20s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Resource Identifiers
	PayoutCheckQueueURL string `envconfig:"SQS_PAYOUT_CHECKS" validate:"required,url"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// WeatherConfig holds the upstream weather provider connection settings.
type WeatherConfig struct {
	BaseURL        string        `envconfig:"WEATHER_API_BASE_URL" validate:"required,url"`
	APIKey         SecretString  `envconfig:"WEATHER_API_KEY" validate:"required"`
	RequestTimeout time.Duration `envconfig:"WEATHER_REQUEST_TIMEOUT" default:"10s"`
	UserAgent      string        `envconfig:"WEATHER_USER_AGENT" default:"PerilWatch/1.0"`
}

// BillingConfig holds Stripe payment integration credentials.
type BillingConfig struct {
	StripeSecretKey     SecretString `envconfig:"STRIPE_SECRET_KEY" validate:"required"`
	StripeWebhookSecret SecretString `envconfig:"STRIPE_WEBHOOK_SECRET"`
}

// AlertingConfig holds the Kafka alert broadcasting settings.
type AlertingConfig struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS" validate:"required"`
	AlertsTopic  string        `envconfig:"KAFKA_ALERTS_TOPIC" default:"weather-alerts"`
	WriteTimeout time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"10s"`
}

// PollerConfig holds the station risk poller schedule and analysis parameters.
type PollerConfig struct {
	Interval       time.Duration `envconfig:"POLL_INTERVAL" default:"10m"`
	LookbackDays   int           `envconfig:"ANALYSIS_LOOKBACK_DAYS" default:"30" validate:"min=1,max=90"`
	StationTimeout time.Duration `envconfig:"STATION_POLL_TIMEOUT" default:"30s"`
}

// SecurityConfig holds the automation API credentials.
// AutomationKeyHash is the bcrypt hash of the key automation clients present.
type SecurityConfig struct {
	AutomationKeyHash SecretString `envconfig:"AUTOMATION_API_KEY_HASH" validate:"required"`
}

// ObservabilityConfig holds telemetry and monitoring settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"PerilWatch"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
