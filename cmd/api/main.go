// Package main is the entry point for the PerilWatch API server.
//
// It loads configuration, connects the Postgres pool and external clients,
// wires the domain handlers onto the core chassis, and serves HTTP with
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"

	"perilwatch/internal/api/handlers"
	"perilwatch/internal/billing"
	"perilwatch/internal/config"
	"perilwatch/internal/core"
	"perilwatch/internal/db"
	"perilwatch/internal/external"
	"perilwatch/internal/metrics"
	"perilwatch/internal/risk"
	"perilwatch/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("perilwatch API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}

	policyRepo := db.NewPolicyRepository(pool)
	claimRepo := db.NewClaimRepository(pool)
	paymentRepo := db.NewPaymentRepository(pool)

	weatherClient := external.NewWeatherClient(
		&http.Client{Timeout: cfg.Weather.RequestTimeout},
		external.WeatherClientConfig{
			BaseURL:   cfg.Weather.BaseURL,
			APIKey:    cfg.Weather.APIKey,
			UserAgent: cfg.Weather.UserAgent,
			Logger:    logger,
		},
	)
	stripeClient := external.NewStripeClient(
		&http.Client{Timeout: 15 * time.Second},
		external.StripeClientConfig{
			SecretKey: cfg.Billing.StripeSecretKey,
			Logger:    logger,
		},
	)

	clock := types.RealClock{}
	analyzer := risk.NewAnalyzer(weatherClient, logger, clock)
	quoter := billing.NewQuoter()

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if cfg.Observability.EnableMetrics {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}
		cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		srv.Metrics = metrics.NewCloudWatchCollector(cwClient, cfg.Observability, logger)
	}

	srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
		ProbeName: "database",
		Fn:        pool.Ping,
	})

	stationHandler := handlers.NewStationHandler(weatherClient, weatherClient, logger, clock)
	alertHandler := handlers.NewAlertHandler(weatherClient, weatherClient, logger, clock)
	analysisHandler := handlers.NewAnalysisHandler(analyzer, srv.Validator, logger, clock)
	policyHandler := handlers.NewPolicyHandler(policyRepo, quoter, analyzer, srv.Validator, logger, clock)
	claimHandler := handlers.NewClaimHandler(claimRepo, policyRepo, srv.Validator, logger, clock)
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, policyRepo, stripeClient, srv.Validator, logger, clock)
	webhookHandler := handlers.NewStripeWebhookHandler(
		paymentRepo,
		&external.StripeVerifier{},
		cfg.Billing.StripeWebhookSecret,
		logger,
	)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { stationHandler.RegisterRoutes(r) },
		func(r chi.Router) { alertHandler.RegisterRoutes(r) },
		func(r chi.Router) { analysisHandler.RegisterRoutes(r) },
		func(r chi.Router) { policyHandler.RegisterRoutes(r) },
		func(r chi.Router) { claimHandler.RegisterRoutes(r) },
		func(r chi.Router) { paymentHandler.RegisterRoutes(r) },
		func(r chi.Router) { webhookHandler.RegisterRoutes(r) },
	)

	srv.OnShutdown("database", func(_ context.Context) error {
		pool.Close()
		return nil
	})

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
