// Package main is the entry point for the risk poller daemon.
//
// The poller scans the weather provider's station directory on a fixed
// interval, publishes alerts to the Kafka alerts topic, and enqueues payout
// checks on the SQS queue for stations whose risk reaches the extreme band.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"perilwatch/internal/alerts"
	"perilwatch/internal/config"
	"perilwatch/internal/db"
	"perilwatch/internal/external"
	"perilwatch/internal/queue"
	"perilwatch/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("risk poller starting",
		"environment", cfg.Environment,
		"interval", cfg.Poller.Interval.String(),
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	weatherClient := external.NewWeatherClient(
		&http.Client{Timeout: cfg.Weather.RequestTimeout},
		external.WeatherClientConfig{
			BaseURL:   cfg.Weather.BaseURL,
			APIKey:    cfg.Weather.APIKey,
			UserAgent: cfg.Weather.UserAgent,
			Logger:    logger,
		},
	)

	publisher := alerts.NewPublisher(cfg.Alerting, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close alert publisher", "error", err)
		}
	}()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})

	poller := scheduler.NewRiskPoller(scheduler.RiskPollerConfig{
		Stations:  weatherClient,
		Source:    weatherClient,
		Policies:  db.NewPolicyRepository(pool),
		Publisher: publisher,
		Trigger:   queue.NewPayoutTrigger(sqsClient, cfg.AWS, logger),
		Poller:    cfg.Poller,
		Logger:    logger,
	})

	if err := poller.Start(); err != nil {
		return fmt.Errorf("starting poller: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info("shutdown signal received", "signal", sig.String())

	poller.Stop()
	logger.Info("risk poller stopped cleanly")
	return nil
}
