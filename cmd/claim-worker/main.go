// Package main is the entrypoint for the claim worker Lambda function.
//
// The claim worker consumes payout-check messages from the SQS queue, runs
// the historical weather analysis for the policy's station, evaluates the
// policy's contractual thresholds, and creates approved claims for
// qualifying events. It uses the SQS Lambda handler pattern where each
// invocation receives a batch of messages and reports partial failures.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"perilwatch/internal/config"
	"perilwatch/internal/db"
	"perilwatch/internal/external"
	"perilwatch/internal/risk"
	"perilwatch/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("claim worker initializing (cold start)")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	weatherClient := external.NewWeatherClient(
		&http.Client{Timeout: cfg.Weather.RequestTimeout},
		external.WeatherClientConfig{
			BaseURL:   cfg.Weather.BaseURL,
			APIKey:    cfg.Weather.APIKey,
			UserAgent: cfg.Weather.UserAgent,
			Logger:    logger,
		},
	)

	w := worker.NewClaimWorker(worker.ClaimWorkerConfig{
		Policies: db.NewPolicyRepository(pool),
		Claims:   db.NewClaimRepository(pool),
		Analyzer: risk.NewAnalyzer(weatherClient, logger, nil),
		Logger:   logger,
	})

	logger.Info("claim worker initialized",
		"environment", cfg.Environment,
		"payout_check_queue", cfg.AWS.PayoutCheckQueueURL,
	)

	// Local mode: read a JSON SQS event from stdin instead of starting the
	// Lambda runtime. Enables local integration testing without the AWS
	// Lambda RIE.
	if cfg.Environment == "local" {
		if err := runLocal(ctx, w, logger); err != nil {
			logger.Error("local execution failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(w.Handle)
}

// runLocal reads one SQS event from stdin and processes it.
func runLocal(ctx context.Context, w *worker.ClaimWorker, logger *slog.Logger) error {
	logger.Info("APP_ENV=local: reading SQS event from stdin")

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("no input received on stdin")
	}

	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(payload, &sqsEvent); err != nil {
		return fmt.Errorf("parsing stdin as SQS event: %w", err)
	}

	response, err := w.Handle(ctx, sqsEvent)
	if err != nil {
		return fmt.Errorf("handler execution: %w", err)
	}
	if len(response.BatchItemFailures) > 0 {
		respJSON, _ := json.MarshalIndent(response, "", "  ")
		fmt.Fprintln(os.Stderr, string(respJSON))
	}

	logger.Info("handler execution completed",
		"records_processed", len(sqsEvent.Records),
		"failures", len(response.BatchItemFailures),
	)
	return nil
}
