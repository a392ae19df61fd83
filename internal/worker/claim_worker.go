// Package worker implements the claim worker: the SQS consumer that turns
// payout-check messages from the risk poller into approved claims.
//
// The worker is the only component that moves from alert to money. It
// re-runs the historical analysis for the policy's station and window, then
// evaluates the policy thresholds against the detected trigger events. An
// alert alone never produces a claim; only the evaluator's recommendation
// does.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"perilwatch/internal/db"
	"perilwatch/internal/risk"
	"perilwatch/internal/types"
)

// PolicyReader abstracts the single policy read the worker needs.
type PolicyReader interface {
	GetByID(ctx context.Context, id string) (*types.Policy, error)
}

// ClaimWriter abstracts claim persistence. List powers the idempotency
// check; SQS delivers at-least-once and the poller may re-detect the same
// event on consecutive cycles.
type ClaimWriter interface {
	Create(ctx context.Context, claim *types.Claim) error
	List(ctx context.Context, policyID string, status types.ClaimStatus) ([]*types.Claim, error)
}

// WeatherAnalyzer runs the historical analysis for a station.
type WeatherAnalyzer interface {
	Analyze(ctx context.Context, stationID string, analysisDate time.Time, lookbackDays int) (*types.WeatherAnalysis, error)
}

// ClaimWorker processes payout-check messages from the SQS queue.
type ClaimWorker struct {
	policies PolicyReader
	claims   ClaimWriter
	analyzer WeatherAnalyzer
	logger   *slog.Logger
	clock    types.Clock
}

// ClaimWorkerConfig holds the dependencies for creating a ClaimWorker.
type ClaimWorkerConfig struct {
	Policies PolicyReader
	Claims   ClaimWriter
	Analyzer WeatherAnalyzer
	Logger   *slog.Logger
	Clock    types.Clock
}

// NewClaimWorker creates a ClaimWorker with the given configuration.
func NewClaimWorker(cfg ClaimWorkerConfig) *ClaimWorker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	return &ClaimWorker{
		policies: cfg.Policies,
		claims:   cfg.Claims,
		analyzer: cfg.Analyzer,
		logger:   logger,
		clock:    clock,
	}
}

// Handle processes an SQS event containing one or more payout-check
// messages. Each message is processed independently; messages that fail with
// a retryable error are reported as partial batch failures so SQS redelivers
// only those.
func (w *ClaimWorker) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := w.processMessage(ctx, record); err != nil {
			w.logger.ErrorContext(ctx, "failed to process payout check",
				"message_id", record.MessageId,
				"error", err,
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

// processMessage runs the full payout-check pipeline for one message.
// Returning nil ACKs the message; returning an error requeues it.
func (w *ClaimWorker) processMessage(ctx context.Context, record events.SQSMessage) error {
	var msg types.PayoutCheckMessage
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		// Permanent parse failure; retrying cannot help.
		w.logger.ErrorContext(ctx, "malformed payout check message",
			"message_id", record.MessageId,
			"error", err,
		)
		return nil
	}

	logger := w.logger.With(
		"trace_id", msg.TraceID,
		"policy_id", msg.PolicyID,
		"station_id", msg.StationID,
		"peril", string(msg.Peril),
	)
	logger.InfoContext(ctx, "processing payout check")

	policy, err := w.policies.GetByID(ctx, msg.PolicyID)
	if err != nil {
		if isPermanent(err) {
			logger.WarnContext(ctx, "dropping payout check", "error", err)
			return nil
		}
		return err
	}

	if !policy.IsActive() {
		logger.InfoContext(ctx, "policy no longer active, skipping",
			"status", string(policy.Status),
		)
		return nil
	}

	already, err := w.hasOpenClaim(ctx, msg.PolicyID, msg.Peril)
	if err != nil {
		return err
	}
	if already {
		logger.InfoContext(ctx, "open claim already exists for peril, skipping")
		return nil
	}

	analysis, err := w.analyzer.Analyze(ctx, msg.StationID, msg.DetectedAt, msg.LookbackDays)
	if err != nil {
		if isPermanent(err) {
			logger.WarnContext(ctx, "dropping payout check", "error", err)
			return nil
		}
		return err
	}

	rec, err := risk.EvaluatePayout(policy, analysis)
	if err != nil {
		// Evaluator errors are misconfiguration (unsupported coverage or bad
		// thresholds); redelivery would hit the same wall.
		logger.WarnContext(ctx, "payout evaluation rejected policy", "error", err)
		return nil
	}
	if rec == nil {
		logger.InfoContext(ctx, "analysis does not support a payout")
		return nil
	}

	analysis.PayoutRecommendation = rec
	evidence, err := db.EncodeEvidence(analysis)
	if err != nil {
		return err
	}

	claim := &types.Claim{
		ID:          "clm_" + uuid.New().String(),
		PolicyID:    policy.ID,
		AlertType:   rec.EventType,
		ClaimAmount: rec.PayoutAmount,
		ClaimDate:   w.clock.Now(),
		Status:      types.ClaimStatusApproved,
		Evidence:    evidence,
	}
	if err := w.claims.Create(ctx, claim); err != nil {
		return err
	}

	logger.InfoContext(ctx, "claim approved",
		"claim_id", claim.ID,
		"payout_amount", rec.PayoutAmount,
		"payout_percentage", rec.PayoutPercentage,
	)
	return nil
}

// hasOpenClaim reports whether a pending or approved claim for the peril
// already exists on the policy.
func (w *ClaimWorker) hasOpenClaim(ctx context.Context, policyID string, peril types.PerilType) (bool, error) {
	for _, status := range []types.ClaimStatus{types.ClaimStatusPending, types.ClaimStatusApproved} {
		claims, err := w.claims.List(ctx, policyID, status)
		if err != nil {
			return false, err
		}
		for _, c := range claims {
			if c.AlertType == peril {
				return true, nil
			}
		}
	}
	return false, nil
}

// isPermanent reports whether the error is a client-class failure that
// redelivery cannot fix. Upstream and internal failures stay retryable.
func isPermanent(err error) bool {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	code := string(appErr.Code)
	return strings.HasPrefix(code, "validation_") ||
		strings.HasPrefix(code, "not_found_") ||
		strings.HasPrefix(code, "coverage_") ||
		strings.HasPrefix(code, "conflict_")
}
