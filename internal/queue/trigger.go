// Package queue provides the SQS producer that dispatches payout-check
// payloads to the claim worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"perilwatch/internal/config"
	"perilwatch/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// PayoutTrigger implements types.PayoutCheckTrigger. It serializes a
// PayoutCheckMessage and sends it to the payout-checks SQS queue, where the
// claim worker picks it up for historical analysis and policy evaluation.
type PayoutTrigger struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewPayoutTrigger creates a PayoutTrigger with the given SQS client and
// configuration. It reads the queue URL from the AWSConfig.
func NewPayoutTrigger(client SQSSender, awsCfg config.AWSConfig, logger *slog.Logger) *PayoutTrigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayoutTrigger{
		client:   client,
		queueURL: awsCfg.PayoutCheckQueueURL,
		logger:   logger,
	}
}

// TriggerPayoutCheck enqueues a payout check for a single policy. A TraceID
// is generated when the caller did not supply one so the claim worker can
// always correlate its logs back to the dispatch.
func (t *PayoutTrigger) TriggerPayoutCheck(ctx context.Context, msg types.PayoutCheckMessage) error {
	if msg.TraceID == "" {
		msg.TraceID = uuid.New().String()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal PayoutCheckMessage: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(t.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"peril": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(msg.Peril)),
			},
		},
	}

	if _, err := t.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send PayoutCheckMessage to %s: %w", t.queueURL, err)
	}

	t.logger.InfoContext(ctx, "payout check message sent",
		"queue_url", t.queueURL,
		"trace_id", msg.TraceID,
		"policy_id", msg.PolicyID,
		"station_id", msg.StationID,
		"peril", string(msg.Peril),
	)

	return nil
}

var _ types.PayoutCheckTrigger = (*PayoutTrigger)(nil)
