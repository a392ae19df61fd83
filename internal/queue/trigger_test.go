package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"perilwatch/internal/config"
	"perilwatch/internal/types"
)

// mockSQSSender captures SendMessage calls for test assertions.
type mockSQSSender struct {
	// calls records every SendMessageInput passed to SendMessage.
	calls []*sqs.SendMessageInput
	// err is returned by SendMessage if non-nil (simulates SQS failures).
	err error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/payout-checks"

func newTestTrigger(mock *mockSQSSender) *PayoutTrigger {
	awsCfg := config.AWSConfig{
		PayoutCheckQueueURL: testQueueURL,
	}
	return NewPayoutTrigger(mock, awsCfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testMessage() types.PayoutCheckMessage {
	return types.PayoutCheckMessage{
		TraceID:      "trace_001",
		PolicyID:     "pol_123",
		StationID:    "st-1",
		Peril:        types.PerilFlood,
		DetectedAt:   time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
		LookbackDays: 30,
	}
}

func TestTriggerPayoutCheck_SendsToQueue(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	if err := trigger.TriggerPayoutCheck(context.Background(), testMessage()); err != nil {
		t.Fatalf("TriggerPayoutCheck returned unexpected error: %v", err)
	}

	if len(mock.calls) != 1 {
		t.Fatalf("expected 1 SQS call, got %d", len(mock.calls))
	}
	if *mock.calls[0].QueueUrl != testQueueURL {
		t.Errorf("expected queue URL %q, got %q", testQueueURL, *mock.calls[0].QueueUrl)
	}
}

func TestTriggerPayoutCheck_PreservesFullPayload(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	original := testMessage()
	if err := trigger.TriggerPayoutCheck(context.Background(), original); err != nil {
		t.Fatalf("TriggerPayoutCheck returned unexpected error: %v", err)
	}

	var decoded types.PayoutCheckMessage
	if err := json.Unmarshal([]byte(*mock.calls[0].MessageBody), &decoded); err != nil {
		t.Fatalf("failed to unmarshal message body: %v", err)
	}

	if decoded.TraceID != original.TraceID {
		t.Errorf("TraceID mismatch: got %q, want %q", decoded.TraceID, original.TraceID)
	}
	if decoded.PolicyID != original.PolicyID {
		t.Errorf("PolicyID mismatch: got %q, want %q", decoded.PolicyID, original.PolicyID)
	}
	if decoded.StationID != original.StationID {
		t.Errorf("StationID mismatch: got %q, want %q", decoded.StationID, original.StationID)
	}
	if decoded.Peril != original.Peril {
		t.Errorf("Peril mismatch: got %q, want %q", decoded.Peril, original.Peril)
	}
	if !decoded.DetectedAt.Equal(original.DetectedAt) {
		t.Errorf("DetectedAt mismatch: got %v, want %v", decoded.DetectedAt, original.DetectedAt)
	}
	if decoded.LookbackDays != original.LookbackDays {
		t.Errorf("LookbackDays mismatch: got %d, want %d", decoded.LookbackDays, original.LookbackDays)
	}
}

func TestTriggerPayoutCheck_GeneratesTraceIDWhenMissing(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	msg := testMessage()
	msg.TraceID = ""
	if err := trigger.TriggerPayoutCheck(context.Background(), msg); err != nil {
		t.Fatalf("TriggerPayoutCheck returned unexpected error: %v", err)
	}

	var decoded types.PayoutCheckMessage
	if err := json.Unmarshal([]byte(*mock.calls[0].MessageBody), &decoded); err != nil {
		t.Fatalf("failed to unmarshal message body: %v", err)
	}
	if decoded.TraceID == "" {
		t.Error("expected generated TraceID, got empty string")
	}
}

func TestTriggerPayoutCheck_SetsPerilMessageAttribute(t *testing.T) {
	mock := &mockSQSSender{}
	trigger := newTestTrigger(mock)

	msg := testMessage()
	msg.Peril = types.PerilDrought
	if err := trigger.TriggerPayoutCheck(context.Background(), msg); err != nil {
		t.Fatalf("TriggerPayoutCheck returned unexpected error: %v", err)
	}

	attr, ok := mock.calls[0].MessageAttributes["peril"]
	if !ok {
		t.Fatal("expected 'peril' message attribute to be set")
	}
	if *attr.StringValue != "drought" {
		t.Errorf("expected peril attribute %q, got %q", "drought", *attr.StringValue)
	}
	if *attr.DataType != "String" {
		t.Errorf("expected DataType 'String', got %q", *attr.DataType)
	}
}

func TestTriggerPayoutCheck_SQSError(t *testing.T) {
	mock := &mockSQSSender{err: fmt.Errorf("service unavailable")}
	trigger := newTestTrigger(mock)

	err := trigger.TriggerPayoutCheck(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error from TriggerPayoutCheck, got nil")
	}
	if !strings.Contains(err.Error(), "failed to send PayoutCheckMessage") {
		t.Errorf("expected error message to contain 'failed to send PayoutCheckMessage', got %q", err.Error())
	}
	if !strings.Contains(err.Error(), testQueueURL) {
		t.Errorf("expected error message to contain queue URL %q, got %q", testQueueURL, err.Error())
	}
}

func TestNewPayoutTrigger_ConfiguresQueueURL(t *testing.T) {
	awsCfg := config.AWSConfig{
		PayoutCheckQueueURL: "https://sqs.us-east-1.amazonaws.com/custom/payout-checks",
	}

	trigger := NewPayoutTrigger(&mockSQSSender{}, awsCfg, nil)

	if trigger.queueURL != awsCfg.PayoutCheckQueueURL {
		t.Errorf("queue URL mismatch: got %q, want %q", trigger.queueURL, awsCfg.PayoutCheckQueueURL)
	}
}
