// Package metrics emits API request telemetry to AWS CloudWatch.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"perilwatch/internal/config"
	"perilwatch/internal/core"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metric and dimension names published to CloudWatch.
const (
	metricRequestCount   = "RequestCount"
	metricRequestLatency = "RequestLatency"

	dimMethod   = "Method"
	dimEndpoint = "Endpoint"
	dimStatus   = "Status"
)

// putMetricTimeout bounds each PutMetricData call so a slow CloudWatch
// endpoint cannot pile up goroutines behind request handling.
const putMetricTimeout = 5 * time.Second

// Compile-time assertion that CloudWatchCollector implements core.MetricsCollector.
var _ core.MetricsCollector = (*CloudWatchCollector)(nil)

// CloudWatchCollector publishes per-request count and latency metrics to a
// CloudWatch namespace. It satisfies core.MetricsCollector.
//
// Metrics emitted:
//   - RequestCount: Dims {Method, Endpoint, Status} -- one per handled request
//   - RequestLatency: Dims {Method, Endpoint} -- handler duration in milliseconds
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchCollector creates a collector publishing to the configured
// metric namespace.
func NewCloudWatchCollector(client CloudWatchClient, cfg config.ObservabilityConfig, logger *slog.Logger) *CloudWatchCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchCollector{
		client:    client,
		namespace: cfg.MetricNamespace,
		logger:    logger,
	}
}

// RecordRequest emits count and latency datums for one handled request.
// Publishing is best effort: failures are logged and never surface to the
// request path.
func (c *CloudWatchCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	countDims := []cwtypes.Dimension{
		{Name: aws.String(dimMethod), Value: aws.String(method)},
		{Name: aws.String(dimEndpoint), Value: aws.String(endpoint)},
		{Name: aws.String(dimStatus), Value: aws.String(status)},
	}
	latencyDims := []cwtypes.Dimension{
		{Name: aws.String(dimMethod), Value: aws.String(method)},
		{Name: aws.String(dimEndpoint), Value: aws.String(endpoint)},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricRequestCount),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: countDims,
			},
			{
				MetricName: aws.String(metricRequestLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: latencyDims,
			},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), putMetricTimeout)
	defer cancel()

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		c.logger.Error("failed to record request metrics",
			"error", err.Error(),
			"method", method,
			"endpoint", endpoint,
			"status", status,
		)
	}
}
