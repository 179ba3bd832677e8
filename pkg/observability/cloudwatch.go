package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used for metrics
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes dispatch metrics to CloudWatch
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordDispatch sends a latency and a count datum per request
func (m *Metrics) RecordDispatch(ctx context.Context, d Dispatch) {
	if m == nil || m.client == nil {
		return
	}

	outcome := "success"
	if d.Failed {
		outcome = "failure"
	}
	dimensions := []types.Dimension{
		{Name: aws.String("Module"), Value: aws.String(d.Module)},
		{Name: aws.String("Action"), Value: aws.String(d.Action)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
		{Name: aws.String("Status"), Value: aws.String(strconv.Itoa(d.Status))},
	}
	now := time.Now()

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("ActionLatency"),
				Dimensions: dimensions,
				Value:      aws.Float64(float64(d.Duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String("ActionCount"),
				Dimensions: dimensions,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(now),
			},
		},
	}

	// metrics never fail the request
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("Failed to send metrics", zap.Error(err))
	}
}
