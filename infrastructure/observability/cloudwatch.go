package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const metricNamespace = "FlowBuilder"

// CloudWatchRecorder emits operational metrics to CloudWatch. Writes are
// fire-and-forget; a metrics outage must never block a graph mutation.
type CloudWatchRecorder struct {
	client      *cloudwatch.Client
	environment string
	logger      *zap.Logger
}

// NewCloudWatchRecorder creates a CloudWatch-backed metrics recorder
func NewCloudWatchRecorder(client *cloudwatch.Client, environment string, logger *zap.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		client:      client,
		environment: environment,
		logger:      logger,
	}
}

// Count increments a named counter
func (r *CloudWatchRecorder) Count(ctx context.Context, name string, value float64) {
	r.put(ctx, name, value, types.StandardUnitCount)
}

// Timing records a duration in milliseconds
func (r *CloudWatchRecorder) Timing(ctx context.Context, name string, ms float64) {
	r.put(ctx, name, ms, types.StandardUnitMilliseconds)
}

func (r *CloudWatchRecorder) put(ctx context.Context, name string, value float64, unit types.StandardUnit) {
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricNamespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: []types.Dimension{
					{
						Name:  aws.String("Environment"),
						Value: aws.String(r.environment),
					},
				},
			},
		},
	})
	if err != nil {
		r.logger.Debug("Failed to put metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}

// NoopRecorder drops metrics, for development
type NoopRecorder struct{}

// Count implements the recorder interface
func (NoopRecorder) Count(ctx context.Context, name string, value float64) {}

// Timing implements the recorder interface
func (NoopRecorder) Timing(ctx context.Context, name string, ms float64) {}
