package metrics

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace         = "PRDGen/API"
	cloudwatchTimeout = 5 * time.Second
)

// Client publishes service metrics to CloudWatch. Outside production it is
// a no-op so local runs need no AWS credentials.
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a CloudWatch metrics client for the given environment.
func NewClient(ctx context.Context, environment string) (*Client, error) {
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{enabled: false, environment: environment}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}, nil
}

// RecordAPIRequest counts one HTTP request and its latency per endpoint.
// Server errors count under APIErrors instead of APIRequests.
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	countMetric := "APIRequests"
	if statusCode >= 500 {
		countMetric = "APIErrors"
	}

	m.send(
		m.dims("Endpoint", endpoint),
		datum(countMetric, 1, types.StandardUnitCount),
		datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
	)
}

// RecordTokenUsage publishes the token counts of one generation per model.
func (m *Client) RecordTokenUsage(model string, totalTokens, inputTokens, outputTokens int64) {
	m.send(
		m.dims("Model", model),
		datum("LLMTokens/Total", float64(totalTokens), types.StandardUnitCount),
		datum("LLMTokens/Input", float64(inputTokens), types.StandardUnitCount),
		datum("LLMTokens/Output", float64(outputTokens), types.StandardUnitCount),
	)
}

// RecordDocumentGenerated counts one completed document by format and model.
func (m *Client) RecordDocumentGenerated(format, model string) {
	m.send(
		m.dims("Format", format, "Model", model),
		datum("DocumentsGenerated", 1, types.StandardUnitCount),
	)
}

// RecordGenerationDuration publishes how long one generation took, split by
// outcome.
func (m *Client) RecordGenerationDuration(duration time.Duration, success bool) {
	m.send(
		m.dims("Success", strconv.FormatBool(success)),
		datum("GenerationDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
	)
}

// send publishes the datums asynchronously in a single PutMetricData call.
func (m *Client) send(dimensions []types.Dimension, datums ...types.MetricDatum) {
	if !m.enabled || m.client == nil {
		return
	}

	now := time.Now()
	for i := range datums {
		datums[i].Timestamp = aws.Time(now)
		datums[i].Dimensions = dimensions
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cloudwatchTimeout)
		defer cancel()

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(namespace),
			MetricData: datums,
		})
		if err != nil {
			log.Printf("Failed to publish %d CloudWatch datum(s): %v", len(datums), err)
		}
	}()
}

// dims builds a dimension list from name/value pairs, always including the
// environment.
func (m *Client) dims(pairs ...string) []types.Dimension {
	dimensions := make([]types.Dimension, 0, len(pairs)/2+1)
	for i := 0; i+1 < len(pairs); i += 2 {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(pairs[i]),
			Value: aws.String(pairs[i+1]),
		})
	}
	return append(dimensions, types.Dimension{
		Name:  aws.String("Environment"),
		Value: aws.String(m.environment),
	})
}

func datum(name string, value float64, unit types.StandardUnit) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
	}
}
