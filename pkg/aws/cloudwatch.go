package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// ========== CloudWatch Metric Methods ==========

// Dimension is a CloudWatch dimension name/value pair
type Dimension struct {
	Name  string
	Value string
}

func toDimensions(dimensions []Dimension) []cwtypes.Dimension {
	out := make([]cwtypes.Dimension, 0, len(dimensions))
	for _, d := range dimensions {
		out = append(out, cwtypes.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}
	return out
}

// GetMetricStatistics fetches datapoints for one metric over a time window
func (c *Client) GetMetricStatistics(ctx context.Context, namespace, metricName string, dimensions []Dimension, start, end time.Time, period time.Duration, statistics []cwtypes.Statistic) ([]cwtypes.Datapoint, error) {
	result, err := c.cloudwatch.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String(metricName),
		Dimensions: toDimensions(dimensions),
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(period.Seconds())),
		Statistics: statistics,
	})
	if err != nil {
		c.logger.WithError(err).WithField("metric", metricName).Error("Failed to get metric statistics")
		return nil, fmt.Errorf("failed to get %s statistics: %w", metricName, err)
	}

	return result.Datapoints, nil
}

// LatestDatapoint returns the datapoint with the newest timestamp, or nil
// when the metric has no data for the window.
func LatestDatapoint(datapoints []cwtypes.Datapoint) *cwtypes.Datapoint {
	var latest *cwtypes.Datapoint
	for i := range datapoints {
		dp := &datapoints[i]
		if dp.Timestamp == nil {
			continue
		}
		if latest == nil || dp.Timestamp.After(*latest.Timestamp) {
			latest = dp
		}
	}
	return latest
}

// SumDatapoints totals the Sum statistic across all datapoints
func SumDatapoints(datapoints []cwtypes.Datapoint) int64 {
	var total float64
	for _, dp := range datapoints {
		if dp.Sum != nil {
			total += *dp.Sum
		}
	}
	return int64(total)
}

// GetMetricSeries fetches a single-statistic time series via GetMetricData,
// returned as timestamp-ordered points.
func (c *Client) GetMetricSeries(ctx context.Context, namespace, metricName, stat string, dimensions []Dimension, start, end time.Time, period time.Duration) ([]types.MetricPoint, error) {
	result, err := c.cloudwatch.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		MetricDataQueries: []cwtypes.MetricDataQuery{
			{
				Id: aws.String("series"),
				MetricStat: &cwtypes.MetricStat{
					Metric: &cwtypes.Metric{
						Namespace:  aws.String(namespace),
						MetricName: aws.String(metricName),
						Dimensions: toDimensions(dimensions),
					},
					Period: aws.Int32(int32(period.Seconds())),
					Stat:   aws.String(stat),
				},
			},
		},
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
	})
	if err != nil {
		c.logger.WithError(err).WithField("metric", metricName).Error("Failed to get metric data")
		return nil, fmt.Errorf("failed to get %s data: %w", metricName, err)
	}

	if len(result.MetricDataResults) == 0 {
		return nil, nil
	}

	series := result.MetricDataResults[0]
	points := make([]types.MetricPoint, 0, len(series.Values))
	for i, value := range series.Values {
		if i >= len(series.Timestamps) {
			break
		}
		points = append(points, types.MetricPoint{
			Timestamp: series.Timestamps[i],
			Value:     value,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points, nil
}
