package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/aws"
	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// serviceMetricsSchema extends the service name schema with the optional
// lookback window used by the target group tools.
func serviceMetricsSchema(description string) map[string]interface{} {
	schema := serviceNameSchema(description)
	properties := schema["properties"].(map[string]interface{})
	properties["period_minutes"] = map[string]interface{}{
		"type":        "number",
		"description": "Lookback window in minutes (default 15)",
	}
	return schema
}

// ========== Service Metrics Tool ==========

// GetServiceMetricsTool reports CPU and memory utilization for a service with
// a derived health status.
type GetServiceMetricsTool struct {
	*BaseTool
	deps *QueryToolDeps
}

// NewGetServiceMetricsTool creates a new service metrics tool
func NewGetServiceMetricsTool(deps *QueryToolDeps, logger *logging.Logger) interfaces.MCPTool {
	return &GetServiceMetricsTool{
		BaseTool: &BaseTool{
			name:        "get-service-metrics",
			description: "Get service-level CPU and memory metrics with min/max/avg and a derived health status",
			category:    "metrics",
			inputSchema: serviceNameSchema("Name of the ECS service to get metrics for (fuzzy names are resolved)"),
			logger:      logger,
		},
		deps: deps,
	}
}

// Execute fetches the latest CPU and memory utilization datapoints
func (t *GetServiceMetricsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	serviceName, _ := arguments["service_name"].(string)
	log := t.logger.WithFields(logrus.Fields{
		"request_id":    uuid.New().String(),
		"tool":          t.name,
		"service_query": serviceName,
	})

	cluster, service, resolution, ok := t.deps.resolveServiceName(ctx, serviceName)
	if !ok {
		log.WithField("status", string(resolution.Status)).Warn("Could not resolve service name")
		return t.CreateErrorResponse("Invalid service name provided")
	}

	end := time.Now().UTC()
	start := end.Add(-60 * time.Minute)
	dimensions := []aws.Dimension{
		{Name: "ClusterName", Value: cluster},
		{Name: "ServiceName", Value: service},
	}
	statistics := []cwtypes.Statistic{
		cwtypes.StatisticAverage,
		cwtypes.StatisticMaximum,
		cwtypes.StatisticMinimum,
	}

	summaries := make(map[string]*types.MetricSummary)
	for _, metricName := range []string{"CPUUtilization", "MemoryUtilization"} {
		datapoints, err := t.deps.AWSClient.GetMetricStatistics(ctx, "AWS/ECS", metricName, dimensions, start, end, 5*time.Minute, statistics)
		if err != nil {
			log.WithError(err).Error("Failed to get service metrics")
			return t.CreateErrorResponse(fmt.Sprintf("Failed to get service metrics: %s", err))
		}

		latest := aws.LatestDatapoint(datapoints)
		if latest == nil {
			continue
		}
		summaries[metricName] = &types.MetricSummary{
			Average: round2(awssdk.ToFloat64(latest.Average)),
			Maximum: round2(awssdk.ToFloat64(latest.Maximum)),
			Minimum: round2(awssdk.ToFloat64(latest.Minimum)),
		}
	}

	cpu := summaries["CPUUtilization"]
	memory := summaries["MemoryUtilization"]

	healthStatus := "Unknown"
	switch {
	case cpu == nil || memory == nil:
	case cpu.Average > 90 || memory.Average > 90:
		healthStatus = "Critical"
	case cpu.Average > 80 || memory.Average > 80:
		healthStatus = "Warning"
	default:
		healthStatus = "Healthy"
	}

	log.WithFields(logrus.Fields{
		"cluster":       cluster,
		"service":       service,
		"health_status": healthStatus,
	}).Info("Service metrics retrieved")

	return t.CreateSuccessResponse(map[string]interface{}{
		"service": service,
		"cluster": cluster,
		"metrics": map[string]interface{}{
			"cpu":    cpu,
			"memory": memory,
		},
		"health_status": healthStatus,
	})
}

// ========== Target Group Response Time Tool ==========

// TargetGroupResponseTimeTool reports TargetResponseTime for the service's
// first target group as current/max/min latency in milliseconds.
type TargetGroupResponseTimeTool struct {
	*BaseTool
	deps *QueryToolDeps
}

// NewTargetGroupResponseTimeTool creates a new response time tool
func NewTargetGroupResponseTimeTool(deps *QueryToolDeps, logger *logging.Logger) interfaces.MCPTool {
	return &TargetGroupResponseTimeTool{
		BaseTool: &BaseTool{
			name:        "get-target-group-response-time",
			description: "Get target group response time summary (current/max/min in milliseconds) for an ECS service",
			category:    "metrics",
			inputSchema: serviceMetricsSchema("Name of the ECS service to get response times for (fuzzy names are resolved)"),
			logger:      logger,
		},
		deps: deps,
	}
}

// Execute fetches the TargetResponseTime series for the service's target group
func (t *TargetGroupResponseTimeTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	serviceName, _ := arguments["service_name"].(string)
	periodMinutes := periodMinutesArg(arguments)
	log := t.logger.WithFields(logrus.Fields{
		"request_id":     uuid.New().String(),
		"tool":           t.name,
		"service_query":  serviceName,
		"period_minutes": periodMinutes,
	})

	cluster, service, resolution, ok := t.deps.resolveServiceName(ctx, serviceName)
	if !ok {
		log.WithField("status", string(resolution.Status)).Warn("Could not resolve service name")
		return t.CreateErrorResponse("Invalid service name provided")
	}

	svc, err := t.deps.AWSClient.DescribeService(ctx, cluster, service)
	if err != nil {
		log.WithError(err).Error("Failed to get response time metrics")
		return t.CreateErrorResponse(fmt.Sprintf("Failed to get response time metrics: %s", err))
	}

	if len(svc.LoadBalancers) == 0 || svc.LoadBalancers[0].TargetGroupArn == nil {
		return t.CreateErrorResponse("No target group found for this service")
	}
	targetGroupARN := *svc.LoadBalancers[0].TargetGroupArn

	info, err := t.deps.AWSClient.DescribeTargetGroup(ctx, targetGroupARN)
	if err != nil {
		return t.CreateErrorResponse(fmt.Sprintf("Failed to get response time metrics: %s", err))
	}

	descriptions, err := t.deps.AWSClient.DescribeTargetHealth(ctx, targetGroupARN)
	if err != nil {
		return t.CreateErrorResponse(fmt.Sprintf("Failed to get response time metrics: %s", err))
	}
	health := aws.TargetHealthCounts(descriptions)
	health.HealthPercentage = math.Round(health.HealthPercentage*10) / 10

	end := time.Now().UTC()
	start := end.Add(-time.Duration(periodMinutes) * time.Minute)
	dimensions := []aws.Dimension{
		{Name: "LoadBalancer", Value: info.LoadBalancerDimension},
		{Name: "TargetGroup", Value: info.TargetGroupDimension},
	}

	points, err := t.deps.AWSClient.GetMetricSeries(ctx, "AWS/ApplicationELB", "TargetResponseTime", "Average", dimensions, start, end, 5*time.Minute)
	if err != nil {
		return t.CreateErrorResponse(fmt.Sprintf("Failed to get response time metrics: %s", err))
	}

	if len(points) == 0 {
		return t.CreateSuccessResponse(map[string]interface{}{
			"status":  "warning",
			"message": "No response time data available",
		})
	}

	latest := points[len(points)-1]
	maxPoint, minPoint := points[0], points[0]
	for _, p := range points[1:] {
		if p.Value > maxPoint.Value {
			maxPoint = p
		}
		if p.Value < minPoint.Value {
			minPoint = p
		}
	}

	log.WithFields(logrus.Fields{
		"cluster": cluster,
		"service": service,
	}).Info("Response time metrics retrieved")

	return t.CreateSuccessResponse(map[string]interface{}{
		"service_name": service,
		"cluster_name": cluster,
		"response_times_ms": map[string]interface{}{
			"current_average": round2(latest.Value * 1000),
			"maximum":         describePoint(maxPoint, end),
			"minimum":         describePoint(minPoint, end),
		},
		"target_health": health,
		"time_range":    fmt.Sprintf("Last %d minutes", periodMinutes),
	})
}

// describePoint renders one latency datapoint in milliseconds with its
// timestamp and how long ago it was observed.
func describePoint(point types.MetricPoint, end time.Time) map[string]interface{} {
	return map[string]interface{}{
		"value":     round2(point.Value * 1000),
		"timestamp": point.Timestamp.UTC().Format("2006-01-02 15:04:05") + " UTC",
		"time_ago":  fmt.Sprintf("%d minutes ago", int(end.Sub(point.Timestamp).Minutes())),
	}
}

// ========== Target Group Request Metrics Tool ==========

// TargetGroupRequestMetricsTool reports HTTP status code counts and request
// totals for every target group attached to a service.
type TargetGroupRequestMetricsTool struct {
	*BaseTool
	deps *QueryToolDeps
}

// NewTargetGroupRequestMetricsTool creates a new request metrics tool
func NewTargetGroupRequestMetricsTool(deps *QueryToolDeps, logger *logging.Logger) interfaces.MCPTool {
	return &TargetGroupRequestMetricsTool{
		BaseTool: &BaseTool{
			name:        "get-target-group-request-metrics",
			description: "Get HTTP status code counts and request totals for all target groups of an ECS service",
			category:    "metrics",
			inputSchema: serviceMetricsSchema("Name of the ECS service to get request metrics for (fuzzy names are resolved)"),
			logger:      logger,
		},
		deps: deps,
	}
}

// Execute sums request and status code metrics across the lookback window
func (t *TargetGroupRequestMetricsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	serviceName, _ := arguments["service_name"].(string)
	periodMinutes := periodMinutesArg(arguments)
	log := t.logger.WithFields(logrus.Fields{
		"request_id":     uuid.New().String(),
		"tool":           t.name,
		"service_query":  serviceName,
		"period_minutes": periodMinutes,
	})

	cluster, service, resolution, ok := t.deps.resolveServiceName(ctx, serviceName)
	if !ok {
		log.WithField("status", string(resolution.Status)).Warn("Could not resolve service name")
		return t.CreateErrorResponse("Invalid service name provided")
	}

	svc, err := t.deps.AWSClient.DescribeService(ctx, cluster, service)
	if err != nil {
		log.WithError(err).Error("Failed to get target group metrics")
		return t.CreateErrorResponse(fmt.Sprintf("Failed to get target group metrics: %s", err))
	}

	if len(svc.LoadBalancers) == 0 {
		return t.CreateErrorResponse("No target groups found for this service")
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(periodMinutes) * time.Minute)

	var targetGroups []map[string]interface{}
	var totals types.RequestCounts

	for _, lb := range svc.LoadBalancers {
		if lb.TargetGroupArn == nil {
			continue
		}

		info, err := t.deps.AWSClient.DescribeTargetGroup(ctx, *lb.TargetGroupArn)
		if err != nil {
			return t.CreateErrorResponse(fmt.Sprintf("Failed to get target group metrics: %s", err))
		}

		counts, err := t.requestCounts(ctx, info, start, end, periodMinutes)
		if err != nil {
			return t.CreateErrorResponse(fmt.Sprintf("Failed to get target group metrics: %s", err))
		}

		descriptions, err := t.deps.AWSClient.DescribeTargetHealth(ctx, *lb.TargetGroupArn)
		if err != nil {
			return t.CreateErrorResponse(fmt.Sprintf("Failed to get target group metrics: %s", err))
		}

		targetGroups = append(targetGroups, map[string]interface{}{
			"target_group_name": info.TargetGroupDimension,
			"metrics": map[string]interface{}{
				"status_codes": map[string]interface{}{
					"2xx": counts.Count2XX,
					"3xx": counts.Count3XX,
					"4xx": counts.Count4XX,
					"5xx": counts.Count5XX,
				},
				"requests": map[string]interface{}{
					"total":      counts.Total,
					"per_target": counts.PerTarget,
				},
				"target_health": aws.TargetHealthCounts(descriptions),
			},
		})

		totals.Count2XX += counts.Count2XX
		totals.Count3XX += counts.Count3XX
		totals.Count4XX += counts.Count4XX
		totals.Count5XX += counts.Count5XX
		totals.Total += counts.Total
	}

	log.WithFields(logrus.Fields{
		"cluster":       cluster,
		"service":       service,
		"target_groups": len(targetGroups),
	}).Info("Target group request metrics retrieved")

	return t.CreateSuccessResponse(map[string]interface{}{
		"service_name":   service,
		"cluster_name":   cluster,
		"period_minutes": periodMinutes,
		"target_groups":  targetGroups,
		"aggregated_metrics": map[string]interface{}{
			"2xx":            totals.Count2XX,
			"3xx":            totals.Count3XX,
			"4xx":            totals.Count4XX,
			"5xx":            totals.Count5XX,
			"total_requests": totals.Total,
		},
		"timestamp": end.Format(time.RFC3339),
	})
}

// requestCounts sums the Sum statistic of every request metric for one target
// group over the lookback window. The period spans the whole window so each
// metric yields at most one datapoint.
func (t *TargetGroupRequestMetricsTool) requestCounts(ctx context.Context, info *aws.TargetGroupInfo, start, end time.Time, periodMinutes int) (types.RequestCounts, error) {
	dimensions := []aws.Dimension{
		{Name: "LoadBalancer", Value: info.LoadBalancerDimension},
		{Name: "TargetGroup", Value: info.TargetGroupDimension},
	}
	period := time.Duration(periodMinutes) * time.Minute
	statistics := []cwtypes.Statistic{cwtypes.StatisticSum}

	var counts types.RequestCounts
	for _, m := range []struct {
		metric string
		field  *int64
	}{
		{"HTTPCode_Target_2XX_Count", &counts.Count2XX},
		{"HTTPCode_Target_3XX_Count", &counts.Count3XX},
		{"HTTPCode_Target_4XX_Count", &counts.Count4XX},
		{"HTTPCode_Target_5XX_Count", &counts.Count5XX},
		{"RequestCount", &counts.Total},
		{"RequestCountPerTarget", &counts.PerTarget},
	} {
		datapoints, err := t.deps.AWSClient.GetMetricStatistics(ctx, "AWS/ApplicationELB", m.metric, dimensions, start, end, period, statistics)
		if err != nil {
			return types.RequestCounts{}, err
		}
		*m.field = aws.SumDatapoints(datapoints)
	}

	return counts, nil
}
