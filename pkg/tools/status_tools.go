package tools

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/aws"
	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// ========== Check Service Status Tool ==========

// CheckServiceStatusTool reports a service's running/desired counts, its
// primary deployment rollout, container images, and the health of any
// attached target groups.
type CheckServiceStatusTool struct {
	*BaseTool
	deps *QueryToolDeps
}

// NewCheckServiceStatusTool creates a new service status tool
func NewCheckServiceStatusTool(deps *QueryToolDeps, logger *logging.Logger) interfaces.MCPTool {
	return &CheckServiceStatusTool{
		BaseTool: &BaseTool{
			name:        "check-service-status",
			description: "Check ECS service status with container images, target group health, and unhealthy task details",
			category:    "service-status",
			inputSchema: serviceNameSchema("Name of the ECS service to check (fuzzy names are resolved)"),
			logger:      logger,
		},
		deps: deps,
	}
}

// Execute checks the status of an ECS service
func (t *CheckServiceStatusTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	serviceName, _ := arguments["service_name"].(string)
	log := t.logger.WithFields(logrus.Fields{
		"request_id":    uuid.New().String(),
		"tool":          t.name,
		"service_query": serviceName,
	})

	cluster, service, resolution, ok := t.deps.resolveServiceName(ctx, serviceName)
	if !ok {
		log.WithField("status", string(resolution.Status)).Warn("Could not resolve service name")
		return t.CreateErrorResponse("Invalid names provided")
	}

	svc, err := t.deps.AWSClient.DescribeService(ctx, cluster, service)
	if err != nil {
		log.WithError(err).Error("Failed to check service status")
		return t.CreateErrorResponse(fmt.Sprintf("Failed to check service status: %s", err))
	}

	deployment, err := t.primaryDeploymentStatus(ctx, svc)
	if err != nil {
		return t.CreateErrorResponse(fmt.Sprintf("Failed to check service status: %s", err))
	}

	targetHealth, err := t.unhealthyTargetGroups(ctx, svc)
	if err != nil {
		return t.CreateErrorResponse(fmt.Sprintf("Failed to check service status: %s", err))
	}

	serviceHealthy := svc.RunningCount == svc.DesiredCount &&
		(deployment.Status == "COMPLETED" || deployment.Status == "IN_PROGRESS") &&
		len(targetHealth) == 0

	var unhealthyTasks []types.UnhealthyTask
	if !serviceHealthy {
		unhealthyTasks, err = t.findUnhealthyTasks(ctx, cluster, service)
		if err != nil {
			return t.CreateErrorResponse(fmt.Sprintf("Failed to check service status: %s", err))
		}
	}

	log.WithFields(logrus.Fields{
		"cluster": cluster,
		"service": service,
		"healthy": serviceHealthy,
	}).Info("Service status checked")

	response := map[string]interface{}{
		"service": service,
		"cluster": cluster,
		"status": types.ServiceStatus{
			RunningCount: svc.RunningCount,
			DesiredCount: svc.DesiredCount,
			Deployment:   deployment,
		},
	}
	if len(targetHealth) > 0 {
		response["target_health"] = targetHealth
	}
	if len(unhealthyTasks) > 0 {
		response["unhealthy_tasks"] = unhealthyTasks
	}

	return t.CreateSuccessResponse(response)
}

// primaryDeploymentStatus summarizes the PRIMARY deployment and its task
// definition's container images. Image references are masked down to the
// repository path so account-bearing registry hosts never leave the tool.
func (t *CheckServiceStatusTool) primaryDeploymentStatus(ctx context.Context, svc *ecstypes.Service) (types.DeploymentStatus, error) {
	var primary *ecstypes.Deployment
	for i := range svc.Deployments {
		if awssdk.ToString(svc.Deployments[i].Status) == "PRIMARY" {
			primary = &svc.Deployments[i]
			break
		}
	}

	if primary == nil {
		return types.DeploymentStatus{Status: "No active deployment"}, nil
	}

	status := types.DeploymentStatus{
		Status:    string(primary.RolloutState),
		Completed: primary.RunningCount,
		Pending:   primary.PendingCount,
		Failed:    primary.FailedTasks,
	}

	taskDefARN := awssdk.ToString(primary.TaskDefinition)
	if taskDefARN == "" {
		return status, nil
	}
	status.TaskDefinition = arnSuffix(taskDefARN)

	taskDef, err := t.deps.AWSClient.DescribeTaskDefinition(ctx, taskDefARN)
	if err != nil {
		return status, err
	}

	for _, container := range taskDef.ContainerDefinitions {
		image := "Unknown"
		if ref := awssdk.ToString(container.Image); ref != "" {
			image = maskImage(ref)
		}
		status.Containers = append(status.Containers, types.ContainerImage{
			Name:  awssdk.ToString(container.Name),
			Image: image,
		})
	}

	return status, nil
}

// unhealthyTargetGroups returns a health summary for every attached target
// group that has at least one non-healthy target.
func (t *CheckServiceStatusTool) unhealthyTargetGroups(ctx context.Context, svc *ecstypes.Service) ([]types.TargetGroupHealth, error) {
	var targetHealth []types.TargetGroupHealth

	for _, lb := range svc.LoadBalancers {
		if lb.TargetGroupArn == nil {
			continue
		}

		descriptions, err := t.deps.AWSClient.DescribeTargetHealth(ctx, *lb.TargetGroupArn)
		if err != nil {
			return nil, err
		}

		unhealthy := aws.UnhealthyTargets(descriptions)
		if len(unhealthy) == 0 {
			continue
		}

		targetHealth = append(targetHealth, types.TargetGroupHealth{
			HealthyCount:     len(descriptions) - len(unhealthy),
			UnhealthyCount:   len(unhealthy),
			UnhealthyTargets: unhealthy,
		})
	}

	return targetHealth, nil
}

// findUnhealthyTasks drills into the service's RUNNING tasks and collects the
// ones with containers that are not in the RUNNING state.
func (t *CheckServiceStatusTool) findUnhealthyTasks(ctx context.Context, cluster, service string) ([]types.UnhealthyTask, error) {
	taskARNs, err := t.deps.AWSClient.ListRunningTasks(ctx, cluster, service)
	if err != nil {
		return nil, err
	}
	if len(taskARNs) == 0 {
		return nil, nil
	}

	tasks, err := t.deps.AWSClient.DescribeTasks(ctx, cluster, taskARNs)
	if err != nil {
		return nil, err
	}

	var unhealthyTasks []types.UnhealthyTask
	for _, task := range tasks {
		var containers []types.UnhealthyContainer
		for _, c := range task.Containers {
			if awssdk.ToString(c.LastStatus) == "RUNNING" {
				continue
			}

			reason := awssdk.ToString(c.Reason)
			if reason == "" {
				reason = "No reason provided"
			}
			containers = append(containers, types.UnhealthyContainer{
				Name:   awssdk.ToString(c.Name),
				Status: awssdk.ToString(c.LastStatus),
				Reason: reason,
			})
		}

		if len(containers) > 0 {
			unhealthyTasks = append(unhealthyTasks, types.UnhealthyTask{
				TaskID:              arnSuffix(awssdk.ToString(task.TaskArn)),
				Status:              awssdk.ToString(task.LastStatus),
				UnhealthyContainers: containers,
			})
		}
	}

	return unhealthyTasks, nil
}

// maskImage replaces the registry host's leading segment so account ids do
// not appear in responses: "123456789.dkr.ecr..." becomes "******.dkr.ecr...".
func maskImage(image string) string {
	idx := strings.Index(image, ".")
	if idx <= 0 {
		return image
	}
	return "******" + image[idx:]
}

// arnSuffix returns the portion of an ARN after the last "/"
func arnSuffix(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}
