package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// ========== List Cluster Services Tool ==========

// ListClusterServicesTool lists every service running in an ECS cluster
type ListClusterServicesTool struct {
	*BaseTool
	deps *QueryToolDeps
}

// NewListClusterServicesTool creates a new cluster service listing tool
func NewListClusterServicesTool(deps *QueryToolDeps, logger *logging.Logger) interfaces.MCPTool {
	return &ListClusterServicesTool{
		BaseTool: &BaseTool{
			name:        "list-cluster-services",
			description: "List all services in an ECS cluster by name",
			category:    "service-status",
			inputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cluster_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the ECS cluster to list services for (fuzzy names are resolved)",
					},
				},
				"required": []interface{}{"cluster_name"},
			},
			logger: logger,
		},
		deps: deps,
	}
}

// Execute lists the services of the resolved cluster
func (t *ListClusterServicesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	clusterName, _ := arguments["cluster_name"].(string)
	log := t.logger.WithFields(logrus.Fields{
		"request_id":    uuid.New().String(),
		"tool":          t.name,
		"cluster_query": clusterName,
	})

	resolution := t.deps.Resolver.Resolve(ctx, clusterName, "")
	if resolution.Status == types.StatusError || resolution.ClusterName == "" {
		log.WithField("status", string(resolution.Status)).Warn("Could not resolve cluster name")
		return t.CreateErrorResponse("Invalid cluster name provided")
	}
	cluster := resolution.ClusterName

	services, err := t.deps.AWSClient.ListServices(ctx, cluster)
	if err != nil {
		log.WithError(err).Error("Failed to list cluster services")
		return t.CreateErrorResponse(fmt.Sprintf("Failed to get ECS services: %s", err))
	}

	log.WithFields(logrus.Fields{
		"cluster":       cluster,
		"service_count": len(services),
	}).Info("Cluster services listed")

	return t.CreateSuccessResponse(map[string]interface{}{
		"cluster":       cluster,
		"services":      services,
		"service_count": len(services),
	})
}
