package tools

import (
	"context"
	"math"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/aws"
	"github.com/versus-control/ecs-ops-agent/pkg/resolver"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// QueryToolDeps bundles the shared collaborators the query tools need
type QueryToolDeps struct {
	AWSClient *aws.Client
	Resolver  *resolver.Resolver
	Logger    *logging.Logger
}

// resolveServiceName resolves a fuzzy service name to its exact (cluster,
// service) pair. The boolean is false when no usable pair was found, either
// because the topology was unavailable or because nothing matched.
func (d *QueryToolDeps) resolveServiceName(ctx context.Context, serviceName string) (string, string, types.ResolutionResult, bool) {
	result := d.Resolver.Resolve(ctx, "", serviceName)
	if result.Status == types.StatusError || result.ClusterName == "" || result.ServiceName == "" {
		return "", "", result, false
	}
	return result.ClusterName, result.ServiceName, result, true
}

// serviceNameSchema is the input schema shared by the service-scoped tools
func serviceNameSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"service_name": map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		"required": []interface{}{"service_name"},
	}
}

// periodMinutesArg extracts the optional period_minutes argument, defaulting
// to 15. JSON numbers arrive as float64.
func periodMinutesArg(arguments map[string]interface{}) int {
	switch v := arguments["period_minutes"].(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return 15
}

// round2 rounds to two decimal places for metric presentation
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
