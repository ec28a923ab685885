package matcher

import (
	"fmt"
	"strings"

	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// buildMatchPrompt builds the full-topology matching prompt
func (m *LLMMatcher) buildMatchPrompt(topology *types.ClusterTopology, clusterQuery, serviceQuery string) string {
	var prompt strings.Builder

	prompt.WriteString(m.settings.SystemPrompt + "\n\n")
	prompt.WriteString("Given the following ECS clusters and services, find the best matching names:\n\n")

	for _, entry := range topology.Clusters {
		prompt.WriteString(fmt.Sprintf("- Cluster: %s\n  Services:\n", entry.Name))
		for _, svc := range entry.Services {
			prompt.WriteString(fmt.Sprintf("  - %s\n", svc))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("Search criteria:\n")
	if clusterQuery != "" {
		prompt.WriteString(fmt.Sprintf("- Cluster similar to: %s\n", clusterQuery))
	}
	if serviceQuery != "" {
		prompt.WriteString(fmt.Sprintf("- Service similar to: %s\n", serviceQuery))
	}

	prompt.WriteString("\nImportant Instructions:\n")
	prompt.WriteString("1. Only match a service that exists inside the matched cluster. Do not return a service that is not found within the cluster.\n")
	prompt.WriteString("2. Avoid selecting clusters that contain the following terms unless there are no other valid options:\n")
	for _, term := range m.settings.DeprioritizedTerms {
		prompt.WriteString(fmt.Sprintf("   - %q\n", term))
	}

	prompt.WriteString("\nPlease provide a JSON response:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"cluster_name\": \"best matching cluster name or null\",\n")
	prompt.WriteString("  \"service_name\": \"best matching service name or null\"\n")
	prompt.WriteString("}\n")

	return prompt.String()
}

// buildServicePrompt builds the narrower prompt scoped to one cluster's
// service list, used by the resolver's repair pass.
func (m *LLMMatcher) buildServicePrompt(cluster string, candidates []string, serviceQuery string) string {
	var prompt strings.Builder

	prompt.WriteString(m.settings.SystemPrompt + "\n\n")
	prompt.WriteString(fmt.Sprintf("Given the following services in cluster %s, find the best matching service for %q:\n", cluster, serviceQuery))
	for _, svc := range candidates {
		prompt.WriteString(fmt.Sprintf("- %s\n", svc))
	}

	prompt.WriteString("\nPlease provide a JSON response:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"service_name\": \"best matching service name or null\"\n")
	prompt.WriteString("}\n")

	return prompt.String()
}
