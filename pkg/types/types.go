package types

import "time"

// ========== Topology Types ==========

// ClusterEntry is one cluster and its service short names within a topology
// snapshot. Service names are unique within an entry.
type ClusterEntry struct {
	Name         string   `json:"name"`
	Services     []string `json:"services"`
	ServiceCount int      `json:"service_count"`
}

// ClusterTopology is a point-in-time snapshot of every cluster and its
// services. It is built fresh on each refresh and never mutated in place.
type ClusterTopology struct {
	Clusters      []ClusterEntry `json:"clusters"`
	TotalClusters int            `json:"total_clusters"`
	TotalServices int            `json:"total_services"`
	CapturedAt    time.Time      `json:"captured_at"`
}

// ServicesOf returns the service list for a cluster, or nil if the cluster is
// not part of the snapshot.
func (t *ClusterTopology) ServicesOf(cluster string) []string {
	for _, entry := range t.Clusters {
		if entry.Name == cluster {
			return entry.Services
		}
	}
	return nil
}

// ClusterNames returns the cluster names in snapshot order.
func (t *ClusterTopology) ClusterNames() []string {
	names := make([]string, 0, len(t.Clusters))
	for _, entry := range t.Clusters {
		names = append(names, entry.Name)
	}
	return names
}

// AllServices returns the union of every cluster's services in snapshot order.
func (t *ClusterTopology) AllServices() []string {
	var services []string
	for _, entry := range t.Clusters {
		services = append(services, entry.Services...)
	}
	return services
}

// ClusterContaining returns the first cluster whose service set contains the
// given service, or "" if none does.
func (t *ClusterTopology) ClusterContaining(service string) string {
	for _, entry := range t.Clusters {
		for _, svc := range entry.Services {
			if svc == service {
				return entry.Name
			}
		}
	}
	return ""
}

// ========== Resolution Types ==========

// ResolutionStatus tags how a resolution was produced
type ResolutionStatus string

const (
	// StatusSuccess means the semantic matcher produced the answer
	StatusSuccess ResolutionStatus = "success"
	// StatusFallback means the deterministic heuristic produced the answer
	StatusFallback ResolutionStatus = "fallback"
	// StatusError means topology data was unavailable
	StatusError ResolutionStatus = "error"
)

// ResolutionResult is the outcome of resolving a (cluster, service) query.
// Empty name fields mean "no match found" and are not an error; callers must
// check the names, not the status, to detect not-found.
type ResolutionResult struct {
	Status      ResolutionStatus `json:"status"`
	ClusterName string           `json:"cluster_name,omitempty"`
	ServiceName string           `json:"service_name,omitempty"`
	Message     string           `json:"message,omitempty"`
}

// ========== Service Status Types ==========

// ContainerImage is a container name and its registry-masked image reference
type ContainerImage struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// DeploymentStatus summarizes the primary deployment of a service
type DeploymentStatus struct {
	Status         string           `json:"status"`
	Completed      int32            `json:"completed"`
	Pending        int32            `json:"pending"`
	Failed         int32            `json:"failed"`
	TaskDefinition string           `json:"task_definition,omitempty"`
	Containers     []ContainerImage `json:"containers"`
}

// ServiceStatus combines running/desired counts with deployment detail
type ServiceStatus struct {
	RunningCount int32            `json:"running_count"`
	DesiredCount int32            `json:"desired_count"`
	Deployment   DeploymentStatus `json:"deployment"`
}

// UnhealthyTarget is a load balancer target that is not reporting healthy
type UnhealthyTarget struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// TargetGroupHealth summarizes target health for one target group
type TargetGroupHealth struct {
	HealthyCount     int               `json:"healthy_count"`
	UnhealthyCount   int               `json:"unhealthy_count"`
	UnhealthyTargets []UnhealthyTarget `json:"unhealthy_targets"`
}

// UnhealthyContainer is a container within a task that is not RUNNING
type UnhealthyContainer struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason"`
}

// UnhealthyTask is a running task with at least one non-running container
type UnhealthyTask struct {
	TaskID              string               `json:"task_id"`
	Status              string               `json:"status"`
	UnhealthyContainers []UnhealthyContainer `json:"unhealthy_containers"`
}

// ========== Metric Types ==========

// MetricSummary is the latest datapoint of one CloudWatch metric
type MetricSummary struct {
	Average float64 `json:"average"`
	Maximum float64 `json:"maximum"`
	Minimum float64 `json:"minimum"`
}

// MetricPoint is one timestamped metric value
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TargetHealthSummary is the healthy/total count for a target group
type TargetHealthSummary struct {
	HealthyCount     int     `json:"healthy_count"`
	TotalCount       int     `json:"total_count"`
	HealthPercentage float64 `json:"health_percentage"`
}

// RequestCounts holds HTTP status code and request count sums for a window
type RequestCounts struct {
	Count2XX  int64 `json:"2xx"`
	Count3XX  int64 `json:"3xx"`
	Count4XX  int64 `json:"4xx"`
	Count5XX  int64 `json:"5xx"`
	Total     int64 `json:"total"`
	PerTarget int64 `json:"per_target"`
}
