package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/matcher"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// resolutionKey identifies one distinct resolution query. Keying on a struct
// instead of an interpolated string keeps "field not supplied" from colliding
// with a cluster or service literally named after the absence marker.
type resolutionKey struct {
	Cluster string
	Service string
}

// Resolver maps fuzzy cluster/service names to exact identifiers. It owns
// both caches: the TTL-bounded topology snapshot and the process-lifetime
// memo of resolved query pairs. One Resolver is constructed at startup and
// shared by all query tools; all methods are safe for concurrent use.
type Resolver struct {
	topology *topologyCache
	matcher  matcher.SemanticMatcher
	logger   *logging.Logger

	mu      sync.RWMutex
	results map[resolutionKey]types.ResolutionResult
}

// NewResolver creates a resolver over the given gateway. The semantic matcher
// may be nil, in which case every resolution takes the deterministic
// heuristic path.
func NewResolver(gateway TopologyGateway, semantic matcher.SemanticMatcher, topologyTTL time.Duration, logger *logging.Logger) *Resolver {
	return &Resolver{
		topology: newTopologyCache(gateway, topologyTTL, logger),
		matcher:  semantic,
		logger:   logger,
		results:  make(map[resolutionKey]types.ResolutionResult),
	}
}

// Resolve finds the real cluster and service names for a possibly fuzzy,
// partial, or misspelled query pair. Either query may be empty. Empty fields
// in the result mean "no match"; only topology unavailability yields
// StatusError.
func (r *Resolver) Resolve(ctx context.Context, clusterName, serviceName string) types.ResolutionResult {
	key := resolutionKey{Cluster: clusterName, Service: serviceName}

	r.mu.RLock()
	cached, hit := r.results[key]
	r.mu.RUnlock()
	if hit {
		r.logger.WithFields(map[string]interface{}{
			"cluster_query": clusterName,
			"service_query": serviceName,
		}).Debug("Resolution cache hit")
		return cached
	}

	topology, err := r.topology.Snapshot(ctx)
	if err != nil {
		// Not cached: the next call should retry the refresh
		return types.ResolutionResult{
			Status:  types.StatusError,
			Message: "failed to get clusters and services: " + err.Error(),
		}
	}

	result, ok := r.resolveSemantic(ctx, topology, clusterName, serviceName)
	if !ok {
		result = r.resolveFallback(topology, clusterName, serviceName)
	}

	r.store(key, result)
	r.logger.LogResolution(clusterName, serviceName, result.ClusterName, result.ServiceName, string(result.Status))
	return result
}

// store memoizes a result with insert-if-absent semantics; concurrent racers
// computed the same answer for the same key.
func (r *Resolver) store(key resolutionKey, result types.ResolutionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.results[key]; !exists {
		r.results[key] = result
	}
}

// resolveSemantic runs the semantic matcher and the repair pass. The second
// return value is false when the matcher was unavailable or malformed and the
// caller must take the heuristic fallback instead.
func (r *Resolver) resolveSemantic(ctx context.Context, topology *types.ClusterTopology, clusterName, serviceName string) (types.ResolutionResult, bool) {
	if r.matcher == nil {
		return types.ResolutionResult{}, false
	}

	outcome := r.matcher.Match(ctx, topology, clusterName, serviceName)
	if outcome.Kind != matcher.Parsed {
		return types.ResolutionResult{}, false
	}

	cluster := outcome.ClusterName
	service := outcome.ServiceName

	// Repair: adopt the owning cluster when the matcher returned a service
	// with no cluster, or a cluster the service does not belong to.
	if service != "" {
		if cluster == "" || !contains(topology.ServicesOf(cluster), service) {
			if owner := topology.ClusterContaining(service); owner != "" {
				cluster = owner
			} else {
				// Service is not in the topology at all; drop it rather
				// than return a pair that violates membership.
				service = ""
			}
		}
	}

	// Repair: the caller asked for a service but the matcher only produced a
	// cluster. Re-match scoped to that cluster's service list.
	if cluster != "" && serviceName != "" && service == "" {
		candidates := topology.ServicesOf(cluster)
		if candidates == nil {
			return types.ResolutionResult{}, false
		}
		second := r.matcher.MatchService(ctx, cluster, candidates, serviceName)
		if second.Kind != matcher.Parsed {
			return types.ResolutionResult{}, false
		}
		if contains(candidates, second.ServiceName) {
			service = second.ServiceName
		}
	}

	return types.ResolutionResult{
		Status:      types.StatusSuccess,
		ClusterName: cluster,
		ServiceName: service,
	}, true
}

// resolveFallback matches cluster and service independently with the
// deterministic heuristic.
func (r *Resolver) resolveFallback(topology *types.ClusterTopology, clusterName, serviceName string) types.ResolutionResult {
	result := types.ResolutionResult{Status: types.StatusFallback}

	if clusterName != "" {
		result.ClusterName = BestMatch(clusterName, topology.ClusterNames())
	}

	if serviceName != "" {
		candidates := topology.AllServices()
		if result.ClusterName != "" {
			candidates = topology.ServicesOf(result.ClusterName)
		}
		result.ServiceName = BestMatch(serviceName, candidates)
	}

	return result
}

func contains(candidates []string, name string) bool {
	if name == "" {
		return false
	}
	for _, c := range candidates {
		if c == name {
			return true
		}
	}
	return false
}
