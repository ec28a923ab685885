package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// TopologyGateway is the slice of the infrastructure API the resolver needs
// to build a topology snapshot.
type TopologyGateway interface {
	// ListClusters returns the short names of all clusters
	ListClusters(ctx context.Context) ([]string, error)

	// ListServicePage returns one page of service short names for a cluster
	// plus the continuation token for the next page, if any
	ListServicePage(ctx context.Context, cluster string, nextToken *string) ([]string, *string, error)
}

// topologyCache holds the TTL-bounded cluster/service snapshot. Listing all
// clusters and paging every cluster's services is the expensive upstream
// operation; the cache is the primary cost control for repeated resolutions.
type topologyCache struct {
	gateway TopologyGateway
	ttl     time.Duration
	logger  *logging.Logger

	mu       sync.Mutex
	snapshot *types.ClusterTopology
}

func newTopologyCache(gateway TopologyGateway, ttl time.Duration, logger *logging.Logger) *topologyCache {
	return &topologyCache{
		gateway: gateway,
		ttl:     ttl,
		logger:  logger,
	}
}

// Snapshot returns the cached topology when it is younger than the TTL,
// otherwise refreshes it from the gateway. The mutex covers the whole
// check-refresh-swap sequence so a refresh either fully replaces the snapshot
// or leaves the prior one untouched. A failed refresh surfaces the error and
// keeps the previous snapshot and its baseline intact.
func (c *topologyCache) Snapshot(ctx context.Context) (*types.ClusterTopology, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.snapshot.CapturedAt) < c.ttl {
		c.logger.Debug("Returning cached cluster topology")
		return c.snapshot, nil
	}

	snapshot, err := c.refresh(ctx)
	if err != nil {
		c.logger.WithError(err).Error("Failed to refresh cluster topology")
		return nil, err
	}

	c.snapshot = snapshot
	c.logger.WithFields(map[string]interface{}{
		"clusters": snapshot.TotalClusters,
		"services": snapshot.TotalServices,
	}).Info("Refreshed cluster topology")

	return c.snapshot, nil
}

// refresh builds a fresh immutable snapshot from the gateway
func (c *topologyCache) refresh(ctx context.Context) (*types.ClusterTopology, error) {
	clusters, err := c.gateway.ListClusters(ctx)
	if err != nil {
		return nil, err
	}

	topology := &types.ClusterTopology{
		Clusters:      make([]types.ClusterEntry, 0, len(clusters)),
		TotalClusters: len(clusters),
		CapturedAt:    time.Now().UTC(),
	}

	for _, cluster := range clusters {
		var services []string
		seen := make(map[string]bool)
		var nextToken *string

		for {
			page, token, err := c.gateway.ListServicePage(ctx, cluster, nextToken)
			if err != nil {
				return nil, err
			}
			for _, svc := range page {
				if seen[svc] {
					continue
				}
				seen[svc] = true
				services = append(services, svc)
			}

			nextToken = token
			if nextToken == nil {
				break
			}
		}

		topology.Clusters = append(topology.Clusters, types.ClusterEntry{
			Name:         cluster,
			Services:     services,
			ServiceCount: len(services),
		})
		topology.TotalServices += len(services)
	}

	return topology, nil
}
