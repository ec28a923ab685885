package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/versus-control/ecs-ops-agent/pkg/matcher"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// stubMatcher returns scripted outcomes and counts how often it was consulted
type stubMatcher struct {
	matchOutcome        matcher.Outcome
	matchServiceOutcome matcher.Outcome

	matchCalls        int
	matchServiceCalls int
}

func (s *stubMatcher) Match(ctx context.Context, topology *types.ClusterTopology, clusterQuery, serviceQuery string) matcher.Outcome {
	s.matchCalls++
	return s.matchOutcome
}

func (s *stubMatcher) MatchService(ctx context.Context, cluster string, candidates []string, serviceQuery string) matcher.Outcome {
	s.matchServiceCalls++
	return s.matchServiceOutcome
}

// fixtureGateway returns two clusters with fixed services
func fixtureGateway() *fakeGateway {
	return &fakeGateway{
		order: []string{"prod-cluster", "test-cluster-1"},
		clusters: map[string][][]string{
			"prod-cluster":   {{"web-service", "api-service"}},
			"test-cluster-1": {{"test-service"}},
		},
	}
}

func newTestResolver(gateway TopologyGateway, semantic matcher.SemanticMatcher) *Resolver {
	return NewResolver(gateway, semantic, time.Minute, testLogger())
}

func TestResolveSemanticSuccess(t *testing.T) {
	semantic := &stubMatcher{
		matchOutcome: matcher.Outcome{Kind: matcher.Parsed, ClusterName: "prod-cluster", ServiceName: "web-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "prod", "web")
	if result.Status != types.StatusSuccess {
		t.Fatalf("status = %q, want %q", result.Status, types.StatusSuccess)
	}
	if result.ClusterName != "prod-cluster" || result.ServiceName != "web-service" {
		t.Errorf("resolved (%q, %q), want (prod-cluster, web-service)", result.ClusterName, result.ServiceName)
	}
}

func TestResolveMemoizesResults(t *testing.T) {
	semantic := &stubMatcher{
		matchOutcome: matcher.Outcome{Kind: matcher.Parsed, ClusterName: "prod-cluster", ServiceName: "web-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	first := r.Resolve(context.Background(), "", "web")
	second := r.Resolve(context.Background(), "", "web")

	if semantic.matchCalls != 1 {
		t.Errorf("matcher consulted %d times for identical queries, want 1", semantic.matchCalls)
	}
	if first != second {
		t.Errorf("memoized result differs: %+v vs %+v", first, second)
	}

	// A different query pair is a separate memo entry
	r.Resolve(context.Background(), "prod", "web")
	if semantic.matchCalls != 2 {
		t.Errorf("matcher consulted %d times for distinct queries, want 2", semantic.matchCalls)
	}
}

func TestResolveSharesTopologyAcrossQueries(t *testing.T) {
	gateway := fixtureGateway()
	r := newTestResolver(gateway, nil)

	r.Resolve(context.Background(), "prod", "")
	r.Resolve(context.Background(), "", "api")

	if gateway.listClustersCalls != 1 {
		t.Errorf("ListClusters called %d times within TTL, want 1", gateway.listClustersCalls)
	}
}

func TestResolveRepairsMissingCluster(t *testing.T) {
	// The matcher found the service but left the cluster empty; the resolver
	// adopts the owning cluster from the topology.
	semantic := &stubMatcher{
		matchOutcome: matcher.Outcome{Kind: matcher.Parsed, ClusterName: "", ServiceName: "web-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "", "web")
	if result.Status != types.StatusSuccess {
		t.Fatalf("status = %q, want %q", result.Status, types.StatusSuccess)
	}
	if result.ClusterName != "prod-cluster" {
		t.Errorf("cluster = %q, want prod-cluster", result.ClusterName)
	}
}

func TestResolveRepairsInconsistentCluster(t *testing.T) {
	semantic := &stubMatcher{
		matchOutcome: matcher.Outcome{Kind: matcher.Parsed, ClusterName: "test-cluster-1", ServiceName: "web-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "", "web")
	if result.ClusterName != "prod-cluster" {
		t.Errorf("cluster = %q, want owning cluster prod-cluster", result.ClusterName)
	}
	if result.ServiceName != "web-service" {
		t.Errorf("service = %q, want web-service", result.ServiceName)
	}
}

func TestResolveDropsUnknownService(t *testing.T) {
	semantic := &stubMatcher{
		matchOutcome: matcher.Outcome{Kind: matcher.Parsed, ClusterName: "prod-cluster", ServiceName: "ghost-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "prod", "")
	if result.Status != types.StatusSuccess {
		t.Fatalf("status = %q, want %q", result.Status, types.StatusSuccess)
	}
	if result.ServiceName != "" {
		t.Errorf("service = %q, want empty for service missing from topology", result.ServiceName)
	}
}

func TestResolveScopedServiceRepair(t *testing.T) {
	// The first pass only produced a cluster; the resolver re-matches the
	// service against that cluster's candidates.
	semantic := &stubMatcher{
		matchOutcome:        matcher.Outcome{Kind: matcher.Parsed, ClusterName: "prod-cluster", ServiceName: ""},
		matchServiceOutcome: matcher.Outcome{Kind: matcher.Parsed, ServiceName: "api-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "prod", "api")
	if semantic.matchServiceCalls != 1 {
		t.Fatalf("MatchService called %d times, want 1", semantic.matchServiceCalls)
	}
	if result.ServiceName != "api-service" {
		t.Errorf("service = %q, want api-service", result.ServiceName)
	}
	if result.Status != types.StatusSuccess {
		t.Errorf("status = %q, want %q", result.Status, types.StatusSuccess)
	}
}

func TestResolveScopedRepairFailureFallsBack(t *testing.T) {
	semantic := &stubMatcher{
		matchOutcome:        matcher.Outcome{Kind: matcher.Parsed, ClusterName: "prod-cluster", ServiceName: ""},
		matchServiceOutcome: matcher.Outcome{Kind: matcher.Malformed},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "prod", "api")
	if result.Status != types.StatusFallback {
		t.Fatalf("status = %q, want %q", result.Status, types.StatusFallback)
	}
	if result.ClusterName != "prod-cluster" || result.ServiceName != "api-service" {
		t.Errorf("resolved (%q, %q), want heuristic (prod-cluster, api-service)", result.ClusterName, result.ServiceName)
	}
}

func TestResolveFallsBackWhenMatcherFails(t *testing.T) {
	for _, kind := range []matcher.OutcomeKind{matcher.Malformed, matcher.Unavailable} {
		semantic := &stubMatcher{matchOutcome: matcher.Outcome{Kind: kind}}
		r := newTestResolver(fixtureGateway(), semantic)

		result := r.Resolve(context.Background(), "test-cluster-1", "test")
		if result.Status != types.StatusFallback {
			t.Errorf("kind %d: status = %q, want %q", kind, result.Status, types.StatusFallback)
		}
		if result.ClusterName != "test-cluster-1" || result.ServiceName != "test-service" {
			t.Errorf("kind %d: resolved (%q, %q), want (test-cluster-1, test-service)", kind, result.ClusterName, result.ServiceName)
		}
	}
}

func TestResolveWithoutMatcherUsesHeuristic(t *testing.T) {
	r := newTestResolver(fixtureGateway(), nil)

	result := r.Resolve(context.Background(), "", "web")
	if result.Status != types.StatusFallback {
		t.Fatalf("status = %q, want %q", result.Status, types.StatusFallback)
	}
	if result.ServiceName != "web-service" {
		t.Errorf("service = %q, want web-service", result.ServiceName)
	}
}

func TestResolveFallbackScopesServiceToMatchedCluster(t *testing.T) {
	r := newTestResolver(fixtureGateway(), nil)

	result := r.Resolve(context.Background(), "test-cluster-1", "service")
	if result.ClusterName != "test-cluster-1" {
		t.Fatalf("cluster = %q, want test-cluster-1", result.ClusterName)
	}
	if result.ServiceName != "test-service" {
		t.Errorf("service = %q, want test-service from the matched cluster only", result.ServiceName)
	}
}

func TestResolveTopologyErrorIsNotCached(t *testing.T) {
	gateway := fixtureGateway()
	gateway.listClustersErr = errors.New("access denied")
	r := newTestResolver(gateway, nil)

	result := r.Resolve(context.Background(), "prod", "")
	if result.Status != types.StatusError {
		t.Fatalf("status = %q, want %q", result.Status, types.StatusError)
	}
	if result.Message == "" {
		t.Error("error result carries no message")
	}

	// Same query succeeds once the topology is reachable again
	gateway.listClustersErr = nil
	retry := r.Resolve(context.Background(), "prod", "")
	if retry.Status != types.StatusFallback {
		t.Errorf("retry status = %q, want %q", retry.Status, types.StatusFallback)
	}
	if retry.ClusterName != "prod-cluster" {
		t.Errorf("retry cluster = %q, want prod-cluster", retry.ClusterName)
	}
}

func TestResolveMembershipConsistency(t *testing.T) {
	// Whatever path produced the answer, a non-empty pair must be consistent
	// with the topology.
	semantic := &stubMatcher{
		matchOutcome: matcher.Outcome{Kind: matcher.Parsed, ClusterName: "test-cluster-1", ServiceName: "api-service"},
	}
	r := newTestResolver(fixtureGateway(), semantic)

	result := r.Resolve(context.Background(), "test", "api")
	if result.ClusterName != "" && result.ServiceName != "" {
		topology, err := r.topology.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		found := false
		for _, svc := range topology.ServicesOf(result.ClusterName) {
			if svc == result.ServiceName {
				found = true
			}
		}
		if !found {
			t.Errorf("service %q not in cluster %q", result.ServiceName, result.ClusterName)
		}
	}
}
