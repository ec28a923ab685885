package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
)

// fakeGateway serves a scripted topology and counts upstream calls
type fakeGateway struct {
	clusters map[string][][]string // cluster -> pages of service names
	order    []string

	listClustersCalls int
	listServiceCalls  int
	listClustersErr   error
}

func (f *fakeGateway) ListClusters(ctx context.Context) ([]string, error) {
	f.listClustersCalls++
	if f.listClustersErr != nil {
		return nil, f.listClustersErr
	}
	return f.order, nil
}

func (f *fakeGateway) ListServicePage(ctx context.Context, cluster string, nextToken *string) ([]string, *string, error) {
	f.listServiceCalls++

	pages := f.clusters[cluster]
	index := 0
	if nextToken != nil {
		index = int((*nextToken)[0] - '0')
	}
	if index >= len(pages) {
		return nil, nil, nil
	}

	var token *string
	if index+1 < len(pages) {
		next := string(rune('0' + index + 1))
		token = &next
	}
	return pages[index], token, nil
}

func testLogger() *logging.Logger {
	return logging.NewLogger("error", "text")
}

func TestSnapshotCachesWithinTTL(t *testing.T) {
	gateway := &fakeGateway{
		order: []string{"prod-cluster"},
		clusters: map[string][][]string{
			"prod-cluster": {{"web-service"}},
		},
	}
	cache := newTopologyCache(gateway, time.Minute, testLogger())

	first, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("first snapshot failed: %v", err)
	}
	second, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}

	if gateway.listClustersCalls != 1 {
		t.Errorf("ListClusters called %d times within TTL, want 1", gateway.listClustersCalls)
	}
	if first != second {
		t.Error("cached snapshot was rebuilt within TTL")
	}
}

func TestSnapshotRefreshesAfterTTL(t *testing.T) {
	gateway := &fakeGateway{
		order: []string{"prod-cluster"},
		clusters: map[string][][]string{
			"prod-cluster": {{"web-service"}},
		},
	}
	cache := newTopologyCache(gateway, time.Nanosecond, testLogger())

	if _, err := cache.Snapshot(context.Background()); err != nil {
		t.Fatalf("first snapshot failed: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := cache.Snapshot(context.Background()); err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}

	if gateway.listClustersCalls != 2 {
		t.Errorf("ListClusters called %d times past TTL, want 2", gateway.listClustersCalls)
	}
}

func TestSnapshotJoinsServicePages(t *testing.T) {
	gateway := &fakeGateway{
		order: []string{"prod-cluster"},
		clusters: map[string][][]string{
			"prod-cluster": {
				{"web-service", "api-service"},
				{"worker-service", "api-service"}, // duplicate across pages
			},
		},
	}
	cache := newTopologyCache(gateway, time.Minute, testLogger())

	topology, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	services := topology.ServicesOf("prod-cluster")
	want := []string{"web-service", "api-service", "worker-service"}
	if len(services) != len(want) {
		t.Fatalf("got services %v, want %v", services, want)
	}
	for i, svc := range want {
		if services[i] != svc {
			t.Errorf("services[%d] = %q, want %q", i, services[i], svc)
		}
	}
	if topology.TotalServices != 3 {
		t.Errorf("TotalServices = %d, want 3", topology.TotalServices)
	}
}

func TestSnapshotErrorKeepsPriorState(t *testing.T) {
	gateway := &fakeGateway{listClustersErr: errors.New("throttled")}
	cache := newTopologyCache(gateway, time.Minute, testLogger())

	if _, err := cache.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error from failed refresh")
	}

	// A later call retries instead of serving a half-built snapshot
	gateway.listClustersErr = nil
	gateway.order = []string{"prod-cluster"}
	gateway.clusters = map[string][][]string{"prod-cluster": {{"web-service"}}}

	topology, err := cache.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("retry snapshot failed: %v", err)
	}
	if topology.TotalClusters != 1 {
		t.Errorf("TotalClusters = %d, want 1", topology.TotalClusters)
	}
}
