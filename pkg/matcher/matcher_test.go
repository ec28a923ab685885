package matcher

import (
	"strings"
	"testing"

	"github.com/versus-control/ecs-ops-agent/internal/config"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

func TestParseMatchResponse(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantKind    OutcomeKind
		wantCluster string
		wantService string
	}{
		{
			name:        "plain JSON",
			response:    `{"cluster_name": "prod-cluster", "service_name": "web-service"}`,
			wantKind:    Parsed,
			wantCluster: "prod-cluster",
			wantService: "web-service",
		},
		{
			name:        "JSON inside code fence",
			response:    "Here is the match:\n```json\n{\"cluster_name\": \"prod-cluster\", \"service_name\": null}\n```",
			wantKind:    Parsed,
			wantCluster: "prod-cluster",
			wantService: "",
		},
		{
			name:        "JSON wrapped in prose",
			response:    `The best match is {"cluster_name": "prod-cluster", "service_name": "api-service"} based on the names.`,
			wantKind:    Parsed,
			wantCluster: "prod-cluster",
			wantService: "api-service",
		},
		{
			name:        "null fields normalize to empty",
			response:    `{"cluster_name": null, "service_name": null}`,
			wantKind:    Parsed,
			wantCluster: "",
			wantService: "",
		},
		{
			name:        "None spelling normalizes to empty",
			response:    `{"cluster_name": "None", "service_name": "n/a"}`,
			wantKind:    Parsed,
			wantCluster: "",
			wantService: "",
		},
		{
			name:     "no JSON at all",
			response: "I could not find any matching cluster.",
			wantKind: Malformed,
		},
		{
			name:     "unbalanced braces",
			response: `{"cluster_name": "prod`,
			wantKind: Malformed,
		},
		{
			name:     "empty response",
			response: "",
			wantKind: Malformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := parseMatchResponse(tt.response)
			if outcome.Kind != tt.wantKind {
				t.Fatalf("kind = %d, want %d", outcome.Kind, tt.wantKind)
			}
			if outcome.Kind != Parsed {
				return
			}
			if outcome.ClusterName != tt.wantCluster {
				t.Errorf("cluster = %q, want %q", outcome.ClusterName, tt.wantCluster)
			}
			if outcome.ServiceName != tt.wantService {
				t.Errorf("service = %q, want %q", outcome.ServiceName, tt.wantService)
			}
		})
	}
}

func TestExtractJSONNestedBraces(t *testing.T) {
	text := `prefix {"outer": {"inner": "va}lue"}} suffix`
	got := extractJSON(text)
	want := `{"outer": {"inner": "va}lue"}}`
	if got != want {
		t.Errorf("extractJSON = %q, want %q", got, want)
	}
}

func testMatcher() *LLMMatcher {
	return &LLMMatcher{
		config:   &config.MatcherConfig{},
		settings: config.DefaultMatcherSettings(),
	}
}

func TestBuildMatchPrompt(t *testing.T) {
	topology := &types.ClusterTopology{
		Clusters: []types.ClusterEntry{
			{Name: "prod-cluster", Services: []string{"web-service", "api-service"}},
			{Name: "test-cluster-1", Services: []string{"test-service"}},
		},
	}

	m := testMatcher()
	prompt := m.buildMatchPrompt(topology, "prod", "web")

	for _, expected := range []string{
		"prod-cluster",
		"web-service",
		"test-cluster-1",
		"Cluster similar to: prod",
		"Service similar to: web",
		"cluster_name",
		"service_name",
	} {
		if !strings.Contains(prompt, expected) {
			t.Errorf("prompt missing %q", expected)
		}
	}

	// Deprioritized terms appear as avoidance instructions
	for _, term := range config.DefaultMatcherSettings().DeprioritizedTerms {
		if !strings.Contains(prompt, term) {
			t.Errorf("prompt missing deprioritized term %q", term)
		}
	}
}

func TestBuildMatchPromptOmitsEmptyCriteria(t *testing.T) {
	topology := &types.ClusterTopology{
		Clusters: []types.ClusterEntry{{Name: "prod-cluster", Services: []string{"web-service"}}},
	}

	m := testMatcher()
	prompt := m.buildMatchPrompt(topology, "", "web")

	if strings.Contains(prompt, "Cluster similar to") {
		t.Error("prompt mentions a cluster criterion for an empty cluster query")
	}
	if !strings.Contains(prompt, "Service similar to: web") {
		t.Error("prompt missing service criterion")
	}
}

func TestBuildServicePrompt(t *testing.T) {
	m := testMatcher()
	prompt := m.buildServicePrompt("prod-cluster", []string{"web-service", "api-service"}, "api")

	for _, expected := range []string{"prod-cluster", "web-service", "api-service", `"api"`, "service_name"} {
		if !strings.Contains(prompt, expected) {
			t.Errorf("prompt missing %q", expected)
		}
	}
}
