package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/versus-control/ecs-ops-agent/internal/config"
	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// ========== Outcome Types ==========

// OutcomeKind tags how a match attempt ended
type OutcomeKind int

const (
	// Parsed means the model answered with a well-formed match structure.
	// Both name fields may still be empty when nothing matched.
	Parsed OutcomeKind = iota
	// Malformed means the model answered but the content was not the
	// expected structure
	Malformed
	// Unavailable means the model could not be reached or timed out
	Unavailable
)

// Outcome is the validated result of one semantic match attempt. It is the
// only shape that crosses the adapter boundary; the adapter never returns a
// Go error to its callers.
type Outcome struct {
	Kind        OutcomeKind
	ClusterName string
	ServiceName string
}

// SemanticMatcher matches fuzzy cluster/service queries against a topology
// snapshot
type SemanticMatcher interface {
	// Match asks for the best cluster and service for the supplied queries
	// across the whole topology. Empty query fields are omitted from the
	// request.
	Match(ctx context.Context, topology *types.ClusterTopology, clusterQuery, serviceQuery string) Outcome

	// MatchService asks for the best service for serviceQuery among the
	// services of a single, already-resolved cluster.
	MatchService(ctx context.Context, cluster string, candidates []string, serviceQuery string) Outcome
}

// ========== LLM-backed Matcher ==========

// LLMMatcher implements SemanticMatcher on top of a langchaingo model
type LLMMatcher struct {
	llm      llms.Model
	config   *config.MatcherConfig
	settings *config.MatcherSettings
	logger   *logging.Logger
}

// NewLLMMatcher initializes the appropriate LLM based on the provider
// configuration and wraps it as a SemanticMatcher.
func NewLLMMatcher(matcherConfig *config.MatcherConfig, settings *config.MatcherSettings, logger *logging.Logger) (*LLMMatcher, error) {
	llm, err := initializeLLM(matcherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &LLMMatcher{
		llm:      llm,
		config:   matcherConfig,
		settings: settings,
		logger:   logger,
	}, nil
}

// initializeLLM initializes the LLM for the configured provider
func initializeLLM(matcherConfig *config.MatcherConfig, logger *logging.Logger) (llms.Model, error) {
	provider := strings.ToLower(matcherConfig.Provider)

	logger.WithFields(map[string]interface{}{
		"provider": provider,
		"model":    matcherConfig.Model,
	}).Info("Initializing LLM")

	switch provider {
	case "openai":
		if matcherConfig.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required for provider 'openai'")
		}
		llm, err := openai.New(
			openai.WithToken(matcherConfig.OpenAIAPIKey),
			openai.WithModel(matcherConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		return llm, nil

	case "gemini", "googleai":
		if matcherConfig.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key is required for provider 'gemini'")
		}
		llm, err := googleai.New(
			context.Background(),
			googleai.WithAPIKey(matcherConfig.GeminiAPIKey),
			googleai.WithDefaultModel(matcherConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return llm, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s. Supported providers: openai, gemini", provider)
	}
}

// Match implements SemanticMatcher
func (m *LLMMatcher) Match(ctx context.Context, topology *types.ClusterTopology, clusterQuery, serviceQuery string) Outcome {
	prompt := m.buildMatchPrompt(topology, clusterQuery, serviceQuery)
	return m.invoke(ctx, prompt)
}

// MatchService implements SemanticMatcher
func (m *LLMMatcher) MatchService(ctx context.Context, cluster string, candidates []string, serviceQuery string) Outcome {
	prompt := m.buildServicePrompt(cluster, candidates, serviceQuery)
	return m.invoke(ctx, prompt)
}

// invoke calls the model and validates its answer into an Outcome
func (m *LLMMatcher) invoke(ctx context.Context, prompt string) Outcome {
	timeout := time.Duration(m.config.TimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt,
		llms.WithTemperature(m.config.Temperature),
		llms.WithMaxTokens(m.config.MaxTokens))
	if err != nil {
		m.logger.WithError(err).Warn("Semantic matcher call failed")
		return Outcome{Kind: Unavailable}
	}

	return parseMatchResponse(response)
}

// matchResponse is the JSON structure the prompt asks the model for
type matchResponse struct {
	ClusterName *string `json:"cluster_name"`
	ServiceName *string `json:"service_name"`
}

// parseMatchResponse validates model output into an Outcome. The model is
// instructed to answer pure JSON but may wrap it in prose or code fences.
func parseMatchResponse(response string) Outcome {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return Outcome{Kind: Malformed}
	}

	var parsed matchResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return Outcome{Kind: Malformed}
	}

	return Outcome{
		Kind:        Parsed,
		ClusterName: normalizeName(parsed.ClusterName),
		ServiceName: normalizeName(parsed.ServiceName),
	}
}

// normalizeName maps the model's various "no match" spellings to empty
func normalizeName(name *string) string {
	if name == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*name)
	switch strings.ToLower(trimmed) {
	case "none", "null", "n/a":
		return ""
	}
	return trimmed
}
