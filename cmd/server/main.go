package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/versus-control/ecs-ops-agent/internal/config"
	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/aws"
	"github.com/versus-control/ecs-ops-agent/pkg/matcher"
	"github.com/versus-control/ecs-ops-agent/pkg/mcp"
	"github.com/versus-control/ecs-ops-agent/pkg/resolver"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting ECS Ops MCP Server...")

	// Initialize AWS client
	awsClient, err := aws.NewClient(cfg.AWS.Region, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize AWS client")
	}

	// Test AWS connectivity
	if err := awsClient.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("AWS health check failed")
	}
	logger.Info("AWS connectivity verified")

	// Load matcher instruction settings
	loader := config.NewConfigLoader("settings")
	settings, err := loader.LoadMatcherSettings()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load matcher settings")
	}

	// Initialize the semantic matcher. A failure here is not fatal: the
	// resolver falls back to deterministic heuristic matching.
	var semantic matcher.SemanticMatcher
	llmMatcher, err := matcher.NewLLMMatcher(&cfg.Matcher, settings, logger)
	if err != nil {
		logger.WithError(err).Warn("Semantic matcher unavailable, running in heuristic fallback mode")
	} else {
		semantic = llmMatcher
	}

	// Build the name resolver over the topology cache
	topologyTTL := time.Duration(cfg.Resolver.TopologyTTLSeconds) * time.Second
	nameResolver := resolver.NewResolver(awsClient, semantic, topologyTTL, logger)

	// Create our MCP server wrapper (tools are registered automatically)
	mcpServer := mcp.NewServer(cfg, awsClient, nameResolver, logger)

	logger.WithField("server_name", cfg.MCP.ServerName).
		WithField("version", cfg.MCP.Version).
		Info("MCP server configured successfully")

	// Start the server
	logger.Info("Starting MCP server...")
	if err := mcpServer.Start(ctx); err != nil && err != context.Canceled {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("MCP server shutdown complete")
}
