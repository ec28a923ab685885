package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/versus-control/ecs-ops-agent/internal/config"
	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/aws"
	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
	"github.com/versus-control/ecs-ops-agent/pkg/resolver"
	"github.com/versus-control/ecs-ops-agent/pkg/tools"
)

type Server struct {
	mcpServer *server.MCPServer

	Config    *config.Config
	AWSClient *aws.Client
	Logger    *logging.Logger
	Resolver  *resolver.Resolver
	Registry  interfaces.ToolRegistry
}

func NewServer(cfg *config.Config, awsClient *aws.Client, nameResolver *resolver.Resolver, logger *logging.Logger) *Server {
	mcpServer := server.NewMCPServer(
		cfg.MCP.ServerName,
		cfg.MCP.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,

		Config:    cfg,
		AWSClient: awsClient,
		Logger:    logger,
		Resolver:  nameResolver,
		Registry:  tools.NewToolRegistry(logger),
	}

	s.registerServerTools()

	return s
}

// Start begins the stdio message loop for the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.Logger.Info("Starting MCP server message loop on stdio...")
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			s.Logger.Info("Shutdown signal received, stopping server")
			return ctx.Err()
		default:
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			// Handle the JSON-RPC message
			response := s.mcpServer.HandleMessage(ctx, line)

			// Write response to stdout
			if response != nil {
				responseBytes, err := json.Marshal(response)
				if err != nil {
					s.Logger.WithError(err).Error("Failed to marshal response")
					continue
				}

				os.Stdout.Write(responseBytes)
				os.Stdout.Write([]byte("\n"))
			}
		}
	}

	if err := scanner.Err(); err != nil {
		s.Logger.WithError(err).Error("Error reading from stdin")
		return err
	}

	return nil
}
