package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
	"github.com/versus-control/ecs-ops-agent/pkg/tools"
)

// registerServerTools wires the query tools to the resolver and AWS client
// and registers each with the MCP server.
func (s *Server) registerServerTools() {
	deps := &tools.QueryToolDeps{
		AWSClient: s.AWSClient,
		Resolver:  s.Resolver,
		Logger:    s.Logger,
	}

	queryTools := []interfaces.MCPTool{
		tools.NewCheckServiceStatusTool(deps, s.Logger),
		tools.NewGetServiceMetricsTool(deps, s.Logger),
		tools.NewTargetGroupResponseTimeTool(deps, s.Logger),
		tools.NewTargetGroupRequestMetricsTool(deps, s.Logger),
		tools.NewListClusterServicesTool(deps, s.Logger),
	}

	for _, tool := range queryTools {
		s.registerToolDynamic(tool)
	}
}

// registerToolDynamic registers a single tool with the MCP server, deriving
// the MCP parameter declarations from the tool's input schema.
func (s *Server) registerToolDynamic(tool interfaces.MCPTool) {
	name := tool.Name()
	description := tool.Description()

	if err := s.Registry.Register(tool); err != nil {
		s.Logger.WithError(err).WithField("toolName", name).Error("Failed to register tool")
		return
	}

	mcpOptions := []mcp.ToolOption{mcp.WithDescription(description)}

	inputSchema := tool.GetInputSchema()
	if inputSchema != nil {
		mcpOptions = append(mcpOptions, s.convertSchemaToMCPOptions(inputSchema)...)
	}

	mcpTool := mcp.NewTool(name, mcpOptions...)

	handler := s.createToolHandler(name)

	s.mcpServer.AddTool(mcpTool, handler)

	s.Logger.WithField("toolName", name).Info("Registered MCP tool with server")
}

// convertSchemaToMCPOptions converts JSON Schema to MCP tool options
func (s *Server) convertSchemaToMCPOptions(schema map[string]interface{}) []mcp.ToolOption {
	var options []mcp.ToolOption

	properties, hasProperties := schema["properties"].(map[string]interface{})
	if !hasProperties {
		return options
	}

	required, _ := schema["required"].([]interface{})
	requiredSet := make(map[string]bool)
	for _, req := range required {
		if reqStr, ok := req.(string); ok {
			requiredSet[reqStr] = true
		}
	}

	for propName, propDef := range properties {
		propMap, ok := propDef.(map[string]interface{})
		if !ok {
			continue
		}

		propType, _ := propMap["type"].(string)
		propDesc, _ := propMap["description"].(string)

		var paramOptions []mcp.PropertyOption
		if propDesc != "" {
			paramOptions = append(paramOptions, mcp.Description(propDesc))
		}
		if requiredSet[propName] {
			paramOptions = append(paramOptions, mcp.Required())
		}

		switch propType {
		case "string":
			options = append(options, mcp.WithString(propName, paramOptions...))
		case "number", "integer":
			options = append(options, mcp.WithNumber(propName, paramOptions...))
		case "boolean":
			options = append(options, mcp.WithBoolean(propName, paramOptions...))
		case "object":
			options = append(options, mcp.WithObject(propName, paramOptions...))
		case "array":
			options = append(options, mcp.WithArray(propName, paramOptions...))
		default:
			// Default to string for unknown types
			options = append(options, mcp.WithString(propName, paramOptions...))
		}
	}

	return options
}

// createToolHandler creates a handler function that delegates to the registry
func (s *Server) createToolHandler(toolName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					mcp.NewTextContent("Invalid arguments format"),
				},
			}, nil
		}

		s.Logger.LogMCPCallTool(toolName, arguments)
		return s.Registry.ExecuteTool(ctx, toolName, arguments)
	}
}
