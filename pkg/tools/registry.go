package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
)

// ToolRegistryImpl implements the ToolRegistry interface
type ToolRegistryImpl struct {
	tools    map[string]interfaces.MCPTool
	category map[string][]interfaces.MCPTool
	mutex    sync.RWMutex
	logger   *logging.Logger
}

// NewToolRegistry creates a new tool registry
func NewToolRegistry(logger *logging.Logger) interfaces.ToolRegistry {
	return &ToolRegistryImpl{
		tools:    make(map[string]interfaces.MCPTool),
		category: make(map[string][]interfaces.MCPTool),
		logger:   logger,
	}
}

// Register adds a tool to the registry
func (r *ToolRegistryImpl) Register(tool interfaces.MCPTool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = tool

	// Add to category index
	category := tool.Category()
	r.category[category] = append(r.category[category], tool)

	r.logger.WithField("toolName", name).WithField("category", category).Info("Registered MCP tool")
	return nil
}

// Unregister removes a tool from the registry
func (r *ToolRegistryImpl) Unregister(name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	tool, exists := r.tools[name]
	if !exists {
		return fmt.Errorf("tool %s not found", name)
	}

	delete(r.tools, name)

	// Remove from category index
	category := tool.Category()
	categoryTools := r.category[category]
	for i, t := range categoryTools {
		if t.Name() == name {
			r.category[category] = append(categoryTools[:i], categoryTools[i+1:]...)
			break
		}
	}

	if len(r.category[category]) == 0 {
		delete(r.category, category)
	}

	r.logger.WithField("toolName", name).Info("Unregistered MCP tool")
	return nil
}

// GetTool retrieves a tool by name
func (r *ToolRegistryImpl) GetTool(name string) (interfaces.MCPTool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools
func (r *ToolRegistryImpl) ListTools() []interfaces.MCPTool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var tools []interfaces.MCPTool
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// ListToolsByCategory returns all tools in a category
func (r *ToolRegistryImpl) ListToolsByCategory(category string) []interfaces.MCPTool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.category[category]
}

// ExecuteTool validates arguments and executes a registered tool
func (r *ToolRegistryImpl) ExecuteTool(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	tool, exists := r.GetTool(name)
	if !exists {
		return nil, fmt.Errorf("tool %s not found", name)
	}

	if err := tool.ValidateArguments(arguments); err != nil {
		return nil, fmt.Errorf("invalid arguments for tool %s: %w", name, err)
	}

	return tool.Execute(ctx, arguments)
}

// BaseTool provides common functionality for MCP tools
type BaseTool struct {
	name        string
	description string
	category    string
	inputSchema map[string]interface{}
	logger      *logging.Logger
}

// Name returns the tool name
func (b *BaseTool) Name() string {
	return b.name
}

// Description returns the tool description
func (b *BaseTool) Description() string {
	return b.description
}

// Category returns the tool category
func (b *BaseTool) Category() string {
	return b.category
}

// GetInputSchema returns the input schema
func (b *BaseTool) GetInputSchema() map[string]interface{} {
	return b.inputSchema
}

// GetLogger returns the logger for this tool
func (b *BaseTool) GetLogger() *logging.Logger {
	return b.logger
}

// ValidateArguments provides basic argument validation
func (b *BaseTool) ValidateArguments(arguments map[string]interface{}) error {
	// Basic validation - check required fields based on input schema
	if properties, ok := b.inputSchema["properties"].(map[string]interface{}); ok {
		if required, ok := b.inputSchema["required"].([]interface{}); ok {
			for _, requiredField := range required {
				fieldName := requiredField.(string)
				if _, exists := arguments[fieldName]; !exists {
					return fmt.Errorf("required field %s is missing", fieldName)
				}

				// Check field type if specified
				if fieldSchema, ok := properties[fieldName].(map[string]interface{}); ok {
					if expectedType, ok := fieldSchema["type"].(string); ok {
						if !b.validateType(arguments[fieldName], expectedType) {
							return fmt.Errorf("field %s has invalid type, expected %s", fieldName, expectedType)
						}
					}
				}
			}
		}
	}

	return nil
}

// Helper method to validate types
func (b *BaseTool) validateType(value interface{}, expectedType string) bool {
	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	default:
		return true // Unknown type, assume valid
	}
}

// CreateSuccessResponse creates a standardized success response
func (b *BaseTool) CreateSuccessResponse(data map[string]interface{}) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"success": true,
	}
	for key, value := range data {
		response[key] = value
	}

	jsonBytes, err := json.Marshal(response)
	if err != nil {
		b.logger.WithError(err).Error("Failed to marshal success response")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(`{"success": true, "error": "failed to marshal response data"}`),
			},
		}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(jsonBytes)),
		},
	}, nil
}

// CreateErrorResponse creates a standardized error response for tool actions
func (b *BaseTool) CreateErrorResponse(message string) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	jsonBytes, _ := json.Marshal(errorData)

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.NewTextContent(string(jsonBytes)),
		},
	}, nil
}
