package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
	"github.com/versus-control/ecs-ops-agent/pkg/interfaces"
)

type fakeTool struct {
	*BaseTool
	executions int
}

func (f *fakeTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	f.executions++
	return f.CreateSuccessResponse(map[string]interface{}{"ok": true})
}

func newFakeTool(name string) *fakeTool {
	return &fakeTool{
		BaseTool: &BaseTool{
			name:        name,
			description: "fake tool for registry tests",
			category:    "testing",
			inputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"service_name": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"service_name"},
			},
			logger: logging.NewLogger("error", "text"),
		},
	}
}

func newTestRegistry() interfaces.ToolRegistry {
	return NewToolRegistry(logging.NewLogger("error", "text"))
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := newTestRegistry()
	tool := newFakeTool("check-service-status")

	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := registry.Register(tool); err == nil {
		t.Error("duplicate registration did not fail")
	}

	got, exists := registry.GetTool("check-service-status")
	if !exists {
		t.Fatal("registered tool not found")
	}
	if got.Name() != "check-service-status" {
		t.Errorf("Name() = %q", got.Name())
	}

	byCategory := registry.ListToolsByCategory("testing")
	if len(byCategory) != 1 {
		t.Errorf("ListToolsByCategory returned %d tools, want 1", len(byCategory))
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := newTestRegistry()
	tool := newFakeTool("list-cluster-services")

	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := registry.Unregister("list-cluster-services"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if _, exists := registry.GetTool("list-cluster-services"); exists {
		t.Error("tool still present after Unregister")
	}
	if err := registry.Unregister("list-cluster-services"); err == nil {
		t.Error("unregistering a missing tool did not fail")
	}
}

func TestRegistryExecuteValidatesArguments(t *testing.T) {
	registry := newTestRegistry()
	tool := newFakeTool("get-service-metrics")

	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := registry.ExecuteTool(context.Background(), "get-service-metrics", map[string]interface{}{}); err == nil {
		t.Error("execution with missing required argument did not fail")
	}
	if tool.executions != 0 {
		t.Errorf("tool executed %d times despite invalid arguments", tool.executions)
	}

	if _, err := registry.ExecuteTool(context.Background(), "get-service-metrics", map[string]interface{}{"service_name": 42}); err == nil {
		t.Error("execution with wrongly typed argument did not fail")
	}

	result, err := registry.ExecuteTool(context.Background(), "get-service-metrics", map[string]interface{}{"service_name": "web"})
	if err != nil {
		t.Fatalf("ExecuteTool failed: %v", err)
	}
	if result == nil || tool.executions != 1 {
		t.Error("tool was not executed for valid arguments")
	}

	if _, err := registry.ExecuteTool(context.Background(), "no-such-tool", map[string]interface{}{}); err == nil {
		t.Error("executing an unknown tool did not fail")
	}
}
