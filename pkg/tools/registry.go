package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Latias94/miniagent/pkg/logger"
	"github.com/Latias94/miniagent/pkg/providers"
)

// Registry maps tool names to implementations. Registration is
// last-wins; lookups are case-sensitive exact match.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// List returns registered tool names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedToolNames()
}

// Execute dispatches by name. An unregistered name is recovered locally
// as a failed result so the model can adapt; it is never a session fault.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result *ToolResult) {
	tool, ok := r.Get(name)
	if !ok {
		logger.ErrorCF("tool", "Tool not found", map[string]any{"tool": name})
		return ErrorResult(fmt.Sprintf("Unknown tool: %s", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorCF("tool", "Tool panicked", map[string]any{"tool": name, "panic": rec})
			result = ErrorResult(fmt.Sprintf("tool %s panicked: %v", name, rec))
		}
	}()

	start := time.Now()
	result = tool.Execute(ctx, args)
	duration := time.Since(start)

	if result.Success {
		logger.DebugCF("tool", "Tool execution completed", map[string]any{
			"tool":          name,
			"duration_ms":   duration.Milliseconds(),
			"result_length": len(result.Content),
		})
	} else {
		logger.WarnCF("tool", "Tool execution failed", map[string]any{
			"tool":        name,
			"duration_ms": duration.Milliseconds(),
			"error":       result.Error,
		})
	}
	return result
}

// sortedToolNames keeps definition order deterministic so identical
// registries always advertise identical schemas (prefix-cache friendly).
func (r *Registry) sortedToolNames() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the descriptor list advertised to the model.
func (r *Registry) Definitions() []providers.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedToolNames()
	defs := make([]providers.ToolDefinition, 0, len(sorted))
	for _, name := range sorted {
		t := r.tools[name]
		defs = append(defs, providers.ToolDefinition{
			Type: "function",
			Function: providers.ToolFunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
