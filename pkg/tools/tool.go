// Package tools defines the capability contract the agent loop dispatches
// against, the name-keyed registry, and the builtin tools (shell, file
// I/O, notes, skills).
package tools

import "context"

// Tool is a named capability invocable by the model. Execute must absorb
// every failure into the returned ToolResult, including malformed or
// missing arguments; it never panics outward and never returns an error.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) *ToolResult
}

// ToolResult is the outcome of one tool execution. Content carries the
// payload on success, Error the reason on failure.
type ToolResult struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

func TextResult(content string) *ToolResult {
	return &ToolResult{Success: true, Content: content}
}

func ErrorResult(reason string) *ToolResult {
	return &ToolResult{Success: false, Error: reason}
}

// LLMText is the payload fed back to the model for this result.
func (r *ToolResult) LLMText() string {
	if r.Success {
		return r.Content
	}
	if r.Error != "" {
		return r.Error
	}
	return "Tool execution failed"
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
