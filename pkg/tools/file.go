package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolvePath joins a relative path onto the workspace; absolute paths
// pass through unchanged.
func resolvePath(workspace, input string) string {
	if filepath.IsAbs(input) {
		return input
	}
	return filepath.Join(workspace, input)
}

// ReadFileTool reads a UTF-8 text file from the workspace.
type ReadFileTool struct {
	workspace string
}

func NewReadFileTool(workspace string) *ReadFileTool {
	return &ReadFileTool{workspace: workspace}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Read a text file from workspace (UTF-8)"
}

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Relative or absolute file path",
			},
		},
		"required": []any{"path"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	path, ok := stringArg(args, "path")
	if !ok {
		return ErrorResult("missing 'path'")
	}
	data, err := os.ReadFile(resolvePath(t.workspace, path))
	if err != nil {
		return ErrorResult(fmt.Sprintf("read error: %v", err))
	}
	return TextResult(string(data))
}

// WriteFileTool creates or overwrites a file, creating parent directories
// as needed.
type WriteFileTool struct {
	workspace string
}

func NewWriteFileTool(workspace string) *WriteFileTool {
	return &WriteFileTool{workspace: workspace}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Description() string {
	return "Write text to a file (create/overwrite, UTF-8)"
}

func (t *WriteFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Relative or absolute file path",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "File content (UTF-8)",
			},
		},
		"required": []any{"path"},
	}
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	path, ok := stringArg(args, "path")
	if !ok {
		return ErrorResult("missing 'path'")
	}
	content, _ := stringArg(args, "content")

	full := resolvePath(t.workspace, path)
	if parent := filepath.Dir(full); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return ErrorResult(fmt.Sprintf("write error: %v", err))
		}
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return ErrorResult(fmt.Sprintf("write error: %v", err))
	}
	return TextResult(fmt.Sprintf("wrote %d bytes to %s", len(content), full))
}

// EditFileTool replaces every occurrence of old_str with new_str inside a
// file.
type EditFileTool struct {
	workspace string
}

func NewEditFileTool(workspace string) *EditFileTool {
	return &EditFileTool{workspace: workspace}
}

func (t *EditFileTool) Name() string {
	return "edit_file"
}

func (t *EditFileTool) Description() string {
	return "Search and replace text within a file"
}

func (t *EditFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":    map[string]any{"type": "string"},
			"old_str": map[string]any{"type": "string"},
			"new_str": map[string]any{"type": "string"},
		},
		"required": []any{"path", "old_str", "new_str"},
	}
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	path, ok := stringArg(args, "path")
	if !ok {
		return ErrorResult("missing 'path'")
	}
	oldStr, ok := stringArg(args, "old_str")
	if !ok {
		return ErrorResult("missing 'old_str'")
	}
	newStr, ok := stringArg(args, "new_str")
	if !ok {
		return ErrorResult("missing 'new_str'")
	}

	full := resolvePath(t.workspace, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return ErrorResult(fmt.Sprintf("read error: %s", full))
	}
	content := string(data)
	count := strings.Count(content, oldStr)
	content = strings.ReplaceAll(content, oldStr, newStr)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return ErrorResult(fmt.Sprintf("write error: %v", err))
	}
	return TextResult(fmt.Sprintf("replaced %d occurrence(s) in %s", count, full))
}
