package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Latias94/miniagent/pkg/tools"
)

// Tool adapts one remote MCP tool to the local tool contract. It holds the
// Manager handle so the server starts lazily on first call.
type Tool struct {
	manager    *Manager
	serverName string
	tool       *sdkmcp.Tool
}

func NewTool(manager *Manager, serverName string, tool *sdkmcp.Tool) *Tool {
	return &Tool{manager: manager, serverName: serverName, tool: tool}
}

// Name prefixes the remote tool name with the server name and sanitizes
// both; total length is capped at 64 characters (OpenAI function-name
// limit). A short hash of the original names is appended when
// sanitization is lossy so distinct originals stay distinct.
func (t *Tool) Name() string {
	sanitizedServer := sanitizeIdentifierComponent(t.serverName)
	sanitizedTool := sanitizeIdentifierComponent(t.tool.Name)
	full := fmt.Sprintf("mcp_%s_%s", sanitizedServer, sanitizedTool)

	lossless := strings.ToLower(t.serverName) == sanitizedServer &&
		strings.ToLower(t.tool.Name) == sanitizedTool

	const maxTotal = 64
	if lossless && len(full) <= maxTotal {
		return full
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(t.serverName + "\x00" + t.tool.Name))
	suffix := fmt.Sprintf("%08x", h.Sum32())

	base := full
	if len(base) > maxTotal-9 {
		base = strings.TrimRight(full[:maxTotal-9], "_")
	}
	return base + "_" + suffix
}

func (t *Tool) Description() string {
	desc := t.tool.Description
	if desc == "" {
		desc = fmt.Sprintf("MCP tool from %s server", t.serverName)
	}
	return fmt.Sprintf("[MCP:%s] %s", t.serverName, desc)
}

func (t *Tool) Parameters() map[string]any {
	schema := t.tool.InputSchema
	if schema == nil {
		return emptySchema()
	}

	if schemaMap, ok := schema.(map[string]any); ok {
		return schemaMap
	}

	var jsonData []byte
	if raw, ok := schema.(json.RawMessage); ok {
		jsonData = raw
	} else if b, ok := schema.([]byte); ok {
		jsonData = b
	} else {
		var err error
		jsonData, err = json.Marshal(schema)
		if err != nil {
			return emptySchema()
		}
	}

	var result map[string]any
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return emptySchema()
	}
	return result
}

func (t *Tool) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	text, err := t.manager.CallTool(ctx, t.serverName, t.tool.Name, args)
	if err != nil {
		return tools.ErrorResult(err.Error())
	}
	return tools.TextResult(text)
}

func emptySchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

// sanitizeIdentifierComponent lowercases and normalizes a string to
// [a-z0-9_-], collapsing runs of replaced characters.
func sanitizeIdentifierComponent(s string) string {
	const maxLen = 64

	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevUnderscore := false
	for _, r := range s {
		isAllowed := (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') ||
			r == '_' || r == '-'

		if !isAllowed {
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
			continue
		}

		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}

	result := strings.Trim(b.String(), "_")
	if result == "" {
		result = "unnamed"
	}
	if len(result) > maxLen {
		result = result[:maxLen]
	}
	return result
}
