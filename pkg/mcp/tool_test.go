package mcp

import (
	"encoding/json"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestToolNamePlain(t *testing.T) {
	tool := NewTool(nil, "files", &sdkmcp.Tool{Name: "read_text"})
	if got := tool.Name(); got != "mcp_files_read_text" {
		t.Errorf("Expected 'mcp_files_read_text', got %q", got)
	}
}

func TestToolNameSanitized(t *testing.T) {
	tool := NewTool(nil, "My Server!", &sdkmcp.Tool{Name: "Do Things (v2)"})
	name := tool.Name()

	if !strings.HasPrefix(name, "mcp_my_server_do_things") {
		t.Errorf("Unexpected sanitized prefix: %q", name)
	}
	// Lossy sanitization appends a disambiguating hash.
	if len(name) <= len("mcp_my_server_do_things") {
		t.Errorf("Expected hash suffix on lossy name: %q", name)
	}
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
		if !ok {
			t.Fatalf("Invalid character %q in tool name %q", r, name)
		}
	}
}

func TestToolNameDistinctAfterSanitization(t *testing.T) {
	a := NewTool(nil, "srv", &sdkmcp.Tool{Name: "do things"})
	b := NewTool(nil, "srv", &sdkmcp.Tool{Name: "do_things!"})
	if a.Name() == b.Name() {
		t.Errorf("Distinct originals collided: %q", a.Name())
	}
}

func TestToolNameLengthCap(t *testing.T) {
	long := strings.Repeat("verylongname", 10)
	tool := NewTool(nil, long, &sdkmcp.Tool{Name: long})
	name := tool.Name()
	if len(name) > 64 {
		t.Errorf("Name exceeds 64 characters: %d", len(name))
	}
}

func TestToolDescription(t *testing.T) {
	withDesc := NewTool(nil, "files", &sdkmcp.Tool{Name: "read", Description: "Reads a file"})
	if got := withDesc.Description(); got != "[MCP:files] Reads a file" {
		t.Errorf("Unexpected description: %q", got)
	}

	empty := NewTool(nil, "files", &sdkmcp.Tool{Name: "read"})
	if got := empty.Description(); got != "[MCP:files] MCP tool from files server" {
		t.Errorf("Unexpected fallback description: %q", got)
	}
}

func TestToolParametersFromRawSchema(t *testing.T) {
	raw := json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}}}`)
	tool := NewTool(nil, "files", &sdkmcp.Tool{Name: "read", InputSchema: raw})

	params := tool.Parameters()
	if params["type"] != "object" {
		t.Errorf("Unexpected schema type: %v", params["type"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok || props["path"] == nil {
		t.Errorf("Properties not decoded: %v", params)
	}
}

func TestToolParametersNilSchema(t *testing.T) {
	tool := NewTool(nil, "files", &sdkmcp.Tool{Name: "read"})
	params := tool.Parameters()
	if params["type"] != "object" {
		t.Errorf("Expected empty object schema, got %v", params)
	}
}
