package anthropic

import (
	"testing"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
)

func TestBuildParamsSeparatesSystemPrompt(t *testing.T) {
	messages := []conversation.Message{
		conversation.NewText(conversation.RoleSystem, "be helpful"),
		conversation.NewText(conversation.RoleUser, "hi"),
	}

	params := buildParams(messages, nil, "claude-test", nil)

	if len(params.System) != 1 || params.System[0].Text != "be helpful" {
		t.Errorf("System prompt not extracted: %+v", params.System)
	}
	if len(params.Messages) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(params.Messages))
	}
	if string(params.Model) != "claude-test" {
		t.Errorf("Model not set: %q", params.Model)
	}
	if params.MaxTokens != 4096 {
		t.Errorf("Expected default max tokens 4096, got %d", params.MaxTokens)
	}
}

func TestBuildParamsMergesConsecutiveToolResults(t *testing.T) {
	messages := []conversation.Message{
		conversation.NewText(conversation.RoleSystem, "s"),
		conversation.NewText(conversation.RoleUser, "go"),
		conversation.NewParts(conversation.RoleAssistant,
			conversation.ToolCallPart{ID: "c1", Name: "a", Arguments: map[string]any{}},
			conversation.ToolCallPart{ID: "c2", Name: "b", Arguments: map[string]any{}},
		),
		conversation.NewToolResult("c1", "one", false),
		conversation.NewToolResult("c2", "two", true),
	}

	params := buildParams(messages, nil, "m", nil)

	// user, assistant, merged tool results
	if len(params.Messages) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(params.Messages))
	}
	merged := params.Messages[2]
	if merged.Role != "user" {
		t.Errorf("Tool results must travel in a user turn, got %q", merged.Role)
	}
	if len(merged.Content) != 2 {
		t.Errorf("Expected 2 tool_result blocks in one turn, got %d", len(merged.Content))
	}
}

func TestTranslateTools(t *testing.T) {
	defs := []providers.ToolDefinition{{
		Type: "function",
		Function: providers.ToolFunctionDefinition{
			Name:        "read_file",
			Description: "Read a file",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string"},
				},
				"required": []any{"path"},
			},
		},
	}}

	out := translateTools(defs)
	if len(out) != 1 {
		t.Fatalf("Expected 1 tool, got %d", len(out))
	}
	tool := out[0].OfTool
	if tool == nil {
		t.Fatal("Expected a plain tool param")
	}
	if tool.Name != "read_file" {
		t.Errorf("Unexpected name: %q", tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "path" {
		t.Errorf("Required fields lost: %v", tool.InputSchema.Required)
	}
}
