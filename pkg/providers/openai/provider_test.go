package openai

import (
	"testing"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
)

func TestBuildChatMessagesRoles(t *testing.T) {
	messages := []conversation.Message{
		conversation.NewText(conversation.RoleSystem, "sys"),
		conversation.NewText(conversation.RoleUser, "question"),
		conversation.NewText(conversation.RoleAssistant, "answer"),
	}

	out := buildChatMessages(messages)
	if len(out) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(out))
	}
	if out[0].OfSystem == nil {
		t.Error("Expected a system message first")
	}
	if out[1].OfUser == nil {
		t.Error("Expected a user message second")
	}
	if out[2].OfAssistant == nil {
		t.Error("Expected an assistant message third")
	}
}

func TestBuildAssistantMessageWithToolCalls(t *testing.T) {
	msg := conversation.NewParts(conversation.RoleAssistant,
		conversation.TextPart{Text: "checking"},
		conversation.ToolCallPart{
			ID:        "call_9",
			Name:      "bash",
			Arguments: map[string]any{"command": "ls"},
		},
	)

	out := buildAssistantMessage(msg)
	assistant := out.OfAssistant
	if assistant == nil {
		t.Fatal("Expected an assistant param")
	}
	if assistant.Content.OfString.Value != "checking" {
		t.Errorf("Text content lost: %+v", assistant.Content)
	}
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(assistant.ToolCalls))
	}
	fn := assistant.ToolCalls[0].OfFunction
	if fn == nil || fn.ID != "call_9" || fn.Function.Name != "bash" {
		t.Errorf("Tool call mistranslated: %+v", assistant.ToolCalls[0])
	}
	if fn.Function.Arguments != `{"command":"ls"}` {
		t.Errorf("Arguments not serialized: %q", fn.Function.Arguments)
	}
}

func TestBuildToolMessagesOnePerResult(t *testing.T) {
	msg := conversation.NewToolResult("call_1", "done", false)

	out := buildToolMessages(msg)
	if len(out) != 1 {
		t.Fatalf("Expected 1 tool message, got %d", len(out))
	}
	tool := out[0].OfTool
	if tool == nil {
		t.Fatal("Expected a tool param")
	}
	if tool.ToolCallID != "call_1" {
		t.Errorf("Call ID lost: %q", tool.ToolCallID)
	}
}

func TestBuildChatToolsSkipsUnnamed(t *testing.T) {
	defs := []providers.ToolDefinition{
		{Type: "function", Function: providers.ToolFunctionDefinition{Name: "echo"}},
		{Type: "function", Function: providers.ToolFunctionDefinition{Name: ""}},
	}

	out := buildChatTools(defs)
	if len(out) != 1 {
		t.Fatalf("Expected unnamed tools to be skipped, got %d entries", len(out))
	}
	if fn := out[0].OfFunction; fn == nil || fn.Function.Name != "echo" {
		t.Errorf("Tool mistranslated: %+v", out[0])
	}
}
