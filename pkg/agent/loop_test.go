package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
	"github.com/Latias94/miniagent/pkg/tools"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "Echoes back the text argument" }

func (echoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func (echoTool) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	text, _ := args["text"].(string)
	return tools.TextResult(text)
}

func newTestAgent(provider providers.LLMProvider, opts Options) *Agent {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = "You are a test agent."
	}
	return New(provider, opts)
}

func TestRunReturnsFinalText(t *testing.T) {
	provider := &mockProvider{
		responses: []providers.LLMResponse{
			{Content: "All done."},
		},
	}
	a := newTestAgent(provider, Options{MaxSteps: 5})
	a.AddUserMessage("say hi")

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result != "All done." {
		t.Errorf("Expected 'All done.', got %q", result)
	}
	if a.StepCount() != 0 {
		t.Errorf("Expected 0 steps for a tool-free answer, got %d", a.StepCount())
	}
}

func TestRunExecutesToolThenFinishes(t *testing.T) {
	provider := &mockProvider{
		responses: []providers.LLMResponse{
			{
				ToolCalls: []providers.ToolCall{
					{ID: "call_1", Name: "echo", Arguments: map[string]any{"text": "hi"}},
				},
			},
			{Content: "Done: hi"},
		},
	}
	a := newTestAgent(provider, Options{
		MaxSteps: 5,
		Tools:    []tools.Tool{echoTool{}},
	})
	a.AddUserMessage("echo hi back")

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result != "Done: hi" {
		t.Errorf("Expected 'Done: hi', got %q", result)
	}
	if a.StepCount() != 1 {
		t.Errorf("Expected 1 step, got %d", a.StepCount())
	}

	var toolMsgs []conversation.Message
	for _, m := range a.History() {
		if m.Role == conversation.RoleTool {
			toolMsgs = append(toolMsgs, m)
		}
	}
	if len(toolMsgs) != 1 {
		t.Fatalf("Expected 1 tool message, got %d", len(toolMsgs))
	}
	results := toolResults(toolMsgs[0])
	if len(results) != 1 {
		t.Fatalf("Expected 1 tool result part, got %d", len(results))
	}
	if results[0].CallID != "call_1" {
		t.Errorf("Expected call ID 'call_1', got %q", results[0].CallID)
	}
	if results[0].Content != "hi" {
		t.Errorf("Expected tool content 'hi', got %q", results[0].Content)
	}
	if results[0].IsError {
		t.Error("Tool result should not be marked as error")
	}
}

func TestRunUnknownToolFeedsErrorBack(t *testing.T) {
	provider := &mockProvider{
		responses: []providers.LLMResponse{
			{
				ToolCalls: []providers.ToolCall{
					{ID: "call_1", Name: "nope", Arguments: map[string]any{}},
				},
			},
			{Content: "recovered"},
		},
	}
	a := newTestAgent(provider, Options{MaxSteps: 5})
	a.AddUserMessage("try a missing tool")

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result != "recovered" {
		t.Errorf("Expected 'recovered', got %q", result)
	}

	found := false
	for _, m := range a.History() {
		if m.Role != conversation.RoleTool {
			continue
		}
		for _, r := range toolResults(m) {
			if r.Content == "Unknown tool: nope" && r.IsError {
				found = true
			}
		}
	}
	if !found {
		t.Error("Expected an error tool result with 'Unknown tool: nope'")
	}
}

func TestRunZeroStepCeiling(t *testing.T) {
	provider := &mockProvider{}
	a := newTestAgent(provider, Options{MaxSteps: 0})
	a.AddUserMessage("anything")

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result != "Task couldn't be completed after 0 steps." {
		t.Errorf("Unexpected ceiling message: %q", result)
	}
	if provider.calls() != 0 {
		t.Errorf("Expected no backend calls with a zero ceiling, got %d", provider.calls())
	}
}

func TestRunStepCeilingMessage(t *testing.T) {
	// Every response requests another tool call, so the ceiling is the
	// only way out.
	provider := &mockProvider{
		responses: []providers.LLMResponse{
			{
				ToolCalls: []providers.ToolCall{
					{ID: "call_1", Name: "echo", Arguments: map[string]any{"text": "again"}},
				},
			},
		},
	}
	a := newTestAgent(provider, Options{
		MaxSteps: 3,
		Tools:    []tools.Tool{echoTool{}},
	})
	a.AddUserMessage("loop forever")

	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	expected := fmt.Sprintf("Task couldn't be completed after %d steps.", 3)
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
	if provider.calls() != 3 {
		t.Errorf("Expected 3 backend calls, got %d", provider.calls())
	}
}

func TestRunPropagatesBackendError(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	a := newTestAgent(provider, Options{MaxSteps: 5})
	a.AddUserMessage("anything")

	_, err := a.Run(context.Background())
	if err == nil {
		t.Fatal("Expected an error from a failing backend")
	}
	if !errors.Is(err, provider.err) {
		t.Errorf("Expected wrapped backend error, got %v", err)
	}
}

func TestStepCountAccumulatesAcrossRuns(t *testing.T) {
	provider := &mockProvider{
		responses: []providers.LLMResponse{
			{
				ToolCalls: []providers.ToolCall{
					{ID: "call_1", Name: "echo", Arguments: map[string]any{"text": "x"}},
				},
			},
			{Content: "first"},
			{
				ToolCalls: []providers.ToolCall{
					{ID: "call_2", Name: "echo", Arguments: map[string]any{"text": "y"}},
				},
			},
			{Content: "second"},
		},
	}
	a := newTestAgent(provider, Options{
		MaxSteps: 10,
		Tools:    []tools.Tool{echoTool{}},
	})

	a.AddUserMessage("first task")
	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	a.AddUserMessage("second task")
	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if a.StepCount() != 2 {
		t.Errorf("Expected step count to accumulate to 2, got %d", a.StepCount())
	}
}

func TestClearHistoryKeepsSystemPrompt(t *testing.T) {
	provider := &mockProvider{}
	a := newTestAgent(provider, Options{MaxSteps: 5, SystemPrompt: "sys"})
	a.AddUserMessage("hello")
	a.AddUserMessage("world")

	a.ClearHistory()

	msgs := a.History()
	if len(msgs) != 1 {
		t.Fatalf("Expected only the system message after clear, got %d messages", len(msgs))
	}
	if msgs[0].Role != conversation.RoleSystem || msgs[0].Text() != "sys" {
		t.Errorf("System message not preserved: %+v", msgs[0])
	}
	if a.StepCount() != 0 {
		t.Errorf("Expected step count reset, got %d", a.StepCount())
	}
}

func toolResults(m conversation.Message) []conversation.ToolResultPart {
	var out []conversation.ToolResultPart
	for _, p := range m.Parts {
		if r, ok := p.(conversation.ToolResultPart); ok {
			out = append(out, r)
		}
	}
	return out
}
