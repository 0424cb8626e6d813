// Package providers defines the chat-backend contract the agent loop talks
// to, plus the declarative retry policy applied around it. Concrete
// backends live in the anthropic and openai subpackages.
package providers

import (
	"context"

	"github.com/Latias94/miniagent/pkg/conversation"
)

// ToolCall is one model-issued tool invocation request.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// LLMResponse is the wire-neutral result of one chat request.
type LLMResponse struct {
	Content      string     `json:"content"`
	Reasoning    string     `json:"reasoning,omitempty"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
	Usage        *UsageInfo `json:"usage,omitempty"`
}

func (r *LLMResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ToolDefinition advertises one tool to the model in the
// OpenAI-function-call shape; the anthropic backend translates it.
type ToolDefinition struct {
	Type     string                 `json:"type"`
	Function ToolFunctionDefinition `json:"function"`
}

type ToolFunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// LLMProvider is the chat backend capability. Chat sends the full history
// and the advertised tools, and returns the parsed response. Transport
// faults surface as errors; the loop treats them as session-ending.
type LLMProvider interface {
	Chat(ctx context.Context, messages []conversation.Message, tools []ToolDefinition, model string, options map[string]any) (*LLMResponse, error)
	GetDefaultModel() string
}
