// Package anthropic implements the chat backend over the Anthropic
// Messages API via the official SDK.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
)

const defaultBaseURL = "https://api.anthropic.com"

type Provider struct {
	client  *anthropic.Client
	baseURL string
}

func NewProvider(apiKey, apiBase string) *Provider {
	baseURL := apiBase
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Provider{client: &client, baseURL: baseURL}
}

func (p *Provider) GetDefaultModel() string {
	return "claude-sonnet-4-5-20250929"
}

func (p *Provider) Chat(
	ctx context.Context,
	messages []conversation.Message,
	tools []providers.ToolDefinition,
	model string,
	options map[string]any,
) (*providers.LLMResponse, error) {
	params := buildParams(messages, tools, model, options)

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}
	return parseResponse(resp), nil
}

func buildParams(
	messages []conversation.Message,
	tools []providers.ToolDefinition,
	model string,
	options map[string]any,
) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	// The Messages API requires every tool_result block for an assistant
	// tool_use turn to arrive in one user message, so consecutive
	// tool-role messages are merged.
	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		switch msg.Role {
		case conversation.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Text()})
		case conversation.RoleUser:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text())))
		case conversation.RoleAssistant:
			turns = append(turns, buildAssistantTurn(msg))
		case conversation.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for i < len(messages) && messages[i].Role == conversation.RoleTool {
				blocks = append(blocks, toolResultBlocks(messages[i])...)
				i++
			}
			i-- // outer loop will increment
			turns = append(turns, anthropic.NewUserMessage(blocks...))
		}
	}

	maxTokens := int64(4096)
	if mt, ok := options["max_tokens"].(int); ok {
		maxTokens = int64(mt)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  turns,
		MaxTokens: maxTokens,
	}
	if len(system) > 0 {
		params.System = system
	}
	if temp, ok := options["temperature"].(float64); ok {
		params.Temperature = anthropic.Float(temp)
	}
	if len(tools) > 0 {
		params.Tools = translateTools(tools)
	}
	return params
}

func buildAssistantTurn(msg conversation.Message) anthropic.MessageParam {
	if !msg.IsStructured() {
		return anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content))
	}
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range msg.Parts {
		switch part := p.(type) {
		case conversation.TextPart:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case conversation.ToolCallPart:
			args := part.Arguments
			if args == nil {
				args = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(part.ID, args, part.Name))
		}
		// Reasoning parts are local observability only; replaying
		// thinking blocks requires signatures the history does not keep.
	}
	if len(blocks) == 0 {
		blocks = append(blocks, anthropic.NewTextBlock(""))
	}
	return anthropic.NewAssistantMessage(blocks...)
}

func toolResultBlocks(msg conversation.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range msg.Parts {
		if tr, ok := p.(conversation.ToolResultPart); ok {
			blocks = append(blocks, anthropic.NewToolResultBlock(tr.CallID, tr.Content, tr.IsError))
		}
	}
	if len(blocks) == 0 && msg.ToolCallID != "" {
		blocks = append(blocks, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
	}
	return blocks
}

func translateTools(tools []providers.ToolDefinition) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		tool := anthropic.ToolParam{
			Name: t.Function.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.Function.Parameters["properties"],
			},
		}
		if desc := t.Function.Description; desc != "" {
			tool.Description = anthropic.String(desc)
		}
		if req, ok := t.Function.Parameters["required"].([]any); ok {
			required := make([]string, 0, len(req))
			for _, r := range req {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
			tool.InputSchema.Required = required
		}
		result = append(result, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return result
}

func parseResponse(resp *anthropic.Message) *providers.LLMResponse {
	var content, reasoning strings.Builder
	var toolCalls []providers.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.AsText().Text)
		case "thinking":
			reasoning.WriteString(block.AsThinking().Thinking)
		case "tool_use":
			tu := block.AsToolUse()
			var args map[string]any
			if err := json.Unmarshal(tu.Input, &args); err != nil {
				args = map[string]any{"raw": string(tu.Input)}
			}
			toolCalls = append(toolCalls, providers.ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: args,
			})
		}
	}

	finishReason := "stop"
	switch resp.StopReason {
	case anthropic.StopReasonToolUse:
		finishReason = "tool_calls"
	case anthropic.StopReasonMaxTokens:
		finishReason = "length"
	}

	return &providers.LLMResponse{
		Content:      content.String(),
		Reasoning:    reasoning.String(),
		ToolCalls:    toolCalls,
		FinishReason: finishReason,
		Usage: &providers.UsageInfo{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
}
