// Package openai implements the chat backend over the OpenAI
// chat-completions API via the official SDK. Any OpenAI-compatible
// endpoint works by pointing the base URL at it.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "gpt-4o"
	defaultRequestTimeout = 120 * time.Second
)

type Provider struct {
	client *openai.Client
}

func NewProvider(apiKey, apiBase string) *Provider {
	if apiBase == "" {
		apiBase = defaultBaseURL
	}
	reqOpts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(apiBase, "/")),
		option.WithRequestTimeout(defaultRequestTimeout),
	}
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(reqOpts...)
	return &Provider{client: &client}
}

func (p *Provider) GetDefaultModel() string {
	return defaultModel
}

func (p *Provider) Chat(
	ctx context.Context,
	messages []conversation.Message,
	tools []providers.ToolDefinition,
	model string,
	options map[string]any,
) (*providers.LLMResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: buildChatMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = buildChatTools(tools)
		params.ToolChoice.OfAuto = openai.String(string(openai.ChatCompletionToolChoiceOptionAutoAuto))
	}
	applyOptions(&params, options)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("OpenAI API request failed (status=%d): %s",
				apiErr.StatusCode, strings.TrimSpace(apiErr.Message))
		}
		return nil, fmt.Errorf("OpenAI API request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no choices")
	}

	choice := resp.Choices[0]
	return &providers.LLMResponse{
		Content:      choice.Message.Content,
		ToolCalls:    parseToolCalls(choice.Message.ToolCalls),
		FinishReason: choice.FinishReason,
		Usage:        mapUsage(resp.Usage),
	}, nil
}

func buildChatMessages(messages []conversation.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case conversation.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Text()))
		case conversation.RoleAssistant:
			out = append(out, buildAssistantMessage(msg))
		case conversation.RoleTool:
			out = append(out, buildToolMessages(msg)...)
		default:
			out = append(out, openai.UserMessage(msg.Text()))
		}
	}
	return out
}

func buildAssistantMessage(msg conversation.Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if text := msg.Text(); text != "" {
		assistant.Content.OfString = openai.String(text)
	}
	for _, tc := range msg.ToolCalls() {
		args := "{}"
		if len(tc.Arguments) > 0 {
			if b, err := json.Marshal(tc.Arguments); err == nil {
				args = string(b)
			}
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: args,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func buildToolMessages(msg conversation.Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	for _, p := range msg.Parts {
		if tr, ok := p.(conversation.ToolResultPart); ok {
			out = append(out, openai.ToolMessage(tr.Content, tr.CallID))
		}
	}
	if len(out) == 0 && msg.ToolCallID != "" {
		out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
	}
	return out
}

func buildChatTools(tools []providers.ToolDefinition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Function.Name == "" {
			continue
		}
		fn := shared.FunctionDefinitionParam{
			Name:        tool.Function.Name,
			Description: openai.String(tool.Function.Description),
			Parameters:  shared.FunctionParameters(tool.Function.Parameters),
		}
		out = append(out, openai.ChatCompletionFunctionTool(fn))
	}
	return out
}

func parseToolCalls(calls []openai.ChatCompletionMessageToolCallUnion) []providers.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]providers.ToolCall, 0, len(calls))
	for _, call := range calls {
		switch v := call.AsAny().(type) {
		case openai.ChatCompletionMessageFunctionToolCall:
			args := map[string]any{}
			if strings.TrimSpace(v.Function.Arguments) != "" {
				_ = json.Unmarshal([]byte(v.Function.Arguments), &args)
			}
			result = append(result, providers.ToolCall{
				ID:        v.ID,
				Name:      v.Function.Name,
				Arguments: args,
			})
		}
	}
	return result
}

func applyOptions(params *openai.ChatCompletionNewParams, options map[string]any) {
	if params == nil || options == nil {
		return
	}
	if mt, ok := options["max_tokens"].(int); ok {
		params.MaxCompletionTokens = openai.Opt(int64(mt))
	}
	if temp, ok := options["temperature"].(float64); ok {
		params.Temperature = openai.Opt(temp)
	}
}

func mapUsage(usage openai.CompletionUsage) *providers.UsageInfo {
	if usage.TotalTokens == 0 && usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return nil
	}
	return &providers.UsageInfo{
		PromptTokens:     int(usage.PromptTokens),
		CompletionTokens: int(usage.CompletionTokens),
		TotalTokens:      int(usage.TotalTokens),
	}
}
