package agent

import (
	"context"
	"fmt"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/logger"
	"github.com/Latias94/miniagent/pkg/providers"
)

// Run executes the loop until the model returns a final answer, the step
// ceiling is hit, or the backend fails. Only a backend failure terminates
// abnormally; tool failures are fed back into the conversation.
func (a *Agent) Run(ctx context.Context) (string, error) {
	if a.runLog != nil {
		if err := a.runLog.StartRun(); err != nil {
			logger.WarnCF("agent", "Run log disabled", map[string]any{"error": err.Error()})
		} else {
			a.observer.OnRunLog(a.runLog.Path())
		}
	}

	for {
		if a.estimator.Estimate(a.history.Messages()) > a.threshold() {
			a.summarizeHistory(ctx)
		}

		if a.stepCount >= a.maxSteps {
			return fmt.Sprintf("Task couldn't be completed after %d steps.", a.maxSteps), nil
		}

		defs := a.registry.Definitions()
		messages := a.history.Messages()
		a.logRequest(messages, defs)

		resp, err := a.provider.Chat(ctx, messages, defs, a.model, nil)
		if err != nil {
			return "", fmt.Errorf("chat request: %w", err)
		}
		a.logResponse(resp)

		if resp.Reasoning != "" {
			a.observer.OnThinking(resp.Reasoning)
		}
		if resp.Content != "" {
			a.observer.OnAssistantText(resp.Content)
		}

		a.history.Append(assistantMessage(resp))

		if !resp.HasToolCalls() {
			return resp.Content, nil
		}

		// Tool calls run strictly in the order the model listed them:
		// later calls may depend on side effects of earlier ones.
		for _, call := range resp.ToolCalls {
			a.observer.OnToolCall(call.Name, renderArgs(call.Arguments, a.argPreviewLimit))

			result := a.registry.Execute(ctx, call.Name, call.Arguments)

			if a.runLog != nil {
				a.runLog.LogToolResult(map[string]any{
					"tool_name": call.Name,
					"arguments": call.Arguments,
					"success":   result.Success,
					"result":    result.Content,
					"error":     result.Error,
				})
			}

			if result.Success {
				a.observer.OnToolResult(call.Name, true, truncateText(result.Content, a.resultPreviewLimit))
				a.history.Append(conversation.NewToolResult(call.ID, result.Content, false))
			} else {
				errText := result.LLMText()
				a.observer.OnToolResult(call.Name, false, errText)
				a.history.Append(conversation.NewToolResult(call.ID, errText, true))
			}
		}

		a.stepCount++
	}
}

// assistantMessage converts a backend response into the history entry,
// keeping reasoning segments distinct from visible text.
func assistantMessage(resp *providers.LLMResponse) conversation.Message {
	if !resp.HasToolCalls() && resp.Reasoning == "" {
		return conversation.NewText(conversation.RoleAssistant, resp.Content)
	}

	var parts []conversation.Part
	if resp.Reasoning != "" {
		parts = append(parts, conversation.ReasoningPart{Text: resp.Reasoning})
	}
	if resp.Content != "" {
		parts = append(parts, conversation.TextPart{Text: resp.Content})
	}
	for _, tc := range resp.ToolCalls {
		parts = append(parts, conversation.ToolCallPart{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
		})
	}
	return conversation.NewParts(conversation.RoleAssistant, parts...)
}

func (a *Agent) logRequest(messages []conversation.Message, defs []providers.ToolDefinition) {
	if a.runLog == nil {
		return
	}
	msgs := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, map[string]any{
			"role":    string(m.Role),
			"content": m.Text(),
		})
	}
	toolNames := make([]string, 0, len(defs))
	for _, d := range defs {
		toolNames = append(toolNames, d.Function.Name)
	}
	a.runLog.LogRequest(map[string]any{
		"messages": msgs,
		"tools":    toolNames,
	})
}

func (a *Agent) logResponse(resp *providers.LLMResponse) {
	if a.runLog == nil {
		return
	}
	a.runLog.LogResponse(map[string]any{
		"content":        resp.Content,
		"has_tool_calls": resp.HasToolCalls(),
		"finish_reason":  resp.FinishReason,
	})
}
