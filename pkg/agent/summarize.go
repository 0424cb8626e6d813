package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/logger"
)

const summarizerSystemPrompt = "You are an assistant skilled at summarizing Agent execution processes."

// summaryPrefix marks the synthetic user messages produced by compaction.
const summaryPrefix = "[Assistant Execution Summary]\n\n"

// summarizeHistory compacts the settled history: the system message and
// every user message survive verbatim, and each run of assistant/tool
// messages between consecutive user messages collapses into one synthetic
// user message carrying a model-written summary. With no user messages
// there is nothing to anchor segments to, so compaction is a no-op.
// Summarization failures degrade to an empty summary; they never abort
// the session.
func (a *Agent) summarizeHistory(ctx context.Context) {
	msgs := a.history.Messages()
	before := a.estimator.Estimate(msgs)

	var userIdxs []int
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Role == conversation.RoleUser {
			userIdxs = append(userIdxs, i)
		}
	}
	if len(userIdxs) == 0 {
		return
	}

	a.observer.OnSummarizeStart(before, a.threshold())

	compacted := []conversation.Message{msgs[0]}
	for pos, uIdx := range userIdxs {
		compacted = append(compacted, msgs[uIdx])

		end := len(msgs)
		if pos+1 < len(userIdxs) {
			end = userIdxs[pos+1]
		}
		segment := msgs[uIdx+1 : end]
		if len(segment) == 0 {
			continue
		}

		summary := a.createSummary(ctx, segment, pos+1)
		compacted = append(compacted, conversation.NewText(
			conversation.RoleUser, summaryPrefix+summary))
	}

	a.history.ReplaceAll(compacted)
	a.observer.OnSummarizeDone(a.estimator.Estimate(compacted))
}

// createSummary issues the side-channel summarization request for one
// segment. The rendering carries assistant text, the names of tools
// called and tool-result counts, never full tool payloads.
func (a *Agent) createSummary(ctx context.Context, segment []conversation.Message, round int) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Round %d execution process:\n\n", round)

	for _, m := range segment {
		switch m.Role {
		case conversation.RoleAssistant:
			if text := m.Text(); text != "" {
				fmt.Fprintf(&buf, "Assistant: %s\n", text)
			}
			if calls := m.ToolCalls(); len(calls) > 0 {
				names := make([]string, 0, len(calls))
				for _, c := range calls {
					names = append(names, c.Name)
				}
				fmt.Fprintf(&buf, "  -> Called tools: %s\n", strings.Join(names, ", "))
			}
		case conversation.RoleTool:
			count := 0
			for _, p := range m.Parts {
				if _, ok := p.(conversation.ToolResultPart); ok {
					count++
				}
			}
			if count == 0 {
				count = 1
			}
			fmt.Fprintf(&buf, "  -> Tool returned: %d result(s)\n", count)
		}
	}

	prompt := fmt.Sprintf(
		"Please provide a concise summary of the following Agent execution process:\n\n"+
			"%s\n\n"+
			"Requirements:\n"+
			"1. Focus on what tasks were completed and which tools were called\n"+
			"2. Keep key execution results and important findings\n"+
			"3. Be concise and clear, within %d words\n"+
			"4. Use English\n"+
			"5. Do not include user content, only summarize the Agent's execution process\n",
		buf.String(), a.summaryWordTarget)

	request := []conversation.Message{
		conversation.NewText(conversation.RoleSystem, summarizerSystemPrompt),
		conversation.NewText(conversation.RoleUser, prompt),
	}

	resp, err := a.provider.Chat(ctx, request, nil, a.model, nil)
	if err != nil {
		logger.WarnCF("agent", "Summarization call failed, using empty summary",
			map[string]any{"error": err.Error()})
		return ""
	}
	return resp.Content
}
