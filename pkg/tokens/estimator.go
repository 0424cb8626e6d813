// Package tokens provides token-count estimators used to drive history
// compaction. Estimates are policy knobs, not billing figures: they only
// need to be non-negative and non-decreasing as messages are appended.
package tokens

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/Latias94/miniagent/pkg/conversation"
)

// Estimator maps a conversation to an approximate token count.
type Estimator interface {
	Estimate(messages []conversation.Message) int
}

// messageOverhead is the fixed per-message cost added on top of content,
// covering role and framing tokens.
const messageOverhead = 4

// ApproxEstimator counts visible characters and divides by 2.5, with a
// fixed overhead per message. It needs no model data and never fails.
type ApproxEstimator struct{}

func (ApproxEstimator) Estimate(messages []conversation.Message) int {
	total := 0
	for _, m := range messages {
		forEachTextUnit(m, func(s string) {
			total += approxText(s)
		})
		total += messageOverhead
	}
	return total
}

func approxText(s string) int {
	return int(float64(utf8.RuneCountInString(s)) / 2.5)
}

// forEachTextUnit visits every countable text unit of a message: plain
// content, text and reasoning segments, serialized tool-call arguments and
// tool-result payloads.
func forEachTextUnit(m conversation.Message, fn func(string)) {
	if !m.IsStructured() {
		fn(m.Content)
		return
	}
	for _, p := range m.Parts {
		switch part := p.(type) {
		case conversation.TextPart:
			fn(part.Text)
		case conversation.ReasoningPart:
			fn(part.Text)
		case conversation.ToolCallPart:
			if b, err := json.Marshal(part.Arguments); err == nil {
				fn(string(b))
			}
		case conversation.ToolResultPart:
			fn(part.Content)
		}
	}
}
