// Package conversation defines the message model shared by the agent loop,
// the token estimators and the LLM providers: role-tagged messages whose
// content is either plain text or an ordered sequence of typed parts.
package conversation

import "strings"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Part is one segment of a structured message. Exactly four kinds exist;
// the unexported marker keeps the set closed so switches over Part stay
// exhaustive.
type Part interface {
	isPart()
}

// TextPart is visible assistant or user text.
type TextPart struct {
	Text string
}

// ReasoningPart carries model thinking output. It is surfaced to observers
// but never advertised back to the model as visible text.
type ReasoningPart struct {
	Text string
}

// ToolCallPart is a model-issued request to invoke a tool.
type ToolCallPart struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResultPart is the settled outcome of one tool call.
type ToolResultPart struct {
	CallID  string
	Content string
	IsError bool
}

func (TextPart) isPart()       {}
func (ReasoningPart) isPart()  {}
func (ToolCallPart) isPart()   {}
func (ToolResultPart) isPart() {}

// Message is one conversational turn. Content and Parts are mutually
// exclusive: a message holds plain text or structured parts, never both.
// Messages are immutable once appended to a history.
type Message struct {
	Role Role
	// Content is the plain-text form. Empty when Parts is set.
	Content string
	// Parts is the structured form. Nil for plain-text messages.
	Parts []Part
	// ToolCallID correlates a tool-role message with the tool call it
	// answers.
	ToolCallID string
}

func NewText(role Role, text string) Message {
	return Message{Role: role, Content: text}
}

func NewParts(role Role, parts ...Part) Message {
	return Message{Role: role, Parts: parts}
}

// NewToolResult builds the tool-role message answering callID. The error
// flag travels in a ToolResultPart so providers can mark the block as
// failed on the wire.
func NewToolResult(callID, content string, isError bool) Message {
	return Message{
		Role:       RoleTool,
		ToolCallID: callID,
		Parts:      []Part{ToolResultPart{CallID: callID, Content: content, IsError: isError}},
	}
}

// IsStructured reports whether the message uses the multi-part form.
func (m Message) IsStructured() bool {
	return m.Parts != nil
}

// Text renders the visible text of the message: the plain content, or the
// concatenated TextParts of a structured message. Reasoning, tool calls
// and tool results are not visible text.
func (m Message) Text() string {
	if !m.IsStructured() {
		return m.Content
	}
	var segs []string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok && tp.Text != "" {
			segs = append(segs, tp.Text)
		}
	}
	return strings.Join(segs, "")
}

// ToolCalls returns the tool-call parts of the message in order.
func (m Message) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}
