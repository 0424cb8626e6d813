package conversation

// History is the ordered message log owned by one agent session. It is
// append-only except for compaction, which replaces the whole sequence at
// once. Index 0 is the system message and survives every compaction.
type History struct {
	messages []Message
}

// NewHistory seeds the log with the system message.
func NewHistory(systemPrompt string) *History {
	return &History{
		messages: []Message{NewText(RoleSystem, systemPrompt)},
	}
}

func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

// Messages returns a copy of the log so callers cannot mutate settled
// history.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// ReplaceAll swaps in a compacted sequence. The caller is responsible for
// keeping the system message at index 0.
func (h *History) ReplaceAll(msgs []Message) {
	h.messages = msgs
}

func (h *History) Len() int {
	return len(h.messages)
}
