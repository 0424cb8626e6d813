package agent

import (
	"context"
	"sync"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
)

type mockProvider struct {
	mu            sync.Mutex
	callCount     int
	responses     []providers.LLMResponse
	responseIndex int
	err           error

	// lastMessages captures the history sent on the most recent call.
	lastMessages []conversation.Message
}

func (m *mockProvider) Chat(
	ctx context.Context,
	messages []conversation.Message,
	tools []providers.ToolDefinition,
	model string,
	opts map[string]any,
) (*providers.LLMResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastMessages = append([]conversation.Message(nil), messages...)

	if m.err != nil {
		return nil, m.err
	}

	if len(m.responses) > 0 {
		if m.responseIndex >= len(m.responses) {
			// Repeat the last response once the script runs out
			m.responseIndex = len(m.responses) - 1
		}
		resp := m.responses[m.responseIndex]
		m.responseIndex++
		return &resp, nil
	}

	return &providers.LLMResponse{
		Content:   "Mock response",
		ToolCalls: []providers.ToolCall{},
	}, nil
}

func (m *mockProvider) GetDefaultModel() string {
	return "mock-model"
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
