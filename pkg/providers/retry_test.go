package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	calls int
	errs  []error
	resp  *LLMResponse
}

func (s *scriptedProvider) Chat(
	ctx context.Context,
	messages []conversation.Message,
	tools []ToolDefinition,
	model string,
	options map[string]any,
) (*LLMResponse, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return nil, s.errs[s.calls-1]
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &LLMResponse{Content: "ok"}, nil
}

func (s *scriptedProvider) GetDefaultModel() string { return "scripted" }

// instant replaces the real sleep and jitter so tests never wait.
func instant(p *RetryingProvider) {
	p.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	p.jitter = func(time.Duration) time.Duration { return 0 }
}

func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	inner := &scriptedProvider{
		errs: []error{errors.New("connection reset"), errors.New("429 too many requests")},
	}
	var notified []int
	p := NewRetryingProvider(inner, DefaultRetryConfig(), func(attempt int, delay time.Duration, err error) {
		notified = append(notified, attempt)
	})
	instant(p)

	resp, err := p.Chat(context.Background(), nil, nil, "m", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("connection reset")
	inner := &scriptedProvider{errs: []error{boom, boom, boom, boom, boom}}
	cfg := DefaultRetryConfig()
	cfg.MaxRetries = 3
	p := NewRetryingProvider(inner, cfg, nil)
	instant(p)

	_, err := p.Chat(context.Background(), nil, nil, "m", nil)
	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.Equal(t, 4, inner.calls, "one initial attempt plus three retries")
}

func TestRetrySkipsAuthErrors(t *testing.T) {
	for _, msg := range []string{
		"401 Unauthorized",
		"invalid API key provided",
		"403 Forbidden",
		"authentication failed",
	} {
		inner := &scriptedProvider{errs: []error{errors.New(msg)}}
		p := NewRetryingProvider(inner, DefaultRetryConfig(), nil)
		instant(p)

		_, err := p.Chat(context.Background(), nil, nil, "m", nil)
		require.Error(t, err, msg)
		assert.Equal(t, 1, inner.calls, "auth errors must not be retried: %s", msg)
	}
}

func TestRetryDisabledPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	inner := &scriptedProvider{errs: []error{boom}}
	cfg := DefaultRetryConfig()
	cfg.Enabled = false
	p := NewRetryingProvider(inner, cfg, nil)
	instant(p)

	_, err := p.Chat(context.Background(), nil, nil, "m", nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		Enabled:         true,
		MaxRetries:      10,
		InitialDelay:    1.0,
		MaxDelay:        8.0,
		ExponentialBase: 2.0,
	}
	p := NewRetryingProvider(&scriptedProvider{}, cfg, nil)
	p.jitter = func(time.Duration) time.Duration { return 0 }

	assert.Equal(t, 1*time.Second, p.backoffDelay(0))
	assert.Equal(t, 2*time.Second, p.backoffDelay(1))
	assert.Equal(t, 4*time.Second, p.backoffDelay(2))
	assert.Equal(t, 8*time.Second, p.backoffDelay(3))
	assert.Equal(t, 8*time.Second, p.backoffDelay(6), "delay must cap at max_delay")
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	inner := &scriptedProvider{errs: []error{errors.New("timeout"), errors.New("timeout")}}
	p := NewRetryingProvider(inner, DefaultRetryConfig(), nil)
	p.jitter = func(time.Duration) time.Duration { return 0 }

	ctx, cancel := context.WithCancel(context.Background())
	p.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := p.Chat(ctx, nil, nil, "m", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}
