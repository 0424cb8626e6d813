package providers

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Latias94/miniagent/pkg/conversation"
)

// RetryConfig declares the backoff behavior applied around chat requests.
// It is pure data: the agent loop never retries, it only hands this to the
// retrying wrapper.
type RetryConfig struct {
	Enabled         bool    `yaml:"enabled" env:"MINIAGENT_RETRY_ENABLED"`
	MaxRetries      int     `yaml:"max_retries" env:"MINIAGENT_RETRY_MAX"`
	InitialDelay    float64 `yaml:"initial_delay" env:"MINIAGENT_RETRY_INITIAL_DELAY"`
	MaxDelay        float64 `yaml:"max_delay" env:"MINIAGENT_RETRY_MAX_DELAY"`
	ExponentialBase float64 `yaml:"exponential_base" env:"MINIAGENT_RETRY_BASE"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled:         true,
		MaxRetries:      3,
		InitialDelay:    1.0,
		MaxDelay:        60.0,
		ExponentialBase: 2.0,
	}
}

// RetryNotifyFunc is invoked before each backoff wait with the failed
// attempt number (starting at 1), the upcoming delay and the error.
type RetryNotifyFunc func(attempt int, delay time.Duration, err error)

// RetryingProvider wraps an LLMProvider with the declared retry policy.
type RetryingProvider struct {
	inner  LLMProvider
	config RetryConfig
	notify RetryNotifyFunc
	sleep  func(context.Context, time.Duration) error
	jitter func(time.Duration) time.Duration
}

func NewRetryingProvider(inner LLMProvider, config RetryConfig, notify RetryNotifyFunc) *RetryingProvider {
	return &RetryingProvider{
		inner:  inner,
		config: config,
		notify: notify,
		sleep:  sleepWithCtx,
		jitter: defaultJitter,
	}
}

func (p *RetryingProvider) GetDefaultModel() string {
	return p.inner.GetDefaultModel()
}

func (p *RetryingProvider) Chat(
	ctx context.Context,
	messages []conversation.Message,
	tools []ToolDefinition,
	model string,
	options map[string]any,
) (*LLMResponse, error) {
	if !p.config.Enabled || p.config.MaxRetries <= 0 {
		return p.inner.Chat(ctx, messages, tools, model, options)
	}

	var lastErr error
	attempts := p.config.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := p.inner.Chat(ctx, messages, tools, model, options)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == attempts-1 || !isRetryable(err) {
			break
		}

		delay := p.backoffDelay(attempt)
		if p.notify != nil {
			p.notify(attempt+1, delay, err)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (p *RetryingProvider) backoffDelay(attempt int) time.Duration {
	secs := p.config.InitialDelay * math.Pow(p.config.ExponentialBase, float64(attempt))
	if secs > p.config.MaxDelay {
		secs = p.config.MaxDelay
	}
	delay := time.Duration(secs * float64(time.Second))
	return delay + p.jitter(delay/4)
}

// isRetryable filters out failures a repeat attempt cannot fix. Auth
// rejections retry forever without new credentials, so they fail fast.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"401", "unauthorized", "invalid api key", "authentication", "permission denied", "403"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

func sleepWithCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	//nolint:gosec // backoff jitter only
	return time.Duration(rand.Int63n(int64(max) + 1))
}
