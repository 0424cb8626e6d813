// Package agent implements the orchestration loop: it holds one session's
// conversation history, sends it to the chat backend with the advertised
// tools, executes requested tool calls sequentially, and repeats until the
// model returns a final answer or the step ceiling is hit. History is
// compacted when the token budget is exceeded.
package agent

import (
	"context"
	"time"

	"github.com/Latias94/miniagent/pkg/conversation"
	"github.com/Latias94/miniagent/pkg/providers"
	"github.com/Latias94/miniagent/pkg/tokens"
	"github.com/Latias94/miniagent/pkg/tools"
)

// Options configures one session. Zero values for TokenLimit,
// CompletionReserve and the preview limits fall back to defaults;
// MaxSteps is taken literally so a zero ceiling really means zero steps.
type Options struct {
	SystemPrompt string
	Tools        []tools.Tool
	Model        string

	MaxSteps          int
	TokenLimit        int
	CompletionReserve int

	Estimator tokens.Estimator
	Observer  Observer
	Retry     providers.RetryConfig

	// LogDir enables the per-run trace log when non-empty.
	LogDir string

	ArgPreviewLimit    int
	ResultPreviewLimit int
	SummaryWordTarget  int
}

// DefaultOptions returns the standard session parameters.
func DefaultOptions(systemPrompt string) Options {
	return Options{
		SystemPrompt:       systemPrompt,
		MaxSteps:           50,
		TokenLimit:         80000,
		CompletionReserve:  2048,
		Retry:              providers.DefaultRetryConfig(),
		ArgPreviewLimit:    DefaultArgPreviewLimit,
		ResultPreviewLimit: DefaultResultPreviewLimit,
		SummaryWordTarget:  1000,
	}
}

// Agent is one orchestration session. It exclusively owns its history and
// counters; only the registered tools are shared with other sessions.
type Agent struct {
	provider  providers.LLMProvider
	registry  *tools.Registry
	history   *conversation.History
	estimator tokens.Estimator
	observer  Observer
	runLog    *RunLog

	model             string
	maxSteps          int
	tokenLimit        int
	completionReserve int
	stepCount         int

	argPreviewLimit    int
	resultPreviewLimit int
	summaryWordTarget  int
}

func New(provider providers.LLMProvider, opts Options) *Agent {
	registry := tools.NewRegistry()
	for _, t := range opts.Tools {
		registry.Register(t)
	}

	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	estimator := opts.Estimator
	if estimator == nil {
		estimator = tokens.ApproxEstimator{}
	}

	if opts.Retry.Enabled {
		provider = providers.NewRetryingProvider(provider, opts.Retry,
			func(attempt int, delay time.Duration, err error) {
				observer.OnRetry(attempt, delay, err)
			})
	}

	model := opts.Model
	if model == "" {
		model = provider.GetDefaultModel()
	}

	tokenLimit := opts.TokenLimit
	if tokenLimit <= 0 {
		tokenLimit = 80000
	}
	completionReserve := opts.CompletionReserve
	if completionReserve <= 0 {
		completionReserve = 2048
	}

	argLimit := opts.ArgPreviewLimit
	if argLimit <= 0 {
		argLimit = DefaultArgPreviewLimit
	}
	resultLimit := opts.ResultPreviewLimit
	if resultLimit <= 0 {
		resultLimit = DefaultResultPreviewLimit
	}
	summaryTarget := opts.SummaryWordTarget
	if summaryTarget <= 0 {
		summaryTarget = 1000
	}

	var runLog *RunLog
	if opts.LogDir != "" {
		runLog = NewRunLog(opts.LogDir)
	}

	return &Agent{
		provider:           provider,
		registry:           registry,
		history:            conversation.NewHistory(opts.SystemPrompt),
		estimator:          estimator,
		observer:           observer,
		runLog:             runLog,
		model:              model,
		maxSteps:           opts.MaxSteps,
		tokenLimit:         tokenLimit,
		completionReserve:  completionReserve,
		argPreviewLimit:    argLimit,
		resultPreviewLimit: resultLimit,
		summaryWordTarget:  summaryTarget,
	}
}

// AddUserMessage appends one user turn to the history.
func (a *Agent) AddUserMessage(text string) {
	a.history.Append(conversation.NewText(conversation.RoleUser, text))
}

// CallTool dispatches a tool directly, bypassing the model loop. Useful
// for diagnostics; an unregistered name returns the unknown-tool result.
func (a *Agent) CallTool(ctx context.Context, name string, args map[string]any) *tools.ToolResult {
	return a.registry.Execute(ctx, name, args)
}

// ToolNames returns the registered tool names, sorted.
func (a *Agent) ToolNames() []string {
	return a.registry.List()
}

// History returns a copy of the current message log.
func (a *Agent) History() []conversation.Message {
	return a.history.Messages()
}

// ClearHistory drops everything but the system prompt and resets the
// step counter, giving the session a fresh start.
func (a *Agent) ClearHistory() {
	msgs := a.history.Messages()
	if len(msgs) > 0 {
		a.history.ReplaceAll(msgs[:1])
	}
	a.stepCount = 0
}

// StepCount reports the iterations taken since construction.
func (a *Agent) StepCount() int {
	return a.stepCount
}

// Model returns the model identifier in use.
func (a *Agent) Model() string {
	return a.model
}

// threshold is the token count above which history is compacted, leaving
// room for the model's next reply.
func (a *Agent) threshold() int {
	return a.tokenLimit - a.completionReserve
}
