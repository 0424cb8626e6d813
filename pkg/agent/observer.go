package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Observer receives one-way notifications from the loop. All methods are
// fire-and-forget: the loop calls them synchronously and ignores anything
// they do. Embed NopObserver to implement only what you need.
type Observer interface {
	OnRunLog(path string)
	OnRetry(attempt int, delay time.Duration, err error)
	OnSummarizeStart(before, threshold int)
	OnSummarizeDone(after int)
	OnThinking(text string)
	OnAssistantText(text string)
	OnToolCall(name, argsPreview string)
	OnToolResult(name string, success bool, preview string)
}

// NopObserver implements Observer with no-ops.
type NopObserver struct{}

func (NopObserver) OnRunLog(string)                          {}
func (NopObserver) OnRetry(int, time.Duration, error)        {}
func (NopObserver) OnSummarizeStart(int, int)                {}
func (NopObserver) OnSummarizeDone(int)                      {}
func (NopObserver) OnThinking(string)                        {}
func (NopObserver) OnAssistantText(string)                   {}
func (NopObserver) OnToolCall(string, string)                {}
func (NopObserver) OnToolResult(string, bool, string)        {}

var _ Observer = NopObserver{}

// ConsoleObserver renders notifications to stdout.
type ConsoleObserver struct {
	dim       lipgloss.Style
	thinking  lipgloss.Style
	assistant lipgloss.Style
	toolName  lipgloss.Style
	warn      lipgloss.Style
	ok        lipgloss.Style
	fail      lipgloss.Style
}

func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		thinking:  lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		toolName:  lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true),
		warn:      lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		ok:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		fail:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

func (o *ConsoleObserver) OnRunLog(path string) {
	fmt.Println(o.dim.Render("Log file:"), path)
}

func (o *ConsoleObserver) OnRetry(attempt int, delay time.Duration, err error) {
	fmt.Printf("%s LLM call failed (attempt %d): %v\n", o.warn.Render("!"), attempt, err)
	fmt.Printf("  Retrying in %.1fs (attempt %d)...\n", delay.Seconds(), attempt+1)
}

func (o *ConsoleObserver) OnSummarizeStart(before, threshold int) {
	fmt.Printf("\n%s Token estimate: %d/%d\n", o.warn.Render("*"), before, threshold)
	fmt.Printf("%s Triggering message history summarization...\n", o.warn.Render("*"))
}

func (o *ConsoleObserver) OnSummarizeDone(after int) {
	fmt.Printf("%s Summary completed, tokens reduced to %d\n", o.ok.Render("✓"), after)
}

func (o *ConsoleObserver) OnThinking(text string) {
	fmt.Printf("\n%s\n%s\n", o.thinking.Render("Thinking:"), o.dim.Render(text))
}

func (o *ConsoleObserver) OnAssistantText(text string) {
	fmt.Printf("\n%s\n%s\n", o.assistant.Render("Assistant:"), text)
}

func (o *ConsoleObserver) OnToolCall(name, argsPreview string) {
	fmt.Printf("\n%s %s\n", o.warn.Render("Tool Call:"), o.toolName.Render(name))
	for _, line := range strings.Split(argsPreview, "\n") {
		fmt.Printf("   %s\n", o.dim.Render(line))
	}
}

func (o *ConsoleObserver) OnToolResult(name string, success bool, preview string) {
	if success {
		fmt.Printf("%s %s\n", o.ok.Render("Result:"), preview)
	} else {
		fmt.Printf("%s %s\n", o.fail.Render("Error:"), preview)
	}
}
