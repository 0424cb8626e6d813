package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunLog writes a plain-text trace of one run: every request, response and
// tool result, numbered in order. One file per run.
type RunLog struct {
	dir   string
	path  string
	index int
	mu    sync.Mutex
}

func NewRunLog(dir string) *RunLog {
	return &RunLog{dir: dir}
}

// StartRun opens a fresh log file for the next run.
func (l *RunLog) StartRun() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	now := time.Now()
	name := fmt.Sprintf("agent_run_%s_%s.log",
		now.Format("20060102_150405"),
		uuid.NewString()[:8])
	l.path = filepath.Join(l.dir, name)
	l.index = 0

	header := fmt.Sprintf("%s\nAgent Run Log - %s\n%s\n\n",
		strings.Repeat("=", 80),
		now.Format("2006-01-02 15:04:05"),
		strings.Repeat("=", 80))
	return os.WriteFile(l.path, []byte(header), 0o644)
}

func (l *RunLog) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

func (l *RunLog) LogRequest(payload any) {
	l.write("REQUEST", payload)
}

func (l *RunLog) LogResponse(payload any) {
	l.write("RESPONSE", payload)
}

func (l *RunLog) LogToolResult(payload any) {
	l.write("TOOL_RESULT", payload)
}

func (l *RunLog) write(kind string, payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	l.index++
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		body = []byte(fmt.Sprintf("%v", payload))
	}
	sep := strings.Repeat("-", 80)
	fmt.Fprintf(f, "\n%s\n[%d] %s\nTimestamp: %s\n%s\n%s\n",
		sep, l.index, kind,
		time.Now().Format("2006-01-02 15:04:05.000"),
		sep, body)
}
