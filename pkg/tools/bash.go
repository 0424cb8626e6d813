package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const defaultBashTimeout = 60 * time.Second

// BashTool runs shell commands in the workspace via bash -lc.
type BashTool struct {
	workspace string
	timeout   time.Duration
}

func NewBashTool(workspace string) *BashTool {
	return &BashTool{workspace: workspace, timeout: defaultBashTimeout}
}

func (t *BashTool) Name() string {
	return "bash"
}

func (t *BashTool) Description() string {
	return "Execute a shell command in the workspace (bash -lc)"
}

func (t *BashTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "Command to run",
			},
		},
		"required": []any{"command"},
	}
}

func (t *BashTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	command, ok := stringArg(args, "command")
	if !ok {
		return ErrorResult("missing 'command'")
	}

	execCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, "bash", "-lc", command)
	cmd.Dir = t.workspace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	content := stdout.String() + stderr.String()

	if execCtx.Err() == context.DeadlineExceeded {
		return ErrorResult(fmt.Sprintf("command timed out after %s", t.timeout))
	}
	if err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			return &ToolResult{Success: false, Content: content, Error: fmt.Sprintf("exit: %v", err)}
		}
		return ErrorResult(err.Error())
	}
	return TextResult(content)
}
