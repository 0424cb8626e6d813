package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/agent"
	"github.com/Latias94/miniagent/pkg/conversation"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := buildSession(agent.NewConsoleObserver())
			if err != nil {
				return err
			}
			defer sess.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "miniagent> ",
				HistoryFile:     filepath.Join(os.TempDir(), ".miniagent_history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			fmt.Printf("miniagent %s (model: %s). Type /help for commands, exit to quit.\n",
				version, sess.agent.Model())

			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}

				input := strings.TrimSpace(line)
				if input == "" {
					continue
				}
				if input == "exit" || input == "quit" {
					return nil
				}
				if strings.HasPrefix(input, "/") {
					if handleBuiltin(sess, input) {
						return nil
					}
					continue
				}

				sess.agent.AddUserMessage(input)
				result, err := sess.agent.Run(context.Background())
				if err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
					continue
				}
				fmt.Println()
				fmt.Println(result)
			}
		},
	}
}

// handleBuiltin processes slash commands. It returns true when the REPL
// should exit.
func handleBuiltin(sess *session, input string) bool {
	switch strings.Fields(input)[0] {
	case "/help":
		fmt.Println(`Commands:
  /help      show this help
  /clear     clear conversation history
  /history   print the conversation so far
  /stats     show step count and history size
  /tools     list registered tools
  /config    show the active configuration
  /version   show version
  exit       quit`)
	case "/clear":
		sess.agent.ClearHistory()
		fmt.Println("History cleared.")
	case "/history":
		printHistory(sess.agent.History())
	case "/stats":
		fmt.Printf("steps: %d, messages: %d, tools: %d\n",
			sess.agent.StepCount(), len(sess.agent.History()), len(sess.agent.ToolNames()))
	case "/tools":
		for _, name := range sess.agent.ToolNames() {
			fmt.Println(" -", name)
		}
	case "/config":
		printConfig(sess.cfg)
	case "/version":
		fmt.Println("miniagent", version)
	default:
		fmt.Println("Unknown command. Type /help for a list.")
	}
	return false
}

func printHistory(messages []conversation.Message) {
	for i, msg := range messages {
		text := msg.Text()
		if text == "" && msg.IsStructured() {
			var parts []string
			for _, call := range msg.ToolCalls() {
				parts = append(parts, fmt.Sprintf("<tool call %s>", call.Name))
			}
			text = strings.Join(parts, " ")
		}
		if len(text) > 120 {
			text = text[:120] + "..."
		}
		fmt.Printf("[%d] %s: %s\n", i, msg.Role, text)
	}
}
