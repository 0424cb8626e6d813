package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/agent"
)

func newRunCmd() *cobra.Command {
	var taskFile string

	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run a single task to completion and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.Join(args, " ")
			if taskFile != "" {
				data, err := os.ReadFile(taskFile)
				if err != nil {
					return fmt.Errorf("read task file: %w", err)
				}
				task = string(data)
			}
			if strings.TrimSpace(task) == "" {
				return fmt.Errorf("no task given (pass it as arguments or via --file)")
			}

			sess, err := buildSession(agent.NewConsoleObserver())
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sess.agent.AddUserMessage(task)
			result, err := sess.agent.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&taskFile, "file", "f", "", "read the task from a file")
	return cmd
}
