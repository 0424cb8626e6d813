package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/logger"
)

var (
	flagConfig string
	flagDebug  bool
)

func main() {
	root := &cobra.Command{
		Use:   "miniagent",
		Short: "An autonomous LLM task-execution agent",
		Long:  "miniagent runs an LLM-driven task loop with shell, file, note, skill and MCP tools.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				logger.SetLevel(logger.DEBUG)
			}
		},
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config.yaml")
	root.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(),
		newReplCmd(),
		newToolCmd(),
		newSkillsCmd(),
		newMcpCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
