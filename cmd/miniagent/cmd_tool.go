package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/config"
	"github.com/Latias94/miniagent/pkg/mcp"
	"github.com/Latias94/miniagent/pkg/tools"
)

// buildLocalRegistry assembles the tool registry without a chat backend.
// Direct dispatch and schema inspection never talk to the model, so a
// missing or invalid API key is not a reason to fail.
func buildLocalRegistry() (*tools.Registry, *mcp.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	if err := os.MkdirAll(cfg.Agent.WorkspaceDir, 0o755); err != nil {
		return nil, nil, err
	}

	toolset, _, manager := buildToolset(cfg, cfg.Agent.WorkspaceDir)
	registry := tools.NewRegistry()
	for _, t := range toolset {
		registry.Register(t)
	}
	return registry, manager, nil
}

func newToolCmd() *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "tool <name> [json-args]",
		Short: "Invoke a tool directly, bypassing the model",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			registry, manager, err := buildLocalRegistry()
			if err != nil {
				return err
			}
			if manager != nil {
				defer manager.Stop()
			}

			rawArgs := argsJSON
			if len(cmdArgs) == 2 {
				rawArgs = cmdArgs[1]
			}
			toolArgs := map[string]any{}
			if rawArgs != "" {
				if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
					return fmt.Errorf("parse tool arguments: %w", err)
				}
			}

			result := registry.Execute(context.Background(), cmdArgs[0], toolArgs)
			if result.Success {
				fmt.Println(result.Content)
				return nil
			}
			fmt.Fprintln(os.Stderr, result.Error)
			os.Exit(1)
			return nil
		},
	}

	cmd.Flags().StringVarP(&argsJSON, "args", "a", "", "tool arguments as a JSON object")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, manager, err := buildLocalRegistry()
			if err != nil {
				return err
			}
			if manager != nil {
				defer manager.Stop()
			}

			names := registry.List()
			if len(names) == 0 {
				fmt.Println("No tools loaded")
				return nil
			}
			fmt.Printf("Loaded tools (%d):\n", len(names))
			for _, n := range names {
				fmt.Println("  -", n)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "describe <name>",
		Short: "Print a tool's description and parameter schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, manager, err := buildLocalRegistry()
			if err != nil {
				return err
			}
			if manager != nil {
				defer manager.Stop()
			}

			tool, ok := registry.Get(args[0])
			if !ok {
				return fmt.Errorf("tool %q not found", args[0])
			}
			schema, err := json.MarshalIndent(tool.Parameters(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			fmt.Printf("name: %s\ndescription: %s\nparameters:\n%s\n",
				tool.Name(), tool.Description(), schema)
			return nil
		},
	})

	return cmd
}
