package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/mcp"
)

func newMcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Inspect configured MCP servers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tools exposed by the configured MCP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Tools.EnableMCP || len(cfg.MCPServers) == 0 {
				fmt.Println("No MCP servers configured")
				return nil
			}

			manager := mcp.NewManager(cfg.MCPServers)
			defer manager.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			total := 0
			for _, name := range manager.ServerNames() {
				remoteTools, err := manager.GetTools(ctx, name)
				if err != nil {
					fmt.Printf("%s: failed to load tools: %v\n", name, err)
					continue
				}
				fmt.Printf("%s (%d tools):\n", name, len(remoteTools))
				for _, rt := range remoteTools {
					fmt.Println("  -", mcp.NewTool(manager, name, rt).Name())
				}
				total += len(remoteTools)
			}
			if total == 0 {
				fmt.Println("No MCP tools found")
			}
			return nil
		},
	})

	return cmd
}
