package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s. Set llm.api_key (or MINIAGENT_API_KEY) before running.\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printConfig(cfg)
			return nil
		},
	})

	return cmd
}

func printConfig(cfg *config.Config) {
	fmt.Printf("llm.provider:             %s\n", cfg.LLM.Provider)
	fmt.Printf("llm.model:                %s\n", cfg.LLM.Model)
	fmt.Printf("llm.base_url:             %s\n", cfg.LLM.BaseURL)
	fmt.Printf("llm.api_key:              %s\n", maskKey(cfg.LLM.APIKey))
	fmt.Printf("llm.retry.enabled:        %t\n", cfg.LLM.Retry.Enabled)
	fmt.Printf("llm.retry.max_retries:    %d\n", cfg.LLM.Retry.MaxRetries)
	fmt.Printf("agent.max_steps:          %d\n", cfg.Agent.MaxSteps)
	fmt.Printf("agent.token_limit:        %d\n", cfg.Agent.TokenLimit)
	fmt.Printf("agent.completion_reserve: %d\n", cfg.Agent.CompletionReserve)
	fmt.Printf("agent.workspace_dir:      %s\n", cfg.Agent.WorkspaceDir)
	fmt.Printf("agent.exact_tokenizer:    %t\n", cfg.Agent.ExactTokenizer)
	fmt.Printf("tools.enable_bash:        %t\n", cfg.Tools.EnableBash)
	fmt.Printf("tools.enable_file_tools:  %t\n", cfg.Tools.EnableFileTools)
	fmt.Printf("tools.enable_note:        %t\n", cfg.Tools.EnableNote)
	fmt.Printf("tools.enable_skills:      %t\n", cfg.Tools.EnableSkills)
	fmt.Printf("tools.enable_mcp:         %t\n", cfg.Tools.EnableMCP)

	if len(cfg.MCPServers) > 0 {
		names := make([]string, 0, len(cfg.MCPServers))
		for name := range cfg.MCPServers {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("mcp_servers:              %s\n", strings.Join(names, ", "))
	}
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
