package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Latias94/miniagent/pkg/agent"
	"github.com/Latias94/miniagent/pkg/config"
	"github.com/Latias94/miniagent/pkg/logger"
	"github.com/Latias94/miniagent/pkg/mcp"
	"github.com/Latias94/miniagent/pkg/providers"
	"github.com/Latias94/miniagent/pkg/providers/anthropic"
	"github.com/Latias94/miniagent/pkg/providers/openai"
	"github.com/Latias94/miniagent/pkg/skills"
	"github.com/Latias94/miniagent/pkg/tokens"
	"github.com/Latias94/miniagent/pkg/tools"
)

const defaultSystemPrompt = "You are miniagent, an autonomous task-execution assistant.\n\n{SKILLS_METADATA}"

// session bundles everything a CLI command needs for one agent session.
type session struct {
	agent      *agent.Agent
	loader     *skills.Loader
	mcpManager *mcp.Manager
	cfg        *config.Config
}

// Close releases process-wide resources (the MCP connection pool).
func (s *session) Close() {
	if s.mcpManager != nil {
		s.mcpManager.Stop()
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(config.FindConfigFile(flagConfig))
}

// buildProvider selects the chat backend from config. Anything that is
// not Anthropic is treated as an OpenAI-compatible endpoint.
func buildProvider(cfg *config.Config) (providers.LLMProvider, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "anthropic", "claude":
		return anthropic.NewProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL), nil
	case "openai", "openai-compatible", "":
		return openai.NewProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL), nil
	default:
		if cfg.LLM.BaseURL != "" {
			return openai.NewProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL), nil
		}
		return nil, fmt.Errorf("unknown provider %q (set base_url for OpenAI-compatible endpoints)", cfg.LLM.Provider)
	}
}

// buildToolset assembles the builtin tools plus skills and MCP proxies.
func buildToolset(cfg *config.Config, workspace string) ([]tools.Tool, *skills.Loader, *mcp.Manager) {
	var toolset []tools.Tool

	if cfg.Tools.EnableBash {
		toolset = append(toolset, tools.NewBashTool(workspace))
	}
	if cfg.Tools.EnableFileTools {
		toolset = append(toolset,
			tools.NewReadFileTool(workspace),
			tools.NewWriteFileTool(workspace),
			tools.NewEditFileTool(workspace),
		)
	}
	if cfg.Tools.EnableNote {
		store := tools.NewNoteStore(filepath.Join(workspace, ".agent_memory.json"))
		toolset = append(toolset,
			tools.NewRecordNoteTool(store),
			tools.NewRecallNotesTool(store),
		)
	}

	var loader *skills.Loader
	if cfg.Tools.EnableSkills {
		loader = skills.NewLoader(resolveSkillsDir(cfg.Tools.SkillsDir))
		if n, err := loader.Discover(); err == nil && n > 0 {
			logger.InfoCF("skills", "Skills loaded", map[string]any{"count": n})
		}
		toolset = append(toolset, tools.NewGetSkillTool(loader))
	}

	var manager *mcp.Manager
	if cfg.Tools.EnableMCP && len(cfg.MCPServers) > 0 {
		manager = mcp.NewManager(cfg.MCPServers)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, name := range manager.ServerNames() {
			remoteTools, err := manager.GetTools(ctx, name)
			if err != nil {
				logger.WarnCF("mcp", "Skipping MCP server", map[string]any{
					"server": name,
					"error":  err.Error(),
				})
				continue
			}
			for _, rt := range remoteTools {
				toolset = append(toolset, mcp.NewTool(manager, name, rt))
			}
		}
	}

	return toolset, loader, manager
}

// resolveSkillsDir picks the skills directory: the configured path when it
// exists, then the shared install dir, and as a last resort an automatic
// fetch of the default skills repo. Fetch failures are not fatal; the
// session just starts without skills.
func resolveSkillsDir(configured string) string {
	if _, err := os.Stat(configured); err == nil {
		return configured
	}
	installed := skills.DefaultInstallDir()
	if _, err := os.Stat(installed); err == nil {
		return installed
	}

	if err := skills.FetchOrUpdate(context.Background(), skills.DefaultSkillSource, installed, false); err != nil {
		logger.WarnCF("skills", "Auto-fetch of skills repo failed; run 'miniagent skills fetch' manually",
			map[string]any{"error": err.Error()})
		return configured
	}
	return installed
}

// buildSystemPrompt reads the prompt file if configured, substitutes the
// skill catalog, and appends execution-environment and workspace sections.
func buildSystemPrompt(cfg *config.Config, loader *skills.Loader, workspace string) string {
	prompt := defaultSystemPrompt
	if path := cfg.Agent.SystemPromptPath; path != "" {
		if data, err := os.ReadFile(config.ExpandHome(path)); err == nil {
			prompt = string(data)
		}
	}

	meta := ""
	if loader != nil {
		meta = loader.MetadataPrompt()
	}
	prompt = strings.ReplaceAll(prompt, "{SKILLS_METADATA}", meta)

	if !strings.Contains(prompt, "## Execution Environment") {
		prompt += fmt.Sprintf(
			"\n\n## Execution Environment\n- OS: %s (%s)\n- Default shell for tool 'bash': bash -lc\n- Path separator: %s",
			runtime.GOOS, runtime.GOARCH, string(os.PathSeparator))
	}

	if !strings.Contains(prompt, "Current Workspace") {
		abs, err := filepath.Abs(workspace)
		if err != nil {
			abs = workspace
		}
		prompt += fmt.Sprintf(
			"\n\n## Current Workspace\nYou are currently working in: `%s`\nAll relative paths will be resolved relative to this directory.",
			abs)
	}

	return prompt
}

// buildSession wires config, provider, tools and system prompt into one
// ready-to-run agent.
func buildSession(observer agent.Observer) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	workspace := cfg.Agent.WorkspaceDir
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", workspace, err)
	}

	toolset, loader, manager := buildToolset(cfg, workspace)
	systemPrompt := buildSystemPrompt(cfg, loader, workspace)

	opts := agent.DefaultOptions(systemPrompt)
	opts.Tools = toolset
	opts.Model = cfg.LLM.Model
	opts.MaxSteps = cfg.Agent.MaxSteps
	opts.TokenLimit = cfg.Agent.TokenLimit
	opts.CompletionReserve = cfg.Agent.CompletionReserve
	opts.Retry = cfg.LLM.Retry
	opts.Observer = observer

	logDir := cfg.Agent.LogDir
	if logDir == "" {
		logDir = filepath.Join(workspace, "logs")
	}
	opts.LogDir = logDir

	if cfg.Agent.ExactTokenizer {
		est, err := tokens.NewTiktokenEstimator()
		if err != nil {
			logger.WarnCF("agent", "Falling back to approximate token estimator",
				map[string]any{"error": err.Error()})
		} else {
			opts.Estimator = est
		}
	}

	return &session{
		agent:      agent.New(provider, opts),
		loader:     loader,
		mcpManager: manager,
		cfg:        cfg,
	}, nil
}
