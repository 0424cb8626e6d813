// Package config loads the YAML configuration file and overlays
// MINIAGENT_-prefixed environment variables on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Latias94/miniagent/pkg/providers"
)

type LLMConfig struct {
	Provider string                `yaml:"provider" env:"MINIAGENT_PROVIDER"`
	APIKey   string                `yaml:"api_key" env:"MINIAGENT_API_KEY"`
	Model    string                `yaml:"model" env:"MINIAGENT_MODEL"`
	BaseURL  string                `yaml:"base_url" env:"MINIAGENT_BASE_URL"`
	Retry    providers.RetryConfig `yaml:"retry"`
}

type AgentConfig struct {
	MaxSteps          int    `yaml:"max_steps" env:"MINIAGENT_MAX_STEPS"`
	TokenLimit        int    `yaml:"token_limit" env:"MINIAGENT_TOKEN_LIMIT"`
	CompletionReserve int    `yaml:"completion_reserve" env:"MINIAGENT_COMPLETION_RESERVE"`
	WorkspaceDir      string `yaml:"workspace_dir" env:"MINIAGENT_WORKSPACE"`
	SystemPromptPath  string `yaml:"system_prompt_path" env:"MINIAGENT_SYSTEM_PROMPT"`
	// ExactTokenizer switches the budget estimator from the character
	// heuristic to the cl100k_base BPE count.
	ExactTokenizer bool   `yaml:"exact_tokenizer" env:"MINIAGENT_EXACT_TOKENIZER"`
	LogDir         string `yaml:"log_dir" env:"MINIAGENT_LOG_DIR"`
}

type ToolsConfig struct {
	EnableFileTools bool   `yaml:"enable_file_tools"`
	EnableBash      bool   `yaml:"enable_bash"`
	EnableNote      bool   `yaml:"enable_note"`
	EnableSkills    bool   `yaml:"enable_skills"`
	SkillsDir       string `yaml:"skills_dir" env:"MINIAGENT_SKILLS_DIR"`
	EnableMCP       bool   `yaml:"enable_mcp"`
}

// MCPServerConfig describes one MCP server: either a stdio subprocess
// (Command/Args/Env) or a streamable-HTTP endpoint (URL/Headers).
type MCPServerConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Description string            `yaml:"description"`
	Command     string            `yaml:"command"`
	Args        []string          `yaml:"args"`
	Env         map[string]string `yaml:"env"`
	URL         string            `yaml:"url"`
	Headers     map[string]string `yaml:"headers"`
	// IdleTimeout in seconds before an unused server is stopped.
	IdleTimeout int `yaml:"idle_timeout"`
}

type Config struct {
	LLM        LLMConfig                  `yaml:"llm"`
	Agent      AgentConfig                `yaml:"agent"`
	Tools      ToolsConfig                `yaml:"tools"`
	MCPServers map[string]MCPServerConfig `yaml:"mcp_servers"`
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-5-20250929",
			Retry:    providers.DefaultRetryConfig(),
		},
		Agent: AgentConfig{
			MaxSteps:          50,
			TokenLimit:        80000,
			CompletionReserve: 2048,
			WorkspaceDir:      "./workspace",
			SystemPromptPath:  "system_prompt.md",
			LogDir:            "",
		},
		Tools: ToolsConfig{
			EnableFileTools: true,
			EnableBash:      true,
			EnableNote:      true,
			EnableSkills:    true,
			SkillsDir:       "./skills",
			EnableMCP:       true,
		},
	}
}

// FindConfigFile resolves the config path: explicit argument, then
// $MINIAGENT_CONFIG, then ./config.yaml, then ~/.config/miniagent/config.yaml.
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return ExpandHome(explicit)
	}
	if p := os.Getenv("MINIAGENT_CONFIG"); p != "" {
		return ExpandHome(p)
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "miniagent", "config.yaml")
}

// LoadConfig reads the YAML file (if present), applies environment
// overrides, and validates. A missing file is not an error: defaults plus
// environment still make a usable config.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	cfg.Agent.WorkspaceDir = ExpandHome(cfg.Agent.WorkspaceDir)
	cfg.Tools.SkillsDir = ExpandHome(cfg.Tools.SkillsDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LLM.APIKey == "" || c.LLM.APIKey == "YOUR_API_KEY_HERE" {
		return fmt.Errorf("please configure a valid API key (config file or MINIAGENT_API_KEY)")
	}
	if strings.EqualFold(c.LLM.Provider, "openai-compatible") && c.LLM.BaseURL == "" {
		return fmt.Errorf("provider 'openai-compatible' requires 'base_url' in config or MINIAGENT_BASE_URL")
	}
	return nil
}

// Save writes the config as YAML with owner-only permissions since it may
// hold API keys.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if parent := filepath.Dir(path); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
