// Package mcp proxies tools from Model Context Protocol servers into the
// agent's tool registry. The Manager is the process-wide connection pool:
// servers start lazily on first use, idle ones are reaped, and Stop tears
// everything down at program exit.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Latias94/miniagent/pkg/config"
	"github.com/Latias94/miniagent/pkg/logger"
)

// serverInstance tracks one connected MCP server session.
type serverInstance struct {
	session  *sdkmcp.ClientSession
	done     chan struct{}
	tools    []*sdkmcp.Tool
	lastUsed time.Time
	crashes  []time.Time
	mu       sync.Mutex
}

type Manager struct {
	configs map[string]config.MCPServerConfig
	servers map[string]*serverInstance
	mu      sync.RWMutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewManager(configs map[string]config.MCPServerConfig) *Manager {
	if configs == nil {
		configs = make(map[string]config.MCPServerConfig)
	}
	m := &Manager{
		configs: configs,
		servers: make(map[string]*serverInstance),
		stopCh:  make(chan struct{}),
	}
	m.wg.Add(1)
	go m.idleReaper()
	return m
}

// ServerNames returns the enabled server names.
func (m *Manager) ServerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name, cfg := range m.configs {
		if cfg.Enabled {
			names = append(names, name)
		}
	}
	return names
}

// GetTools returns the tool list for a server, starting it if needed.
func (m *Manager) GetTools(ctx context.Context, serverName string) ([]*sdkmcp.Tool, error) {
	inst, err := m.ensureRunning(ctx, serverName)
	if err != nil {
		return nil, err
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if len(inst.tools) > 0 {
		inst.lastUsed = time.Now()
		return inst.tools, nil
	}

	result, err := inst.session.ListTools(ctx, nil)
	if err != nil {
		m.handleSessionError(serverName, inst, err)
		return nil, fmt.Errorf("tools/list: %w", err)
	}

	inst.tools = result.Tools
	inst.lastUsed = time.Now()

	logger.InfoCF("mcp", fmt.Sprintf("Server %q: loaded %d tools", serverName, len(result.Tools)),
		map[string]any{"server": serverName, "tools": len(result.Tools)})

	return result.Tools, nil
}

// CallTool executes a tool on an MCP server and flattens the response to
// text. A tool-level error comes back as an error so the wrapper can shape
// it into a failed ToolResult.
func (m *Manager) CallTool(ctx context.Context, serverName, toolName string, args map[string]any) (string, error) {
	inst, err := m.ensureRunning(ctx, serverName)
	if err != nil {
		return "", err
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	inst.lastUsed = time.Now()

	result, err := inst.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		m.handleSessionError(serverName, inst, err)
		return "", fmt.Errorf("tools/call %s: %w", toolName, err)
	}

	text := extractText(result)
	if result.IsError {
		return "", fmt.Errorf("tool error: %s", text)
	}
	return text, nil
}

// Stop shuts down all running servers and the idle reaper.
func (m *Manager) Stop() {
	close(m.stopCh)

	m.mu.Lock()
	for name, inst := range m.servers {
		inst.mu.Lock()
		if inst.session != nil {
			logger.InfoCF("mcp", fmt.Sprintf("Stopping server %q", name), nil)
			inst.session.Close()
			inst.session = nil
		}
		inst.mu.Unlock()
	}
	m.servers = make(map[string]*serverInstance)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) ensureRunning(ctx context.Context, serverName string) (*serverInstance, error) {
	m.mu.RLock()
	cfg, ok := m.configs[serverName]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown MCP server: %q", serverName)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("MCP server %q is disabled", serverName)
	}

	m.mu.Lock()
	inst, exists := m.servers[serverName]
	if !exists {
		inst = &serverInstance{}
		m.servers[serverName] = inst
	}
	m.mu.Unlock()

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if inst.session != nil {
		select {
		case <-inst.done:
			logger.WarnCF("mcp", fmt.Sprintf("Server %q session closed, restarting", serverName), nil)
			inst.session = nil
			inst.tools = nil
		default:
			return inst, nil
		}
	}

	// Crash rate limit: max 3 restarts in 60 seconds.
	now := time.Now()
	var recent []time.Time
	for _, t := range inst.crashes {
		if now.Sub(t) < 60*time.Second {
			recent = append(recent, t)
		}
	}
	inst.crashes = recent
	if len(recent) >= 3 {
		return nil, fmt.Errorf("MCP server %q crashed too frequently (3 times in 60s)", serverName)
	}

	client := sdkmcp.NewClient(
		&sdkmcp.Implementation{Name: "miniagent", Version: "1.0.0"},
		nil,
	)

	var transport sdkmcp.Transport
	if cfg.URL != "" {
		httpClient := &http.Client{}
		if len(cfg.Headers) > 0 {
			httpClient.Transport = &headerTransport{
				headers: cfg.Headers,
				base:    http.DefaultTransport,
			}
		}
		transport = &sdkmcp.StreamableClientTransport{
			Endpoint:             cfg.URL,
			HTTPClient:           httpClient,
			DisableStandaloneSSE: true,
		}
		logger.InfoCF("mcp", fmt.Sprintf("Connecting to HTTP server %q: %s", serverName, cfg.URL), nil)
	} else {
		var envv []string
		if len(cfg.Env) > 0 {
			envv = os.Environ()
			for k, v := range cfg.Env {
				envv = append(envv, fmt.Sprintf("%s=%s", k, v))
			}
		}
		cmd := exec.Command(cfg.Command, cfg.Args...)
		if len(envv) > 0 {
			cmd.Env = envv
		}
		transport = &sdkmcp.CommandTransport{Command: cmd}
		logger.InfoCF("mcp", fmt.Sprintf("Starting server %q: %s %s", serverName, cfg.Command, strings.Join(cfg.Args, " ")), nil)
	}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		inst.crashes = append(inst.crashes, now)
		return nil, fmt.Errorf("connect MCP server %q: %w", serverName, err)
	}

	inst.session = session
	inst.lastUsed = now
	inst.tools = nil

	inst.done = make(chan struct{})
	go func() {
		session.Wait()
		close(inst.done)
	}()

	return inst, nil
}

func (m *Manager) handleSessionError(serverName string, inst *serverInstance, err error) {
	errStr := err.Error()
	isTransport := strings.Contains(errStr, "write") || strings.Contains(errStr, "read") ||
		strings.Contains(errStr, "pipe") || strings.Contains(errStr, "process") ||
		strings.Contains(errStr, "http") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "EOF")

	if isTransport {
		logger.WarnCF("mcp", fmt.Sprintf("Server %q transport error, marking for restart: %v", serverName, err), nil)
		if inst.session != nil {
			inst.session.Close()
			inst.session = nil
		}
		inst.tools = nil
		inst.crashes = append(inst.crashes, time.Now())
	}
}

func (m *Manager) idleReaper() {
	defer m.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.reapIdleServers()
		}
	}
}

func (m *Manager) reapIdleServers() {
	m.mu.RLock()
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	m.mu.RUnlock()

	for _, name := range names {
		m.mu.RLock()
		cfg := m.configs[name]
		inst, ok := m.servers[name]
		m.mu.RUnlock()
		if !ok {
			continue
		}

		timeout := cfg.IdleTimeout
		if timeout <= 0 {
			timeout = 300
		}

		inst.mu.Lock()
		if inst.session != nil && time.Since(inst.lastUsed) > time.Duration(timeout)*time.Second {
			logger.InfoCF("mcp", fmt.Sprintf("Stopping idle server %q (idle %v)", name, time.Since(inst.lastUsed).Round(time.Second)), nil)
			inst.session.Close()
			inst.session = nil
			inst.tools = nil
		}
		inst.mu.Unlock()
	}
}

// extractText flattens SDK content blocks and structured content to text.
func extractText(result *sdkmcp.CallToolResult) string {
	var parts []string

	for _, content := range result.Content {
		switch c := content.(type) {
		case *sdkmcp.TextContent:
			parts = append(parts, c.Text)
		case *sdkmcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image: %s, %d bytes]", c.MIMEType, len(c.Data)))
		case *sdkmcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[audio: %s, %d bytes]", c.MIMEType, len(c.Data)))
		case *sdkmcp.ResourceLink:
			parts = append(parts, fmt.Sprintf("[resource_link: %s]", c.URI))
		case *sdkmcp.EmbeddedResource:
			if c.Resource != nil {
				if c.Resource.Text != "" {
					parts = append(parts, c.Resource.Text)
				} else {
					parts = append(parts, fmt.Sprintf("[embedded resource: %s]", c.Resource.URI))
				}
			}
		}
	}

	if result.StructuredContent != nil {
		if data, err := json.MarshalIndent(result.StructuredContent, "", "  "); err == nil {
			parts = append(parts, string(data))
		}
	}

	if len(parts) == 0 {
		return "(no content)"
	}
	return strings.Join(parts, "\n")
}

// headerTransport injects static headers (e.g. Authorization) into every
// outgoing request of an HTTP transport.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
