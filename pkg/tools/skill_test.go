package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Latias94/miniagent/pkg/skills"
)

func TestGetSkillTool(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "deploy")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "---\nname: deploy\ndescription: deployment helper\n---\n\nStep one."
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := skills.NewLoader(root)
	if _, err := loader.Discover(); err != nil {
		t.Fatal(err)
	}
	tool := NewGetSkillTool(loader)

	result := tool.Execute(context.Background(), map[string]any{"skill_name": "deploy"})
	if !result.Success {
		t.Fatalf("Lookup failed: %s", result.Error)
	}
	if !strings.HasPrefix(result.Content, "# Skill: deploy\n\ndeployment helper\n\n---\n\n") {
		t.Errorf("Unexpected rendering: %q", result.Content)
	}
	if !strings.Contains(result.Content, "Step one.") {
		t.Errorf("Body missing: %q", result.Content)
	}
}

func TestGetSkillToolNotFound(t *testing.T) {
	tool := NewGetSkillTool(skills.NewLoader(t.TempDir()))
	result := tool.Execute(context.Background(), map[string]any{"skill_name": "ghost"})
	if result.Success {
		t.Fatal("Expected failure for an unknown skill")
	}
	if result.Error != "Skill 'ghost' not found" {
		t.Errorf("Unexpected error: %q", result.Error)
	}
}
