package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSkill(t *testing.T, root, dir, content string) string {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return skillDir
}

func TestDiscoverParsesFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "greeting", `---
name: greeting
description: Say hello in many languages
---

# Greeting

Start with a friendly hello.`)

	loader := NewLoader(root)
	n, err := loader.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected 1 skill, got %d", n)
	}

	skill, ok := loader.Get("greeting")
	if !ok {
		t.Fatal("Skill 'greeting' not found")
	}
	if skill.Description != "Say hello in many languages" {
		t.Errorf("Unexpected description: %q", skill.Description)
	}
	if !strings.Contains(skill.Content, "friendly hello") {
		t.Errorf("Body missing: %q", skill.Content)
	}
	if strings.Contains(skill.Content, "---") {
		t.Errorf("Frontmatter leaked into body: %q", skill.Content)
	}
}

func TestDiscoverSkipsMalformedFiles(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "good", "---\nname: good\ndescription: ok\n---\n\nbody")
	writeSkill(t, root, "bad", "no frontmatter here")
	writeSkill(t, root, "unnamed", "---\ndescription: nameless\n---\n\nbody")

	loader := NewLoader(root)
	n, err := loader.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected only the well-formed skill, got %d", n)
	}
}

func TestDiscoverMissingRootIsEmpty(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	n, err := loader.Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 skills, got %d", n)
	}
}

func TestMetadataPrompt(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "alpha", "---\nname: alpha\ndescription: first\n---\n\nbody")
	writeSkill(t, root, "beta", "---\nname: beta\ndescription: second\n---\n\nbody")

	loader := NewLoader(root)
	if _, err := loader.Discover(); err != nil {
		t.Fatal(err)
	}

	prompt := loader.MetadataPrompt()
	if !strings.HasPrefix(prompt, "## Available Skills\n") {
		t.Errorf("Unexpected prompt header: %q", prompt)
	}
	if !strings.Contains(prompt, "- `alpha`: first\n") || !strings.Contains(prompt, "- `beta`: second\n") {
		t.Errorf("Catalog entries missing: %q", prompt)
	}

	empty := NewLoader(t.TempDir())
	if empty.MetadataPrompt() != "" {
		t.Error("Empty loader should render an empty catalog")
	}
}

func TestRewritePathsForExistingResources(t *testing.T) {
	root := t.TempDir()
	skillDir := writeSkill(t, root, "deploy", `---
name: deploy
description: deployment helper
---

Run `+"`scripts/deploy.sh`"+` to start. For details see guide.md, then continue.
Also `+"`scripts/missing.sh`"+` and see absent.md, if curious.`)

	scriptsDir := filepath.Join(skillDir, "scripts")
	if err := os.MkdirAll(scriptsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scriptsDir, "deploy.sh"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "guide.md"), []byte("# guide"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(root)
	if _, err := loader.Discover(); err != nil {
		t.Fatal(err)
	}
	skill, _ := loader.Get("deploy")

	if !strings.Contains(skill.Content, "`"+filepath.Join(scriptsDir, "deploy.sh")+"`") {
		t.Errorf("Existing script path not rewritten: %q", skill.Content)
	}
	if !strings.Contains(skill.Content, filepath.Join(skillDir, "guide.md")) {
		t.Errorf("Existing doc reference not rewritten: %q", skill.Content)
	}
	if !strings.Contains(skill.Content, "`scripts/missing.sh`") {
		t.Errorf("Missing script should stay relative: %q", skill.Content)
	}
	if !strings.Contains(skill.Content, "see absent.md,") {
		t.Errorf("Missing doc should stay untouched: %q", skill.Content)
	}
}
