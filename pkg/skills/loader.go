// Package skills loads reusable skill documents: directories containing a
// SKILL.md with YAML frontmatter (name, description) and a markdown body.
// Skill metadata goes into the system prompt; full bodies are fetched on
// demand through the get_skill tool.
package skills

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Latias94/miniagent/pkg/logger"
)

type Skill struct {
	Name        string
	Description string
	Content     string
}

type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Loader struct {
	root   string
	mu     sync.RWMutex
	loaded map[string]Skill
}

func NewLoader(root string) *Loader {
	return &Loader{root: root, loaded: make(map[string]Skill)}
}

// Discover walks the root for SKILL.md files and loads each. Files that
// fail to parse are skipped, not fatal.
func (l *Loader) Discover() (int, error) {
	if _, err := os.Stat(l.root); err != nil {
		return 0, nil
	}
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == "SKILL.md" {
			if loadErr := l.loadFile(path); loadErr != nil {
				logger.WarnCF("skills", "Skipping skill file", map[string]any{
					"path":  path,
					"error": loadErr.Error(),
				})
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk skills dir: %w", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.loaded), nil
}

var frontmatterRe = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n(.*)\z`)

func (l *Loader) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m := frontmatterRe.FindSubmatch(data)
	if m == nil {
		return fmt.Errorf("no frontmatter in %s", path)
	}

	var meta frontmatter
	if err := yaml.Unmarshal(m[1], &meta); err != nil {
		return fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Name == "" {
		return fmt.Errorf("skill %s has no name", path)
	}

	body := strings.TrimSpace(string(m[2]))
	body = rewriteSkillPaths(body, filepath.Dir(path))

	l.mu.Lock()
	l.loaded[meta.Name] = Skill{
		Name:        meta.Name,
		Description: meta.Description,
		Content:     body,
	}
	l.mu.Unlock()
	return nil
}

func (l *Loader) List() []Skill {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.loaded))
	for name := range l.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Skill, 0, len(names))
	for _, name := range names {
		out = append(out, l.loaded[name])
	}
	return out
}

func (l *Loader) Get(name string) (Skill, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.loaded[name]
	return s, ok
}

// MetadataPrompt renders the skill catalog section substituted into the
// system prompt.
func (l *Loader) MetadataPrompt() string {
	skills := l.List()
	if len(skills) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Available Skills\n")
	for _, s := range skills {
		fmt.Fprintf(&sb, "- `%s`: %s\n", s.Name, s.Description)
	}
	return sb.String()
}

var (
	// `scripts/run.py` style backticked relative resources
	backtickPathRe = regexp.MustCompile("`((?:scripts|examples|templates|reference)/[^\\s`)]+)`")
	// "see guide.md" style verb references
	docVerbRe = regexp.MustCompile(`(?i)((?:see|read|refer to|check)\s+)([A-Za-z0-9_-]+\.(?:md|txt|json|yaml))([.,;\s])`)
	// markdown links to local documents
	mdLinkRe = regexp.MustCompile(`(?i)\[([^\]]+)\]\(((?:\./)?[^)]+\.(?:md|txt|json|yaml|js|py|html))\)`)
)

// rewriteSkillPaths turns relative resource references inside a skill body
// into absolute paths so the model can hand them straight to read_file or
// bash. References to files that do not exist are left untouched.
func rewriteSkillPaths(content, skillDir string) string {
	content = backtickPathRe.ReplaceAllStringFunc(content, func(match string) string {
		rel := strings.Trim(match, "`")
		abs := filepath.Join(skillDir, rel)
		if _, err := os.Stat(abs); err != nil {
			return match
		}
		return "`" + abs + "`"
	})

	content = docVerbRe.ReplaceAllStringFunc(content, func(match string) string {
		m := docVerbRe.FindStringSubmatch(match)
		abs := filepath.Join(skillDir, m[2])
		if _, err := os.Stat(abs); err != nil {
			return match
		}
		return fmt.Sprintf("%s`%s` (use read_file to access)%s", m[1], abs, m[3])
	})

	content = mdLinkRe.ReplaceAllStringFunc(content, func(match string) string {
		m := mdLinkRe.FindStringSubmatch(match)
		rel := strings.TrimPrefix(m[2], "./")
		abs := filepath.Join(skillDir, rel)
		if _, err := os.Stat(abs); err != nil {
			return match
		}
		return fmt.Sprintf("[%s](`%s`) (use read_file to access)", m[1], abs)
	})

	return content
}
