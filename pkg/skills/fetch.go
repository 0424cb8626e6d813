package skills

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Latias94/miniagent/pkg/logger"
)

// DefaultSkillSource is the repository fetched when no source is given.
const DefaultSkillSource = "https://github.com/anthropics/skills"

// DefaultInstallDir is where fetched skills land: ~/.miniagent/skills.
func DefaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".miniagent", "skills")
	}
	return filepath.Join(home, ".miniagent", "skills")
}

// FetchOrUpdate installs a skills repository at dest via git. An existing
// git checkout is updated with a fast-forward pull; an existing non-repo
// directory is an error unless force is set, in which case it is replaced
// by a fresh clone.
func FetchOrUpdate(ctx context.Context, source, dest string, force bool) error {
	git, err := exec.LookPath("git")
	if err != nil {
		return fmt.Errorf("git executable not found on PATH; install git or clone manually")
	}

	if _, err := os.Stat(dest); err == nil {
		if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
			logger.InfoCF("skills", "Updating existing skills checkout",
				map[string]any{"dest": dest})
			cmd := exec.CommandContext(ctx, git, "-C", dest, "pull", "--ff-only")
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("git pull in %s: %w", dest, err)
			}
			return nil
		}

		if !force {
			return fmt.Errorf("destination exists and is not a git repo: %s (use --force to overwrite)", dest)
		}
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("remove %s: %w", dest, err)
		}
	}

	if parent := filepath.Dir(dest); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", parent, err)
		}
	}

	logger.InfoCF("skills", "Cloning skills repository",
		map[string]any{"source": source, "dest": dest})
	cmd := exec.CommandContext(ctx, git, "clone", "--depth", "1", source, dest)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone %s: %w", source, err)
	}
	return nil
}
