package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Latias94/miniagent/pkg/config"
	"github.com/Latias94/miniagent/pkg/skills"
)

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List and inspect discovered skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := discoverSkills()
			if err != nil {
				return err
			}
			all := loader.List()
			if len(all) == 0 {
				fmt.Println("No skills found.")
				return nil
			}
			for _, s := range all {
				fmt.Printf("%-24s %s\n", s.Name, s.Description)
			}
			return nil
		},
	}

	cmd.AddCommand(newSkillsFetchCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a skill's full content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := discoverSkills()
			if err != nil {
				return err
			}
			skill, ok := loader.Get(args[0])
			if !ok {
				return fmt.Errorf("skill %q not found", args[0])
			}
			fmt.Printf("# %s\n\n%s\n\n%s\n", skill.Name, skill.Description, skill.Content)
			return nil
		},
	})

	return cmd
}

func newSkillsFetchCmd() *cobra.Command {
	var source, dest string
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Install or update a skills repository via git",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := dest
			if target == "" {
				target = skills.DefaultInstallDir()
			}
			if err := skills.FetchOrUpdate(cmd.Context(), source, config.ExpandHome(target), force); err != nil {
				return err
			}
			fmt.Printf("Installed skills at %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", skills.DefaultSkillSource, "source git repo URL")
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory (default ~/.miniagent/skills)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite a non-repo destination")
	return cmd
}

func discoverSkills() (*skills.Loader, error) {
	cfg, err := loadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	loader := skills.NewLoader(cfg.Tools.SkillsDir)
	if _, err := loader.Discover(); err != nil {
		return nil, err
	}
	return loader, nil
}
