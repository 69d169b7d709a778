package main

import (
	"fmt"

	"github.com/mrbonezy/workty/logging"
	"github.com/mrbonezy/workty/worktree"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// configView is what `config show` reports.
type configView struct {
	Path   string          `json:"path"`
	Exists bool            `json:"exists"`
	Config worktree.Config `json:"config"`
}

func newConfigCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the repository config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, opts)
		},
	}
	cmd.AddCommand(newConfigShowCommand(opts), newConfigInitCommand(opts))
	return cmd
}

func newConfigShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config and where it is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, opts)
		},
	}
}

func runConfigShow(cmd *cobra.Command, opts *globalOptions) error {
	engine, err := opts.openEngine()
	if err != nil {
		return err
	}
	path := worktree.ConfigPath(engine.Repo())
	exists, err := worktree.ConfigExists(engine.Repo())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, configView{Path: path, Exists: exists, Config: engine.Config()})
	}
	data, err := toml.Marshal(engine.Config())
	if err != nil {
		return err
	}
	source := path
	if !exists {
		source += " (not created, showing defaults)"
	}
	fmt.Fprintln(out, "# "+source)
	_, err = out.Write(data)
	return err
}

func newConfigInitCommand(opts *globalOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := opts.workDir()
			if err != nil {
				return err
			}
			repo, err := worktree.OpenRepo(dir, logging.Logger)
			if err != nil {
				return err
			}
			path := worktree.ConfigPath(repo)
			exists, err := worktree.ConfigExists(repo)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("config already exists at %s; use --force to overwrite", path)
			}
			if err := worktree.SaveConfig(path, worktree.DefaultConfig()); err != nil {
				return err
			}
			logging.Logger.Info("config written", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
