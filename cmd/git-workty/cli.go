package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrbonezy/workty/logging"
	"github.com/mrbonezy/workty/ui"
	"github.com/mrbonezy/workty/worktree"
	"github.com/spf13/cobra"
)

const rootLong = `Git worktrees as daily-driver workspaces.

git-workty treats each worktree like a tab: switch context without stashing,
see everything in flight on a dashboard and clean up merged work safely.`

const rootExample = `  git workty                    Show the dashboard
  git workty new feat/login     Create a worktree for feat/login
  git workty go feat/login      Print the path of feat/login
  git workty pick               Choose a worktree interactively
  git workty rm feat/login      Remove the feat/login worktree
  git workty clean --merged     Remove every merged worktree

Shell integration (wcd, wnew and wgo):
  eval "$(git workty init zsh)"`

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	dir     string
	yes     bool
	json    bool
	ascii   bool
	noColor bool
	debug   bool
}

func newRootCommand(args []string) *cobra.Command {
	opts := &globalOptions{}
	var showVersion bool
	root := &cobra.Command{
		Use:           "git-workty",
		Short:         "Git worktrees as daily-driver workspaces",
		Long:          rootLong,
		Example:       rootExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.Initialize(opts.debug)
			if err != nil {
				return err
			}
			if path != "" {
				logging.Logger.Debug("command started", "command", cmd.CommandPath(), "dir", opts.dir)
			}
			ui.ConfigureColor(opts.colorEnabled())
			return nil
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), "git-workty "+currentVersion())
				return nil
			}
			return runList(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.dir, "directory", "C", "", "Run as if started in `path`")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Assume yes to prompts")
	flags.BoolVar(&opts.json, "json", false, "Print JSON instead of text")
	flags.BoolVar(&opts.ascii, "ascii", false, "Use ASCII-only symbols")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")
	flags.BoolVar(&opts.debug, "debug", false, "Write a JSON debug log under ~/.workty/logs")
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Print git-workty version and exit")

	root.AddCommand(
		newListCommand(opts),
		newNewCommand(opts),
		newGoCommand(opts),
		newPickCommand(opts),
		newRmCommand(opts),
		newCleanCommand(opts),
		newDoctorCommand(opts),
		newInitCommand(),
		newPRCommand(opts),
		newConfigCommand(opts),
		newCompletionCommand(),
		newManCommand(),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root
}

func (o *globalOptions) colorEnabled() bool {
	if o.json {
		return false
	}
	return ui.ColorEnabled(o.noColor || noColorEnv())
}

func (o *globalOptions) styles() ui.Styles {
	if !o.colorEnabled() {
		return ui.PlainStyles()
	}
	return ui.NewStyles(true)
}

func (o *globalOptions) icons() ui.Icons {
	return ui.IconSet(o.ascii)
}

// workDir is the -C directory made absolute, or the process working
// directory.
func (o *globalOptions) workDir() (string, error) {
	dir := strings.TrimSpace(o.dir)
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// openEngine discovers the repository, loads its config and builds the
// engine every repository command runs against.
func (o *globalOptions) openEngine() (*worktree.Engine, error) {
	dir, err := o.workDir()
	if err != nil {
		return nil, err
	}
	repo, err := worktree.OpenRepo(dir, logging.Logger)
	if err != nil {
		return nil, err
	}
	cfg, err := worktree.LoadConfig(repo)
	if err != nil {
		return nil, err
	}
	logging.Logger.Debug("repository opened", "root", repo.Root, "common_dir", repo.CommonDir, "base", cfg.BaseBranch)
	return worktree.New(repo, cfg, worktree.Options{Logger: logging.Logger, WorkDir: dir}), nil
}
