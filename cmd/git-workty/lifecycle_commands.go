package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mrbonezy/workty/logging"
	"github.com/mrbonezy/workty/ui"
	"github.com/mrbonezy/workty/worktree"
	"github.com/spf13/cobra"
)

type newOptions struct {
	from      string
	path      string
	printPath bool
	open      bool
}

func newNewCommand(opts *globalOptions) *cobra.Command {
	var o newOptions
	cmd := &cobra.Command{
		Use:   "new <branch>",
		Short: "Create a worktree for a branch",
		Example: `  git workty new feat/login
  git workty new hotfix --from main
  cd "$(git workty new feature --print-path)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}
			res, err := engine.Create(args[0], worktree.CreateOptions{From: o.from, Path: o.path})
			if err != nil {
				return err
			}
			return reportCreated(cmd, opts, engine.Config(), res, nil, o.printPath, o.open)
		},
	}
	cmd.Flags().StringVarP(&o.from, "from", "f", "", "Start a new branch from this branch or commit")
	cmd.Flags().StringVarP(&o.path, "path", "p", "", "Create the worktree at this path instead of the configured one")
	cmd.Flags().BoolVar(&o.printPath, "print-path", false, "Print only the created path to stdout")
	cmd.Flags().BoolVarP(&o.open, "open", "o", false, "Run open_cmd on the new worktree")
	return cmd
}

// reportCreated prints res; payload, when set, replaces res as the --json
// document.
func reportCreated(cmd *cobra.Command, opts *globalOptions, cfg worktree.Config, res worktree.LifecycleResult, payload any, printPath bool, open bool) error {
	out := cmd.OutOrStdout()
	if payload == nil {
		payload = res
	}
	switch {
	case opts.json:
		if err := writeJSON(out, payload); err != nil {
			return err
		}
	case printPath:
		fmt.Fprintln(out, res.Path)
	case res.Kind == worktree.ResultSkipped:
		fmt.Fprintln(out, "Using existing worktree for "+res.Branch+" at "+res.Path)
	default:
		fmt.Fprintln(out, opts.styles().OK("Created worktree for "+res.Branch+" at "+res.Path))
	}
	if open {
		if err := openWorktree(cfg.OpenCmd, res.Path); err != nil {
			logging.Logger.Warn("open_cmd failed", "path", res.Path, "err", err)
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
		}
	}
	return nil
}

func newRmCommand(opts *globalOptions) *cobra.Command {
	var ro worktree.RemoveOptions
	cmd := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a worktree",
		Example: `  git workty rm feat/login
  git workty rm feat/login --delete-branch
  git workty rm feat/login --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}
			what := "worktree " + args[0]
			if ro.DeleteBranch {
				what += " and its branch"
			}
			if err := confirmAction(opts, "Remove "+what+"?", ""); err != nil {
				return err
			}
			res, err := engine.Remove(args[0], ro)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), opts, []worktree.LifecycleResult{res}, "")
		},
		ValidArgsFunction: worktreeNameCompletion(opts),
	}
	cmd.Flags().BoolVarP(&ro.Force, "force", "f", false, "Remove even with uncommitted changes")
	cmd.Flags().BoolVarP(&ro.DeleteBranch, "delete-branch", "d", false, "Also delete the branch")
	return cmd
}

func newCleanCommand(opts *globalOptions) *cobra.Command {
	var c worktree.CleanCriteria
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove merged, gone or stale worktrees",
		Long: `Remove worktrees whose branch is merged into the base branch, whose
upstream is gone or whose last commit is older than --stale-days. With no
criterion, --merged is assumed. Dirty and locked worktrees are skipped.`,
		Example: `  git workty clean --dry-run
  git workty clean --merged --gone --yes
  git workty clean --stale-days 30 --delete-branch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}
			return runClean(cmd, opts, engine, c)
		},
	}
	cmd.Flags().BoolVar(&c.Merged, "merged", false, "Select worktrees merged into the base branch")
	cmd.Flags().BoolVar(&c.Gone, "gone", false, "Select worktrees whose upstream branch was deleted")
	cmd.Flags().IntVar(&c.StaleDays, "stale-days", 0, "Select worktrees with no commit in this many days")
	cmd.Flags().BoolVarP(&c.DryRun, "dry-run", "n", false, "Show what would be removed")
	cmd.Flags().BoolVarP(&c.Force, "force", "f", false, "Also remove dirty worktrees")
	cmd.Flags().BoolVarP(&c.DeleteBranch, "delete-branch", "d", false, "Also delete removed branches")
	return cmd
}

func runClean(cmd *cobra.Command, opts *globalOptions, engine *worktree.Engine, c worktree.CleanCriteria) error {
	out := cmd.OutOrStdout()
	if !c.DryRun && !opts.yes {
		preview := c
		preview.DryRun = true
		planned, err := engine.Clean(preview)
		if err != nil {
			return err
		}
		if countKind(planned, worktree.ResultPlanned) == 0 {
			return printResults(out, opts, planned, "No worktrees to clean up.")
		}
		if err := printResults(cmd.ErrOrStderr(), opts, planned, ""); err != nil {
			return err
		}
		if !stdinInteractive() {
			return errNeedsYes
		}
		if err := confirmAction(opts, fmt.Sprintf("Remove %d worktree(s)?", countKind(planned, worktree.ResultPlanned)), ""); err != nil {
			return err
		}
	}
	results, err := engine.Clean(c)
	if err != nil {
		return err
	}
	if err := printResults(out, opts, results, "No worktrees to clean up."); err != nil {
		return err
	}
	if n := countKind(results, worktree.ResultFailed); n > 0 {
		return &exitError{code: exitFailure, msg: fmt.Sprintf("%d worktree(s) could not be removed", n)}
	}
	return nil
}

func countKind(results []worktree.LifecycleResult, kind worktree.ResultKind) int {
	n := 0
	for _, r := range results {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// jsonResult adds the error text, which LifecycleResult leaves out of JSON.
type jsonResult struct {
	worktree.LifecycleResult
	Error string `json:"error,omitempty"`
}

func printResults(w io.Writer, opts *globalOptions, results []worktree.LifecycleResult, emptyMessage string) error {
	if opts.json {
		out := make([]jsonResult, 0, len(results))
		for _, r := range results {
			jr := jsonResult{LifecycleResult: r}
			if r.Err != nil {
				jr.Error = r.Err.Error()
			}
			out = append(out, jr)
		}
		return writeJSON(w, out)
	}
	home, _ := os.UserHomeDir()
	rows := make([]ui.ResultRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.BuildResultRow(r, home))
	}
	if _, err := io.WriteString(w, ui.RenderResults(rows, emptyMessage, opts.styles())); err != nil {
		return err
	}
	if len(results) > 1 {
		fmt.Fprintln(w, opts.styles().Secondary(ui.SummarizeResults(results)))
	}
	return nil
}
