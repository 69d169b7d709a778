package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mrbonezy/workty/logging"
	"github.com/mrbonezy/workty/worktree"
	"github.com/spf13/cobra"
)

// ghRunnerFn is swapped in tests.
var ghRunnerFn ghRunner = execGH

// prResult is the --json shape of `git workty pr`.
type prResult struct {
	worktree.LifecycleResult
	PullRequest *PRInfo `json:"pull_request,omitempty"`
}

func prBranchName(number int) string {
	return "pr-" + strconv.Itoa(number)
}

func newPRCommand(opts *globalOptions) *cobra.Command {
	var printPath bool
	var open bool
	cmd := &cobra.Command{
		Use:   "pr <number>",
		Short: "Create a worktree for a GitHub pull request (requires gh)",
		Example: `  git workty pr 123
  cd "$(git workty pr 123 --print-path)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || number <= 0 {
				return fmt.Errorf("invalid pull request number %q", args[0])
			}
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}
			res, pr, err := runPR(cmd, engine, number)
			if err != nil {
				return err
			}
			return reportCreated(cmd, opts, engine.Config(), res, prResult{LifecycleResult: res, PullRequest: pr}, printPath, open)
		},
	}
	cmd.Flags().BoolVar(&printPath, "print-path", false, "Print only the worktree path to stdout")
	cmd.Flags().BoolVarP(&open, "open", "o", false, "Run open_cmd on the worktree")
	return cmd
}

// runPR reuses an existing pr-<n> worktree, otherwise fetches the pull
// request head and creates pr-<n> from it. The PR is nil when reused.
func runPR(cmd *cobra.Command, engine *worktree.Engine, number int) (worktree.LifecycleResult, *PRInfo, error) {
	branch := prBranchName(number)
	records, err := engine.Discover()
	if err != nil {
		return worktree.LifecycleResult{}, nil, err
	}
	rec, err := worktree.Find(records, branch)
	if err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "PR #%d already has a worktree at %s\n", number, rec.Path)
		return worktree.LifecycleResult{Kind: worktree.ResultSkipped, Path: rec.Path, Branch: branch, Reason: "exists"}, nil, nil
	}
	var notFound *worktree.WorktreeNotFoundError
	if !errors.As(err, &notFound) {
		return worktree.LifecycleResult{}, nil, err
	}

	repo := engine.Repo()
	gh := newGHClient(repo.Root, ghRunnerFn)
	if err := gh.Ready(); err != nil {
		return worktree.LifecycleResult{}, nil, err
	}
	pr, err := gh.PullRequest(number, githubRepoFromRemote(repo.OriginURL()))
	if err != nil {
		return worktree.LifecycleResult{}, nil, err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), pr.Summary())

	head, err := repo.Fetch("origin", fmt.Sprintf("pull/%d/head", number))
	if err != nil {
		return worktree.LifecycleResult{}, nil, fmt.Errorf("fetch pull request %d: %w", number, err)
	}
	logging.Logger.Debug("pull request fetched", "number", number, "head", head, "branch", pr.Branch, "ci", pr.CIState)
	res, err := engine.Create(branch, worktree.CreateOptions{From: head})
	if err != nil {
		return worktree.LifecycleResult{}, nil, err
	}
	return res, &pr, nil
}
