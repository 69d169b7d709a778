package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mrbonezy/workty/ui"
	"github.com/mrbonezy/workty/worktree"
	"github.com/spf13/cobra"
)

// listEntry is the --json shape of one dashboard row.
type listEntry struct {
	worktree.WorktreeRecord
	Name    string                 `json:"name"`
	Current bool                   `json:"current"`
	Status  *worktree.BranchStatus `json:"status,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func newListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the dashboard of all worktrees (default)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}
}

func runList(cmd *cobra.Command, opts *globalOptions) error {
	engine, err := opts.openEngine()
	if err != nil {
		return err
	}
	items, err := engine.List()
	if err != nil {
		return err
	}
	current := ""
	records := make([]worktree.WorktreeRecord, 0, len(items))
	for _, a := range items {
		records = append(records, a.Record)
	}
	if rec, ok := engine.Current(records); ok {
		current = rec.Path
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, listEntries(items, current))
	}
	rows := ui.BuildRows(items, current, opts.icons(), time.Now())
	_, err = io.WriteString(out, ui.RenderWorktreeList(rows, opts.styles(), opts.icons()))
	return err
}

func listEntries(items []worktree.Annotated, current string) []listEntry {
	entries := make([]listEntry, 0, len(items))
	for _, a := range items {
		entry := listEntry{
			WorktreeRecord: a.Record,
			Name:           a.Record.Name(),
			Current:        current != "" && a.Record.Path == current,
		}
		if a.Err != nil {
			entry.Error = a.Err.Error()
		} else {
			status := a.Status
			entry.Status = &status
		}
		entries = append(entries, entry)
	}
	return entries
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGoCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "go <name>",
		Short:   "Print the path of a worktree by branch or directory name",
		Example: `  cd "$(git workty go feat/login)"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}
			path, err := engine.Go(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
		ValidArgsFunction: worktreeNameCompletion(opts),
	}
}

func newPickCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "pick",
		Short:   "Choose a worktree interactively and print its path",
		Example: `  cd "$(git workty pick)"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !stdinInteractive() {
				return errors.New("pick needs an interactive terminal; use `git workty go <name>` instead")
			}
			engine, err := opts.openEngine()
			if err != nil {
				return err
			}
			items, err := engine.Candidates()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return errors.New("no worktrees found")
			}
			chosen, err := ui.Pick(pickItems(items, opts.icons()), "Select worktree")
			if errors.Is(err, ui.ErrPickCancelled) {
				return errCancelled
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), chosen.Path)
			return nil
		},
	}
}

func pickItems(items []worktree.Annotated, icons ui.Icons) []ui.PickItem {
	out := make([]ui.PickItem, 0, len(items))
	for _, a := range items {
		detail := ""
		switch {
		case a.Err != nil:
			detail = icons.Missing + " " + a.Err.Error()
		case a.Status.Dirty:
			detail = icons.Dirty + " dirty"
		}
		out = append(out, ui.PickItem{Name: a.Record.Name(), Path: a.Record.Path, Detail: detail})
	}
	return out
}

// worktreeNameCompletion completes branch names of linked worktrees.
func worktreeNameCompletion(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		engine, err := opts.openEngine()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		records, err := engine.Discover()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(records))
		for _, rec := range records {
			names = append(names, rec.Name())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
