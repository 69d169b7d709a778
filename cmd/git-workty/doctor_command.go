package main

import (
	"io"

	"github.com/mrbonezy/workty/logging"
	"github.com/mrbonezy/workty/ui"
	"github.com/mrbonezy/workty/worktree"
	"github.com/spf13/cobra"
)

func newDoctorCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose git, config and worktree problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := opts.workDir()
			if err != nil {
				return err
			}
			findings := worktree.Diagnose(dir, worktree.Options{Logger: logging.Logger, WorkDir: dir})
			out := cmd.OutOrStdout()
			if opts.json {
				err = writeJSON(out, findings)
			} else {
				_, err = io.WriteString(out, ui.RenderFindings(findings, opts.styles(), opts.icons()))
			}
			if err != nil {
				return err
			}
			if worktree.HasErrors(findings) {
				return &exitError{code: exitFailure}
			}
			return nil
		},
	}
}
