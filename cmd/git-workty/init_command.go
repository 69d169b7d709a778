package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newInitCommand() *cobra.Command {
	var wrapGit bool
	var noCD bool
	cmd := &cobra.Command{
		Use:       "init <shell>",
		Short:     "Print shell integration (wcd, wnew, wgo)",
		Example:   "  eval \"$(git workty init zsh)\"\n  git workty init fish | source\n  git workty init bash >> ~/.bashrc",
		Args:      cobra.ExactArgs(1),
		ValidArgs: supportedShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := generateInit(args[0], wrapGit, noCD)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), script)
			return err
		},
	}
	cmd.Flags().BoolVar(&wrapGit, "wrap-git", false, "Also define a git wrapper that changes directory after workty go, pick and new")
	cmd.Flags().BoolVar(&noCD, "no-cd", false, "Leave out the wcd, wnew and wgo helpers")
	return cmd
}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "completion <shell>",
		Aliases:   []string{"completions"},
		Short:     "Generate shell completion",
		Example:   "  git workty completion zsh > \"${fpath[1]}/_git-workty\"\n  git workty completion bash > /etc/bash_completion.d/git-workty",
		Args:      cobra.ExactArgs(1),
		ValidArgs: supportedShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell", "pwsh":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			_, err := generateInit(args[0], false, false)
			return err
		},
	}
}

func newManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man <dir>",
		Short:  "Write man pages into dir",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0o755); err != nil {
				return err
			}
			header := &doc.GenManHeader{Title: "GIT-WORKTY", Section: "1", Source: "git-workty " + currentVersion()}
			root := cmd.Root()
			root.DisableAutoGenTag = true
			return doc.GenManTree(root, header, args[0])
		},
	}
}
