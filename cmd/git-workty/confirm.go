package main

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const confirmFieldKey = "confirm_result"

// confirmFn is swapped in tests.
var confirmFn = runConfirmForm

func worktyHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#7D56F4"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func newConfirmForm(title string, description string, result *bool) *huh.Form {
	confirm := huh.NewConfirm().
		Key(confirmFieldKey).
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(result)

	return huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(worktyHuhTheme()).
		WithShowHelp(false).
		WithOutput(os.Stderr)
}

func runConfirmForm(title string, description string) (bool, error) {
	var ok bool
	if err := newConfirmForm(title, description, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// confirmAction asks before a destructive step. It never prompts when
// --yes was given or stdin is not a terminal.
func confirmAction(opts *globalOptions, title string, description string) error {
	if opts.yes || !stdinInteractive() {
		return nil
	}
	ok, err := confirmFn(title, description)
	if err != nil {
		return err
	}
	if !ok {
		return &exitError{code: exitFailure, msg: "aborted"}
	}
	return nil
}
