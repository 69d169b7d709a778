package main

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/mrbonezy/workty/ui"
	"github.com/mrbonezy/workty/worktree"
)

const (
	exitFailure   = 1
	exitRefused   = 2
	exitNotFound  = 3
	exitNoRepo    = 4
	exitCancelled = 130
)

// exitError ends the process with code after its message, if any, has
// been printed without the "error:" prefix.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return "exit status"
}

var errCancelled = &exitError{code: exitCancelled, msg: "cancelled"}

// needsYesError refuses a batch removal that nobody can confirm.
type needsYesError struct{}

func (needsYesError) Error() string { return "non-interactive mode requires --yes for destructive operations" }
func (needsYesError) Hint() string  { return "preview with --dry-run, then rerun with --yes" }

var errNeedsYes error = needsYesError{}

func silentMessage(err error) (string, bool) {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.msg, true
	}
	return "", false
}

func hintFor(err error) string {
	var h worktree.Hinter
	if errors.As(err, &h) {
		return h.Hint()
	}
	return ""
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var (
		ee         *exitError
		dirty      *worktree.DirtyWorktreeError
		locked     *worktree.WorktreeLockedError
		checkedOut *worktree.BranchAlreadyCheckedOutError
		collision  *worktree.PathCollisionError
		primary    *worktree.PrimaryWorktreeError
		current    *worktree.CurrentWorktreeError
		notFound   *worktree.WorktreeNotFoundError
		notRepo    *worktree.GitNotRepoError
		noGit      *worktree.GitUnavailableError
	)
	switch {
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, ui.ErrPickCancelled), errors.Is(err, huh.ErrUserAborted):
		return exitCancelled
	case errors.As(err, &dirty), errors.As(err, &locked), errors.As(err, &checkedOut),
		errors.As(err, &collision), errors.As(err, &primary), errors.As(err, &current):
		return exitRefused
	case errors.As(err, &notFound):
		return exitNotFound
	case errors.As(err, &notRepo), errors.As(err, &noGit):
		return exitNoRepo
	}
	return exitFailure
}
