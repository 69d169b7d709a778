package worktree

import (
	"fmt"
	"strings"
)

// Hinter is implemented by errors that know the next step a user should take.
type Hinter interface {
	Hint() string
}

type GitUnavailableError struct {
	Err error
}

func (e *GitUnavailableError) Error() string {
	if e.Err == nil {
		return "git not installed"
	}
	return fmt.Sprintf("git not installed: %v", e.Err)
}

func (e *GitUnavailableError) Unwrap() error { return e.Err }

func (e *GitUnavailableError) Hint() string {
	return "Install git and make sure it is on PATH."
}

type GitNotRepoError struct {
	Dir string
	Err error
}

func (e *GitNotRepoError) Error() string {
	return fmt.Sprintf("not in a git repository: %s", e.Dir)
}

func (e *GitNotRepoError) Unwrap() error { return e.Err }

func (e *GitNotRepoError) Hint() string {
	return "Run this command from inside a Git repository, or pass -C <path>."
}

type BranchAlreadyCheckedOutError struct {
	Branch string
	Path   string
}

func (e *BranchAlreadyCheckedOutError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("branch %q is already checked out in another worktree", e.Branch)
	}
	return fmt.Sprintf("branch %q is already checked out at %s", e.Branch, e.Path)
}

func (e *BranchAlreadyCheckedOutError) Hint() string {
	return fmt.Sprintf("Use `git workty go %s` to switch to it.", e.Branch)
}

type DirtyWorktreeError struct {
	Path   string
	Branch string
}

func (e *DirtyWorktreeError) Error() string {
	return fmt.Sprintf("worktree %s has uncommitted changes", e.Path)
}

func (e *DirtyWorktreeError) Hint() string {
	return "Commit or stash the changes first, or pass --force to remove anyway."
}

type PathCollisionError struct {
	Path string
	// Branch is the branch that asked for Path.
	Branch string
	// Existing is the branch already registered at Path, empty for an
	// unregistered directory.
	Existing string
}

func (e *PathCollisionError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("path %s is already used by the worktree for %q", e.Path, e.Existing)
	}
	return fmt.Sprintf("directory already exists: %s", e.Path)
}

func (e *PathCollisionError) Hint() string {
	return "Use --path to choose a different location, or remove the existing directory."
}

type WorktreeNotFoundError struct {
	Name string
}

func (e *WorktreeNotFoundError) Error() string {
	return fmt.Sprintf("worktree %q not found", e.Name)
}

func (e *WorktreeNotFoundError) Hint() string {
	return "Use `git workty list` to see available worktrees."
}

// WorktreeLockedError reports lock contention. It is retryable by the
// caller; the engine never retries on its own.
type WorktreeLockedError struct {
	Path   string
	Reason string
	Err    error
}

func (e *WorktreeLockedError) Error() string {
	msg := fmt.Sprintf("worktree locked: %s", e.Path)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *WorktreeLockedError) Unwrap() error { return e.Err }

func (e *WorktreeLockedError) Hint() string {
	return "Another git or git-workty process holds the lock. Retry once it finishes, or run `git worktree unlock` if the lock is stale."
}

type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

func (e *ConfigParseError) Hint() string {
	return "Fix the file or remove it to fall back to defaults. Run `git workty doctor` for details."
}

type PrimaryWorktreeError struct {
	Path string
}

func (e *PrimaryWorktreeError) Error() string {
	return fmt.Sprintf("cannot remove the main worktree %s", e.Path)
}

func (e *PrimaryWorktreeError) Hint() string {
	return "The main worktree is the original repository checkout."
}

type CurrentWorktreeError struct {
	Path string
}

func (e *CurrentWorktreeError) Error() string {
	return fmt.Sprintf("cannot remove the current worktree %s", e.Path)
}

func (e *CurrentWorktreeError) Hint() string {
	return "Change to a different worktree first with `wcd` or `git workty go`."
}

type BaseBranchNotFoundError struct {
	Base string
	Err  error
}

func (e *BaseBranchNotFoundError) Error() string {
	return fmt.Sprintf("base branch %q not found", e.Base)
}

func (e *BaseBranchNotFoundError) Unwrap() error { return e.Err }

func (e *BaseBranchNotFoundError) Hint() string {
	return "Set base_branch in workty.toml to an existing branch."
}

// GitCommandError is the underlying cause for failed git invocations.
type GitCommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitCommandError) Error() string {
	msg := "git " + strings.Join(e.Args, " ") + " failed"
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *GitCommandError) Unwrap() error { return e.Err }
