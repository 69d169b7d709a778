package worktree

import (
	"bytes"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
)

var lookPath = exec.LookPath

type gitRunner struct {
	bin string
	log *slog.Logger
}

func newGitRunner(log *slog.Logger) (*gitRunner, error) {
	bin, err := lookPath("git")
	if err != nil {
		return nil, &GitUnavailableError{Err: err}
	}
	return &gitRunner{bin: bin, log: log}, nil
}

// output runs git in dir and returns trimmed stdout.
func (g *gitRunner) output(dir string, args ...string) (string, error) {
	out, err := g.raw(dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *gitRunner) run(dir string, args ...string) error {
	_, err := g.raw(dir, args...)
	return err
}

// raw returns stdout untouched; porcelain parsers need leading spaces.
func (g *gitRunner) raw(dir string, args ...string) (string, error) {
	cmd := exec.Command(g.bin, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	g.log.Debug("git", "dir", dir, "args", args, "err", err)
	if err != nil {
		return "", &GitCommandError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    commandErrorWithOutput(err, stderr.Bytes()),
		}
	}
	return stdout.String(), nil
}

// succeeds maps exit status 1 to false, for predicates such as
// `merge-base --is-ancestor`. Any other failure is an error.
func (g *gitRunner) succeeds(dir string, args ...string) (bool, error) {
	_, err := g.raw(dir, args...)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

func commandErrorWithOutput(err error, output []byte) error {
	msg := strings.TrimSpace(string(output))
	if msg == "" {
		return err
	}
	return &wrappedCommandError{msg: msg, err: err}
}

type wrappedCommandError struct {
	msg string
	err error
}

func (e *wrappedCommandError) Error() string { return e.msg }
func (e *wrappedCommandError) Unwrap() error { return e.err }

// classifyGitError turns known git failure messages into the error taxonomy.
// Anything unrecognised is returned unchanged.
func classifyGitError(err error, path string, branch string) error {
	if err == nil {
		return nil
	}
	var cmdErr *GitCommandError
	if !errors.As(err, &cmdErr) {
		return err
	}
	text := cmdErr.Stderr
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "already checked out at"),
		strings.Contains(lower, "is already used by worktree at"):
		return &BranchAlreadyCheckedOutError{Branch: branch, Path: lastQuoted(text)}
	case strings.Contains(lower, "index.lock"),
		strings.Contains(lower, "locked working tree"),
		strings.Contains(lower, "is locked"),
		strings.Contains(lower, "unable to create") && strings.Contains(lower, ".lock"):
		return &WorktreeLockedError{Path: path, Reason: firstLine(text), Err: err}
	case strings.Contains(lower, "not a git repository"):
		return &GitNotRepoError{Dir: path, Err: err}
	}
	return err
}

func lastQuoted(text string) string {
	end := strings.LastIndex(text, "'")
	if end <= 0 {
		return ""
	}
	start := strings.LastIndex(text[:end], "'")
	if start < 0 {
		return ""
	}
	return text[start+1 : end]
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimPrefix(line, "fatal: ")
	line = strings.TrimPrefix(line, "error: ")
	return strings.TrimSpace(line)
}
