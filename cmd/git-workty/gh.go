package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

type PRCIState string

const (
	PRCINone       PRCIState = "none"
	PRCIInProgress PRCIState = "in_progress"
	PRCIFail       PRCIState = "fail"
	PRCISuccess    PRCIState = "success"
)

// PRInfo is what `git workty pr` needs to know about a pull request.
type PRInfo struct {
	Number      int       `json:"number"`
	URL         string    `json:"url"`
	Branch      string    `json:"branch"`
	Status      string    `json:"status"`
	CIState     PRCIState `json:"ci_state"`
	CICompleted int       `json:"ci_completed"`
	CITotal     int       `json:"ci_total"`
}

type ghPR struct {
	Number            int       `json:"number"`
	URL               string    `json:"url"`
	HeadRefName       string    `json:"headRefName"`
	State             string    `json:"state"`
	MergedAt          string    `json:"mergedAt"`
	StatusCheckRollup []ghCheck `json:"statusCheckRollup"`
}

type ghCheck struct {
	Conclusion string `json:"conclusion"`
	Status     string `json:"status"`
}

// ghRunner runs gh in dir and returns stdout. Swapped in tests.
type ghRunner func(dir string, args ...string) ([]byte, error)

var ghLookPath = exec.LookPath

func execGH(dir string, args ...string) ([]byte, error) {
	ghPath, err := ghLookPath("gh")
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(ghPath, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
		}
		return nil, err
	}
	return out, nil
}

type GHClient struct {
	dir string
	run ghRunner
}

func newGHClient(dir string, run ghRunner) *GHClient {
	if run == nil {
		run = execGH
	}
	return &GHClient{dir: dir, run: run}
}

// Ready fails when gh is missing or not logged in.
func (c *GHClient) Ready() error {
	if _, err := c.run(c.dir, "--version"); err != nil {
		return &ghSetupError{msg: "GitHub CLI (gh) is not installed", hint: "Install it from https://cli.github.com/ to use pull request worktrees.", err: err}
	}
	if _, err := c.run(c.dir, "auth", "status"); err != nil {
		return &ghSetupError{msg: "GitHub CLI is not authenticated", hint: "Run `gh auth login`.", err: err}
	}
	return nil
}

// PullRequest looks up PR number, in repo ("owner/name") when set.
func (c *GHClient) PullRequest(number int, repo string) (PRInfo, error) {
	args := []string{"pr", "view", strconv.Itoa(number), "--json", "number,url,headRefName,state,mergedAt,statusCheckRollup"}
	if repo != "" {
		args = append(args, "--repo", repo)
	}
	out, err := c.run(c.dir, args...)
	if err != nil {
		return PRInfo{}, fmt.Errorf("gh pr view %d: %w", number, err)
	}
	var pr ghPR
	if err := json.Unmarshal(out, &pr); err != nil {
		return PRInfo{}, fmt.Errorf("gh pr view %d: %w", number, err)
	}
	ciState, ciDone, ciTotal := summarizeCI(pr.StatusCheckRollup)
	return PRInfo{
		Number:      pr.Number,
		URL:         strings.TrimSpace(pr.URL),
		Branch:      strings.TrimSpace(pr.HeadRefName),
		Status:      normalizePRStatus(pr.State, pr.MergedAt),
		CIState:     ciState,
		CICompleted: ciDone,
		CITotal:     ciTotal,
	}, nil
}

type ghSetupError struct {
	msg  string
	hint string
	err  error
}

func (e *ghSetupError) Error() string { return e.msg }
func (e *ghSetupError) Unwrap() error { return e.err }
func (e *ghSetupError) Hint() string  { return e.hint }

func normalizePRStatus(state string, mergedAt string) string {
	if strings.TrimSpace(mergedAt) != "" {
		return "merged"
	}
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "OPEN":
		return "open"
	case "CLOSED":
		return "closed"
	case "MERGED":
		return "merged"
	default:
		return "-"
	}
}

// summarizeCI folds a status check rollup into one state. A failed check
// wins over running ones; entries without status or conclusion are ignored.
func summarizeCI(checks []ghCheck) (PRCIState, int, int) {
	var completed, total int
	var failed, pending bool
	for _, c := range checks {
		status := strings.ToUpper(strings.TrimSpace(c.Status))
		conclusion := strings.ToUpper(strings.TrimSpace(c.Conclusion))
		if status == "" && conclusion == "" {
			continue
		}
		total++
		if conclusion == "" || (status != "" && status != "COMPLETED") {
			pending = true
		}
		if conclusion == "" {
			continue
		}
		completed++
		if conclusion != "SUCCESS" && conclusion != "SKIPPED" && conclusion != "NEUTRAL" {
			failed = true
		}
	}
	switch {
	case total == 0:
		return PRCINone, 0, 0
	case failed:
		return PRCIFail, completed, total
	case pending:
		return PRCIInProgress, completed, total
	}
	return PRCISuccess, completed, total
}

// Summary is the one-line description `git workty pr` prints to stderr.
func (p PRInfo) Summary() string {
	var checks string
	switch p.CIState {
	case PRCISuccess:
		checks = fmt.Sprintf("checks passing (%d/%d)", p.CICompleted, p.CITotal)
	case PRCIFail:
		checks = fmt.Sprintf("checks failing (%d/%d done)", p.CICompleted, p.CITotal)
	case PRCIInProgress:
		checks = fmt.Sprintf("checks running (%d/%d done)", p.CICompleted, p.CITotal)
	default:
		checks = "no checks"
	}
	line := fmt.Sprintf("PR #%d %s, %s, branch %s", p.Number, p.Status, checks, p.Branch)
	if p.URL != "" {
		line += "\n  " + p.URL
	}
	return line
}

// githubRepoFromRemote turns an origin URL into "owner/name", or "" when
// origin is not on github.com.
func githubRepoFromRemote(remote string) string {
	remote = strings.TrimSpace(remote)
	var path string
	for _, prefix := range []string{"git@github.com:", "ssh://git@github.com/", "https://github.com/", "http://github.com/"} {
		if strings.HasPrefix(remote, prefix) {
			path = strings.TrimPrefix(remote, prefix)
			break
		}
	}
	owner, name, err := splitOwnerRepo(path)
	if err != nil {
		return ""
	}
	return owner + "/" + name
}

func splitOwnerRepo(path string) (string, string, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", "", errors.New("invalid github repo path")
	}
	owner := parts[0]
	repo := parts[1]
	if owner == "" || repo == "" {
		return "", "", errors.New("invalid github repo path")
	}
	return owner, filepath.Base(repo), nil
}
