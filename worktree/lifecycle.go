package worktree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type ResultKind string

const (
	ResultCreated ResultKind = "created"
	ResultRemoved ResultKind = "removed"
	ResultSkipped ResultKind = "skipped"
	ResultFailed  ResultKind = "failed"
	// ResultPlanned is what a dry run reports instead of removing.
	ResultPlanned ResultKind = "planned"
)

const (
	ReasonDirty  = "dirty"
	ReasonLocked = "locked"
	ReasonMerged = "merged"
	ReasonGone   = "gone"
	ReasonStale  = "stale"
)

// LifecycleResult is the outcome of one create or removal.
type LifecycleResult struct {
	Kind          ResultKind `json:"kind"`
	Path          string     `json:"path"`
	Branch        string     `json:"branch,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Err           error      `json:"-"`
	BranchDeleted bool       `json:"branch_deleted,omitempty"`
	Warning       string     `json:"warning,omitempty"`
}

type CreateOptions struct {
	// From is the start point for a new branch; empty means the base branch.
	From string
	// Path overrides the template-resolved directory.
	Path string
}

type RemoveOptions struct {
	Force        bool
	DeleteBranch bool
}

// CleanCriteria selects worktrees for batch removal. With no criterion
// set, Merged is assumed.
type CleanCriteria struct {
	Merged       bool
	Gone         bool
	StaleDays    int
	Force        bool
	DryRun       bool
	DeleteBranch bool
}

func (c CleanCriteria) normalized() CleanCriteria {
	if !c.Merged && !c.Gone && c.StaleDays <= 0 {
		c.Merged = true
	}
	return c
}

// Create adds a worktree for branch. If the branch is already checked out
// anywhere, nothing is created.
func (e *Engine) Create(branch string, opts CreateOptions) (LifecycleResult, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return LifecycleResult{}, errors.New("branch name required")
	}
	if err := e.repo.git.run(e.gitDir(), "check-ref-format", "--branch", branch); err != nil {
		return LifecycleResult{}, fmt.Errorf("invalid branch name %q: %w", branch, err)
	}

	lock, err := e.locks.Acquire(e.repo)
	if err != nil {
		return LifecycleResult{}, err
	}
	defer lock.Release()

	records, err := e.Discover()
	if err != nil {
		return LifecycleResult{}, err
	}
	if rec, ok := checkedOutAt(records, branch); ok {
		return LifecycleResult{}, &BranchAlreadyCheckedOutError{Branch: branch, Path: rec.Path}
	}

	path, err := e.createPath(branch, opts.Path, records)
	if err != nil {
		return LifecycleResult{}, err
	}

	args := []string{"worktree", "add"}
	remote := "refs/remotes/origin/" + branch
	if e.repo.BranchExists(branch) {
		args = append(args, path, branch)
	} else if _, rerr := e.graph.resolve(remote); rerr == nil && strings.TrimSpace(opts.From) == "" {
		args = append(args, "--track", "-b", branch, path, remote)
	} else {
		start := strings.TrimSpace(opts.From)
		if start == "" {
			if start, err = e.baseRevision(); err != nil {
				return LifecycleResult{}, err
			}
		}
		args = append(args, "-b", branch, path, start)
	}

	created, err := makeParents(filepath.Dir(path))
	if err != nil {
		return LifecycleResult{}, err
	}
	if err := e.repo.git.run(e.gitDir(), args...); err != nil {
		removeCreated(created)
		return LifecycleResult{}, classifyGitError(err, path, branch)
	}
	e.log.Info("worktree created", "branch", branch, "path", path)
	return LifecycleResult{Kind: ResultCreated, Path: path, Branch: branch}, nil
}

func (e *Engine) createPath(branch string, override string, records []WorktreeRecord) (string, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return Resolve(branch, e.cfg, e.repo, records)
	}
	path, err := ExpandTemplate(override, e.repo.templateVars(branch))
	if err != nil {
		abs, absErr := filepath.Abs(override)
		if absErr != nil {
			return "", err
		}
		path = filepath.Clean(abs)
	}
	return path, checkPathFree(path, branch, records)
}

// baseRevision names the ref a new branch starts from when none is given.
func (e *Engine) baseRevision() (string, error) {
	var lastErr error
	for _, rev := range baseCandidates(e.cfg.BaseBranch) {
		_, err := e.graph.resolve(rev)
		if err == nil {
			return rev, nil
		}
		lastErr = err
	}
	return "", &BaseBranchNotFoundError{Base: e.cfg.BaseBranch, Err: lastErr}
}

// Remove deletes the worktree matching name. A dirty worktree is left
// untouched unless opts.Force is set.
func (e *Engine) Remove(name string, opts RemoveOptions) (LifecycleResult, error) {
	lock, err := e.locks.Acquire(e.repo)
	if err != nil {
		return LifecycleResult{}, err
	}
	defer lock.Release()

	records, err := e.Discover()
	if err != nil {
		return LifecycleResult{}, err
	}
	rec, err := Find(records, name)
	if err != nil {
		return LifecycleResult{}, err
	}
	return e.removeRecord(rec, records, opts)
}

// removeRecord applies every removal guard and then removes. The caller
// holds the mutation lock.
func (e *Engine) removeRecord(rec WorktreeRecord, records []WorktreeRecord, opts RemoveOptions) (LifecycleResult, error) {
	if rec.IsPrimary {
		return LifecycleResult{}, &PrimaryWorktreeError{Path: rec.Path}
	}
	if e.isCurrent(rec, records) {
		return LifecycleResult{}, &CurrentWorktreeError{Path: rec.Path}
	}
	if rec.Locked {
		reason := rec.LockReason
		if reason == "" {
			reason = "locked with git worktree lock"
		}
		return LifecycleResult{}, &WorktreeLockedError{Path: rec.Path, Reason: reason}
	}

	// Status is recomputed here, never taken from an earlier snapshot.
	a := e.annotateOne(rec, "")
	if a.Err != nil {
		if rec.Prunable {
			return LifecycleResult{}, fmt.Errorf("%w; run `git worktree prune` to drop the stale entry", a.Err)
		}
		return LifecycleResult{}, a.Err
	}
	if a.Status.Dirty && !opts.Force {
		return LifecycleResult{}, &DirtyWorktreeError{Path: rec.Path, Branch: rec.Branch}
	}

	args := []string{"worktree", "remove"}
	if opts.Force {
		args = append(args, "--force")
	}
	args = append(args, rec.Path)
	if err := e.repo.git.run(e.gitDir(), args...); err != nil {
		return LifecycleResult{}, classifyGitError(err, rec.Path, rec.Branch)
	}
	e.log.Info("worktree removed", "branch", rec.Branch, "path", rec.Path, "force", opts.Force)

	result := LifecycleResult{Kind: ResultRemoved, Path: rec.Path, Branch: rec.Branch}
	if opts.DeleteBranch && rec.Branch != "" {
		if other, ok := otherReference(records, rec); ok {
			result.Warning = fmt.Sprintf("branch %s kept: still checked out at %s", rec.Branch, other.Path)
			return result, nil
		}
		// Force only covers the working tree; unmerged commits are never dropped.
		if err := e.repo.git.run(e.gitDir(), "branch", "-d", rec.Branch); err != nil {
			result.Warning = fmt.Sprintf("branch %s kept: %v; use `git branch -D %s` to delete it", rec.Branch, err, rec.Branch)
			e.log.Warn("branch delete failed", "branch", rec.Branch, "err", err)
		} else {
			result.BranchDeleted = true
		}
	}
	return result, nil
}

func otherReference(records []WorktreeRecord, removed WorktreeRecord) (WorktreeRecord, bool) {
	for _, rec := range records {
		if rec.Path == removed.Path {
			continue
		}
		if rec.Branch == removed.Branch {
			return rec, true
		}
	}
	return WorktreeRecord{}, false
}

// Clean removes every worktree matching criteria and reports one result
// per candidate in discovery order. Running it twice removes nothing the
// second time.
func (e *Engine) Clean(criteria CleanCriteria) ([]LifecycleResult, error) {
	criteria = criteria.normalized()

	lock, err := e.locks.Acquire(e.repo)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	if criteria.Merged {
		if _, err := resolveBase(e.graph, e.cfg.BaseBranch); err != nil {
			return nil, err
		}
	}

	records, err := e.Discover()
	if err != nil {
		return nil, err
	}
	annotated := e.Annotate(records)
	now := time.Now()

	var results []LifecycleResult
	for _, a := range annotated {
		rec := a.Record
		if rec.IsPrimary || rec.Detached || e.isBaseBranch(rec.Branch) || e.isCurrent(rec, records) {
			continue
		}
		if errors.Is(a.Err, errWorktreeMissing) {
			// Nothing to remove; doctor reports it with a prune hint.
			continue
		}
		if a.Err != nil {
			results = append(results, LifecycleResult{Kind: ResultFailed, Path: rec.Path, Branch: rec.Branch, Err: a.Err})
			continue
		}
		reason := matchReason(a.Status, criteria, now)
		if reason == "" {
			continue
		}
		skeleton := LifecycleResult{Path: rec.Path, Branch: rec.Branch}
		switch {
		case rec.Locked:
			skeleton.Kind, skeleton.Reason = ResultSkipped, ReasonLocked
		case a.Status.Dirty && !criteria.Force:
			skeleton.Kind, skeleton.Reason = ResultSkipped, ReasonDirty
		case criteria.DryRun:
			skeleton.Kind, skeleton.Reason = ResultPlanned, reason
		default:
			res, err := e.removeRecord(rec, records, RemoveOptions{Force: criteria.Force, DeleteBranch: criteria.DeleteBranch})
			if err != nil {
				var dirty *DirtyWorktreeError
				if errors.As(err, &dirty) {
					skeleton.Kind, skeleton.Reason = ResultSkipped, ReasonDirty
				} else {
					skeleton.Kind, skeleton.Err = ResultFailed, err
				}
				break
			}
			res.Reason = reason
			skeleton = res
		}
		results = append(results, skeleton)
	}
	return results, nil
}

func matchReason(s BranchStatus, c CleanCriteria, now time.Time) string {
	switch {
	case c.Merged && s.MergedIntoBase:
		return ReasonMerged
	case c.Gone && s.UpstreamGone:
		return ReasonGone
	case c.StaleDays > 0 && !s.LastCommit.IsZero() && now.Sub(s.LastCommit) > time.Duration(c.StaleDays)*24*time.Hour:
		return ReasonStale
	}
	return ""
}

// makeParents creates dir and returns the directories it had to create,
// outermost first.
func makeParents(dir string) ([]string, error) {
	var missing []string
	for cur := dir; ; cur = filepath.Dir(cur) {
		exists, err := pathExists(cur)
		if err != nil {
			return nil, err
		}
		if exists {
			break
		}
		missing = append([]string{cur}, missing...)
		if filepath.Dir(cur) == cur {
			break
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		removeCreated(missing)
		return nil, err
	}
	return missing, nil
}

// removeCreated undoes makeParents. os.Remove leaves non-empty directories
// alone.
func removeCreated(dirs []string) {
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
}
