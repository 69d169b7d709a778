package worktree

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const maxStatusWorkers = 8

// BranchStatus is the live state of one worktree. It is a snapshot and is
// recomputed before every destructive decision.
type BranchStatus struct {
	Dirty          bool      `json:"dirty"`
	StagedCount    int       `json:"staged"`
	UnstagedCount  int       `json:"unstaged"`
	UntrackedCount int       `json:"untracked"`
	Upstream       string    `json:"upstream,omitempty"`
	UpstreamGone   bool      `json:"upstream_gone"`
	Ahead          *int      `json:"ahead,omitempty"`
	Behind         *int      `json:"behind,omitempty"`
	MergedIntoBase bool      `json:"merged_into_base"`
	LastCommit     time.Time `json:"last_commit,omitempty"`
}

// Annotated pairs a record with its status. A non-nil Err means status
// could not be computed for this record alone.
type Annotated struct {
	Record WorktreeRecord
	Status BranchStatus
	Err    error
}

// errWorktreeMissing marks a record whose directory is gone; `git worktree
// prune` clears it.
var errWorktreeMissing = errors.New("worktree directory missing")

func (a Annotated) Failed() bool { return a.Err != nil }

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > maxStatusWorkers {
		n = maxStatusWorkers
	}
	return n
}

// Annotate computes status for every record with a bounded pool. The
// result has the same order as records.
func (e *Engine) Annotate(records []WorktreeRecord) []Annotated {
	baseTip, baseErr := resolveBase(e.graph, e.cfg.BaseBranch)
	if baseErr != nil {
		e.log.Debug("base branch unresolved, merged state disabled", "base", e.cfg.BaseBranch, "err", baseErr)
	}

	out := make([]Annotated, len(records))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, rec := range records {
		g.Go(func() error {
			out[i] = e.annotateOne(rec, baseTip)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Engine) annotateOne(rec WorktreeRecord, baseTip string) Annotated {
	a := Annotated{Record: rec}
	exists, err := pathExists(rec.Path)
	if err != nil {
		a.Err = err
		return a
	}
	if !exists {
		a.Err = fmt.Errorf("%w: %s", errWorktreeMissing, rec.Path)
		return a
	}

	out, err := e.repo.git.raw(rec.Path, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		a.Err = classifyGitError(err, rec.Path, rec.Branch)
		return a
	}
	a.Status.StagedCount, a.Status.UnstagedCount, a.Status.UntrackedCount = parseStatusPorcelain(out)
	a.Status.Dirty = a.Status.StagedCount+a.Status.UnstagedCount+a.Status.UntrackedCount > 0

	tip := rec.Head
	if tip == "" && rec.Branch != "" {
		if tip, err = e.graph.resolve("refs/heads/" + rec.Branch); err != nil {
			a.Err = err
			return a
		}
	}
	if tip != "" {
		if when, err := e.graph.commitTime(tip); err == nil {
			a.Status.LastCommit = when
		}
	}
	if rec.Branch == "" {
		return a
	}

	name, ref, configured, err := e.graph.upstream(rec.Branch)
	if err != nil {
		e.log.Debug("upstream lookup failed", "branch", rec.Branch, "err", err)
	}
	if configured {
		a.Status.Upstream = name
		if upTip, err := e.graph.resolve(ref); err != nil {
			a.Status.UpstreamGone = true
		} else if ahead, behind, err := e.graph.aheadBehind(tip, upTip); err == nil {
			a.Status.Ahead = &ahead
			a.Status.Behind = &behind
		} else {
			e.log.Debug("ahead/behind failed", "branch", rec.Branch, "err", err)
		}
	}

	if baseTip != "" && !e.isBaseBranch(rec.Branch) && tip != "" {
		merged, err := e.graph.isAncestor(tip, baseTip)
		if err != nil {
			a.Err = fmt.Errorf("merge check for %s: %w", rec.Branch, err)
			return a
		}
		a.Status.MergedIntoBase = merged
	}
	return a
}

func (e *Engine) isBaseBranch(branch string) bool {
	base := strings.TrimPrefix(e.cfg.BaseBranch, "refs/heads/")
	return branch == base
}

// parseStatusPorcelain counts v1 porcelain lines. The first column is the
// index, the second the worktree.
func parseStatusPorcelain(out string) (staged int, unstaged int, untracked int) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		if x == '?' && y == '?' {
			untracked++
			continue
		}
		if x == '!' {
			continue
		}
		if x != ' ' {
			staged++
		}
		if y != ' ' {
			unstaged++
		}
	}
	return staged, unstaged, untracked
}
