package worktree

import (
	"path/filepath"
	"strings"
)

// WorktreeRecord is one entry of `git worktree list --porcelain`.
// Records are snapshots; rediscover after any lifecycle operation.
type WorktreeRecord struct {
	Path        string `json:"path"`
	Branch      string `json:"branch,omitempty"`
	Head        string `json:"head"`
	IsPrimary   bool   `json:"is_primary"`
	Detached    bool   `json:"detached"`
	Locked      bool   `json:"locked"`
	LockReason  string `json:"lock_reason,omitempty"`
	Prunable    bool   `json:"prunable"`
	PruneReason string `json:"prune_reason,omitempty"`
}

// Name is the branch, or the directory name for detached worktrees.
func (w WorktreeRecord) Name() string {
	if w.Branch != "" {
		return w.Branch
	}
	if base := filepath.Base(w.Path); base != "." && base != string(filepath.Separator) {
		return base
	}
	return "unknown"
}

// Discover lists the repository's worktrees. The primary worktree comes
// first. Discover performs no writes.
func (r *Repo) Discover() ([]WorktreeRecord, error) {
	out, err := r.git.raw(r.Root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, classifyGitError(err, r.Root, "")
	}
	records := parseWorktreeList(out)
	r.log.Debug("discovered worktrees", "count", len(records))
	return records, nil
}

func parseWorktreeList(output string) []WorktreeRecord {
	var records []WorktreeRecord
	var current *WorktreeRecord
	bare := false
	first := true

	flush := func() {
		if current == nil {
			return
		}
		if !bare {
			current.IsPrimary = first
			records = append(records, *current)
		}
		first = false
		current = nil
		bare = false
	}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		if key == "worktree" {
			flush()
			current = &WorktreeRecord{Path: filepath.Clean(value)}
			continue
		}
		if current == nil {
			continue
		}
		switch key {
		case "HEAD":
			current.Head = value
		case "branch":
			current.Branch = strings.TrimPrefix(value, "refs/heads/")
		case "detached":
			current.Detached = true
		case "bare":
			bare = true
		case "locked":
			current.Locked = true
			current.LockReason = value
		case "prunable":
			current.Prunable = true
			current.PruneReason = value
		}
	}
	flush()

	for i := range records {
		if records[i].Branch == "" {
			records[i].Detached = true
		}
	}
	return records
}

// Find matches name against branch names, directory names, then paths.
func Find(records []WorktreeRecord, name string) (WorktreeRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return WorktreeRecord{}, &WorktreeNotFoundError{Name: name}
	}
	for _, rec := range records {
		if rec.Branch != "" && rec.Branch == name {
			return rec, nil
		}
	}
	for _, rec := range records {
		if filepath.Base(rec.Path) == name {
			return rec, nil
		}
	}
	if abs, err := realPathOrAbs(name); err == nil {
		for _, rec := range records {
			if rec.Path == abs || rec.Path == filepath.Clean(name) {
				return rec, nil
			}
		}
	}
	return WorktreeRecord{}, &WorktreeNotFoundError{Name: name}
}

// ContainingRecord returns the record whose directory contains path.
// The deepest match wins so nested worktrees resolve correctly.
func ContainingRecord(records []WorktreeRecord, path string) (WorktreeRecord, bool) {
	if strings.TrimSpace(path) == "" {
		return WorktreeRecord{}, false
	}
	abs, err := realPathOrAbs(path)
	if err != nil {
		return WorktreeRecord{}, false
	}
	var best WorktreeRecord
	found := false
	for _, rec := range records {
		if !isWithin(abs, rec.Path) {
			continue
		}
		if !found || len(rec.Path) > len(best.Path) {
			best = rec
			found = true
		}
	}
	return best, found
}

func isWithin(path string, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func checkedOutAt(records []WorktreeRecord, branch string) (WorktreeRecord, bool) {
	for _, rec := range records {
		if rec.Branch == branch {
			return rec, true
		}
	}
	return WorktreeRecord{}, false
}
