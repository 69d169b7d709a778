package worktree

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Logger *slog.Logger
	// Workers bounds status computation; zero means NumCPU capped at 8.
	Workers int
	// WorkDir is the caller's working directory. The worktree containing
	// it is never removed.
	WorkDir string
	Locks   *LockManager
}

// Engine runs discovery, status and lifecycle operations for one
// repository and one loaded config.
type Engine struct {
	repo    *Repo
	cfg     Config
	graph   graphReader
	locks   *LockManager
	log     *slog.Logger
	workers int
	workDir string
}

func New(repo *Repo, cfg Config, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = repo.log
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	locks := opts.Locks
	if locks == nil {
		locks = NewLockManager()
	}
	workDir := strings.TrimSpace(opts.WorkDir)
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return &Engine{
		repo:    repo,
		cfg:     cfg,
		graph:   newGraphReader(repo),
		locks:   locks,
		log:     log,
		workers: workers,
		workDir: workDir,
	}
}

func (e *Engine) Repo() *Repo     { return e.repo }
func (e *Engine) Config() Config  { return e.cfg }
func (e *Engine) WorkDir() string { return e.workDir }

func (e *Engine) Discover() ([]WorktreeRecord, error) {
	return e.repo.Discover()
}

// List discovers and annotates every worktree. Order is discovery order,
// so the primary worktree is first.
func (e *Engine) List() ([]Annotated, error) {
	records, err := e.Discover()
	if err != nil {
		return nil, err
	}
	return e.Annotate(records), nil
}

// Candidates is the picker's view: the annotated list without prunable
// entries, whose directories are gone.
func (e *Engine) Candidates() ([]Annotated, error) {
	all, err := e.List()
	if err != nil {
		return nil, err
	}
	out := make([]Annotated, 0, len(all))
	for _, a := range all {
		if a.Record.Prunable {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Go returns the directory of the worktree matching name.
func (e *Engine) Go(name string) (string, error) {
	records, err := e.Discover()
	if err != nil {
		return "", err
	}
	rec, err := Find(records, name)
	if err != nil {
		return "", err
	}
	return rec.Path, nil
}

// Current returns the worktree containing the caller's working directory.
func (e *Engine) Current(records []WorktreeRecord) (WorktreeRecord, bool) {
	return ContainingRecord(records, e.workDir)
}

func (e *Engine) isCurrent(rec WorktreeRecord, records []WorktreeRecord) bool {
	cur, ok := e.Current(records)
	return ok && samePath(cur.Path, rec.Path)
}

// gitDir is where mutating git commands run. It never lies inside a linked
// worktree that might be removed.
func (e *Engine) gitDir() string {
	if e.repo.MainRoot != "" {
		return e.repo.MainRoot
	}
	return e.repo.CommonDir
}
