package worktree

import (
	"errors"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// goGitGraph reads refs and commits through go-git. Refs and objects live in
// the common dir, so one handle serves every linked worktree. A
// git.Repository is not safe for concurrent use, hence the mutex.
type goGitGraph struct {
	mu   sync.Mutex
	repo *git.Repository
}

func openGoGitGraph(r *Repo) (*goGitGraph, error) {
	var (
		repo *git.Repository
		err  error
	)
	if r.MainRoot != "" {
		repo, err = git.PlainOpenWithOptions(r.MainRoot, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	} else {
		repo, err = git.PlainOpen(r.CommonDir)
	}
	if err != nil {
		return nil, err
	}
	return &goGitGraph{repo: repo}, nil
}

func (g *goGitGraph) resolve(rev string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ref, err := g.repo.Reference(plumbing.ReferenceName(rev), true); err == nil {
		return g.peel(ref.Hash())
	}
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", err
	}
	return g.peel(*hash)
}

// peel follows annotated tags down to the commit.
func (g *goGitGraph) peel(hash plumbing.Hash) (string, error) {
	if c, err := g.repo.CommitObject(hash); err == nil {
		return c.Hash.String(), nil
	}
	tag, err := g.repo.TagObject(hash)
	if err != nil {
		return "", err
	}
	c, err := tag.Commit()
	if err != nil {
		return "", err
	}
	return c.Hash.String(), nil
}

func (g *goGitGraph) isAncestor(ancestor string, descendant string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, err := g.repo.CommitObject(plumbing.NewHash(ancestor))
	if err != nil {
		return false, err
	}
	d, err := g.repo.CommitObject(plumbing.NewHash(descendant))
	if err != nil {
		return false, err
	}
	return a.IsAncestor(d)
}

func (g *goGitGraph) upstream(branch string) (string, string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cfg, err := g.repo.Config()
	if err != nil {
		return "", "", false, err
	}
	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", "", false, nil
	}
	name, ref := upstreamRef(b.Remote, b.Merge.String())
	return name, ref, true, nil
}

func (g *goGitGraph) aheadBehind(local string, upstream string) (int, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	localSet, err := g.reachable(local)
	if err != nil {
		return 0, 0, err
	}
	upstreamSet, err := g.reachable(upstream)
	if err != nil {
		return 0, 0, err
	}
	ahead, behind := 0, 0
	for h := range localSet {
		if _, ok := upstreamSet[h]; !ok {
			ahead++
		}
	}
	for h := range upstreamSet {
		if _, ok := localSet[h]; !ok {
			behind++
		}
	}
	return ahead, behind, nil
}

func (g *goGitGraph) reachable(id string) (map[plumbing.Hash]struct{}, error) {
	start, err := g.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return nil, err
	}
	seen := make(map[plumbing.Hash]struct{})
	iter := object.NewCommitPreorderIter(start, nil, nil)
	defer iter.Close()
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = struct{}{}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, err
	}
	return seen, nil
}

func (g *goGitGraph) commitTime(id string) (time.Time, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, err := g.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return time.Time{}, err
	}
	return c.Committer.When, nil
}
