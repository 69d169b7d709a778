package worktree

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// graphReader answers read-only commit-graph questions. The go-git
// implementation is preferred; cliGraph shells out to git when the
// repository cannot be opened by go-git.
type graphReader interface {
	// resolve returns the commit id a revision points at.
	resolve(rev string) (string, error)
	isAncestor(ancestor string, descendant string) (bool, error)
	// upstream returns the configured upstream of a local branch: its
	// display name, full ref, and whether one is configured at all.
	upstream(branch string) (string, string, bool, error)
	aheadBehind(local string, upstream string) (int, int, error)
	commitTime(id string) (time.Time, error)
}

func newGraphReader(repo *Repo) graphReader {
	g, err := openGoGitGraph(repo)
	if err != nil {
		repo.log.Debug("go-git unavailable, using git binary for graph queries", "err", err)
		return &cliGraph{git: repo.git, dir: repo.Root}
	}
	return g
}

// upstreamRef maps branch.<b>.remote/merge config to a ref name.
func upstreamRef(remote string, merge string) (string, string) {
	short := strings.TrimPrefix(merge, "refs/heads/")
	if remote == "." {
		return short, "refs/heads/" + short
	}
	return remote + "/" + short, "refs/remotes/" + remote + "/" + short
}

// baseCandidates lists the refs tried, in order, for the base branch.
func baseCandidates(base string) []string {
	if strings.HasPrefix(base, "refs/") {
		return []string{base}
	}
	return []string{"refs/heads/" + base, "refs/remotes/origin/" + base, base}
}

func resolveBase(g graphReader, base string) (string, error) {
	var lastErr error
	for _, rev := range baseCandidates(base) {
		id, err := g.resolve(rev)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	return "", &BaseBranchNotFoundError{Base: base, Err: lastErr}
}

type cliGraph struct {
	git *gitRunner
	dir string
}

func (c *cliGraph) resolve(rev string) (string, error) {
	return c.git.output(c.dir, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
}

func (c *cliGraph) isAncestor(ancestor string, descendant string) (bool, error) {
	return c.git.succeeds(c.dir, "merge-base", "--is-ancestor", ancestor, descendant)
}

func (c *cliGraph) upstream(branch string) (string, string, bool, error) {
	remote, err := c.git.output(c.dir, "config", "--get", "branch."+branch+".remote")
	if err != nil || remote == "" {
		return "", "", false, nil
	}
	merge, err := c.git.output(c.dir, "config", "--get", "branch."+branch+".merge")
	if err != nil || merge == "" {
		return "", "", false, nil
	}
	name, ref := upstreamRef(remote, merge)
	return name, ref, true, nil
}

func (c *cliGraph) aheadBehind(local string, upstream string) (int, int, error) {
	out, err := c.git.output(c.dir, "rev-list", "--left-right", "--count", local+"..."+upstream)
	if err != nil {
		return 0, 0, err
	}
	return parseLeftRight(out)
}

func (c *cliGraph) commitTime(id string) (time.Time, error) {
	out, err := c.git.output(c.dir, "log", "-1", "--format=%ct", id)
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

func parseLeftRight(out string) (int, int, error) {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}
