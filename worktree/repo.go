package worktree

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Repo identifies the repository a command runs against.
type Repo struct {
	// Root is the top level of the worktree the command was started in.
	Root string
	// CommonDir is the git directory shared by all worktrees.
	CommonDir string
	// MainRoot is the primary checkout, empty for bare repositories.
	MainRoot string
	Name     string
	// ID is a short stable token derived from CommonDir.
	ID string

	git *gitRunner
	log *slog.Logger
}

// OpenRepo locates the repository containing dir. An empty dir means the
// current working directory.
func OpenRepo(dir string, log *slog.Logger) (*Repo, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &GitNotRepoError{Dir: dir, Err: err}
		}
		dir = wd
	}
	dir, err := realPathOrAbs(dir)
	if err != nil {
		return nil, &GitNotRepoError{Dir: dir, Err: err}
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, &GitNotRepoError{Dir: dir, Err: err}
	}

	git, err := newGitRunner(log)
	if err != nil {
		return nil, err
	}
	root, err := git.output(dir, "rev-parse", "--show-toplevel")
	if err != nil || root == "" {
		return nil, &GitNotRepoError{Dir: dir, Err: err}
	}
	commonDir, err := git.output(dir, "rev-parse", "--git-common-dir")
	if err != nil || commonDir == "" {
		return nil, &GitNotRepoError{Dir: dir, Err: err}
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(dir, commonDir)
	}
	if root, err = realPathOrAbs(root); err != nil {
		return nil, err
	}
	if commonDir, err = realPathOrAbs(commonDir); err != nil {
		return nil, err
	}

	repo := &Repo{
		Root:      root,
		CommonDir: commonDir,
		ID:        hashString(commonDir)[:8],
		git:       git,
		log:       log,
	}
	if filepath.Base(commonDir) == ".git" {
		repo.MainRoot = filepath.Dir(commonDir)
		repo.Name = filepath.Base(repo.MainRoot)
	} else {
		repo.Name = strings.TrimSuffix(filepath.Base(commonDir), ".git")
	}
	log.Debug("opened repository", "root", root, "common_dir", commonDir, "name", repo.Name)
	return repo, nil
}

// BranchExists reports whether refs/heads/<branch> exists.
func (r *Repo) BranchExists(branch string) bool {
	_, err := r.git.output(r.Root, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// OriginURL returns the fetch URL of origin, or "" when there is none.
func (r *Repo) OriginURL() string {
	url, err := r.git.output(r.Root, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return url
}

// Fetch runs `git fetch <remote> <refspec>` in the repository root and
// returns the commit FETCH_HEAD points at.
func (r *Repo) Fetch(remote string, refspec string) (string, error) {
	if err := r.git.run(r.Root, "fetch", remote, refspec); err != nil {
		return "", err
	}
	return r.git.output(r.Root, "rev-parse", "--verify", "FETCH_HEAD^{commit}")
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func realPathOrAbs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return abs, nil
		}
		return "", err
	}
	return real, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
