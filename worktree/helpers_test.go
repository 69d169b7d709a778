package worktree

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// setupTestRepo creates a repository on branch main with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := realDir(t, filepath.Join(t.TempDir(), "demo"))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	runTestGit(t, dir, "init", "-q")
	runTestGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")
	runTestGit(t, dir, "config", "commit.gpgsign", "false")
	commitFile(t, dir, "README.md", "# demo\n", "initial commit")
	return dir
}

func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return strings.TrimSpace(string(output))
}

func commitFile(t *testing.T, dir string, name string, content string, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	runTestGit(t, dir, "add", name)
	runTestGit(t, dir, "commit", "-q", "-m", message)
}

// realDir resolves symlinks in the existing part of path, so paths compare
// equal to what git reports (macOS temp dirs live under a symlink).
func realDir(t *testing.T, path string) string {
	t.Helper()
	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	require.NoError(t, err)
	return filepath.Join(parent, filepath.Base(path))
}

type testEnv struct {
	repoDir string
	wtRoot  string
	repo    *Repo
	engine  *Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repoDir := setupTestRepo(t)
	wtRoot := realDir(t, filepath.Join(t.TempDir(), "wt"))

	repo, err := OpenRepo(repoDir, nil)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.RootTemplate = filepath.Join(wtRoot, "{repo}", "{branch}")
	return &testEnv{
		repoDir: repoDir,
		wtRoot:  wtRoot,
		repo:    repo,
		engine:  New(repo, cfg, Options{WorkDir: repoDir}),
	}
}

func (env *testEnv) withConfig(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := env.engine.Config()
	mutate(&cfg)
	return New(env.repo, cfg, Options{WorkDir: env.repoDir})
}

func (env *testEnv) create(t *testing.T, branch string) string {
	t.Helper()
	res, err := env.engine.Create(branch, CreateOptions{})
	require.NoError(t, err)
	return res.Path
}

func listedBranches(t *testing.T, e *Engine) []string {
	t.Helper()
	records, err := e.Discover()
	require.NoError(t, err)
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Name())
	}
	return out
}

func findAnnotated(t *testing.T, e *Engine, branch string) Annotated {
	t.Helper()
	all, err := e.List()
	require.NoError(t, err)
	for _, a := range all {
		if a.Record.Branch == branch {
			return a
		}
	}
	t.Fatalf("branch %s not listed", branch)
	return Annotated{}
}
