package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type cliEnv struct {
	repoDir string
	wtRoot  string
}

// newCLIEnv creates a repository "demo" on main and points WORKTY_CONFIG
// at a config that places worktrees under a temp root.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval temp dir: %v", err)
	}
	env := &cliEnv{
		repoDir: filepath.Join(base, "demo"),
		wtRoot:  filepath.Join(base, "wt"),
	}
	if err := os.MkdirAll(env.repoDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	gitIn(t, env.repoDir, "init", "-q")
	gitIn(t, env.repoDir, "symbolic-ref", "HEAD", "refs/heads/main")
	gitIn(t, env.repoDir, "config", "user.email", "test@example.com")
	gitIn(t, env.repoDir, "config", "user.name", "Test User")
	gitIn(t, env.repoDir, "config", "commit.gpgsign", "false")
	commitIn(t, env.repoDir, "README.md", "# demo\n", "initial commit")

	cfgPath := filepath.Join(base, "workty.toml")
	body := "root_template = \"" + filepath.ToSlash(filepath.Join(env.wtRoot, "{repo}", "{branch}")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WORKTY_CONFIG", cfgPath)
	t.Setenv("WORKTY_DEBUG", "")
	t.Setenv("NO_COLOR", "1")
	return env
}

func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func commitIn(t *testing.T, dir string, name string, content string, message string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	gitIn(t, dir, "add", name)
	gitIn(t, dir, "commit", "-q", "-m", message)
}

// runCLI executes the command tree with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand(append([]string{"git-workty"}, args...))
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, append([]string{"-C", e.repoDir}, args...)...)
	if err != nil {
		t.Fatalf("git-workty %v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}
