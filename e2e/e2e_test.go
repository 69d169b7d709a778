package e2e

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type runResult struct {
	out  string
	err  error
	code int
}

type testRepo struct {
	root   string
	wtRoot string
	env    map[string]string
}

func worktyBin(t *testing.T) string {
	t.Helper()
	bin := strings.TrimSpace(os.Getenv("WORKTY_E2E_BIN"))
	if bin == "" {
		t.Skip("WORKTY_E2E_BIN not set; build cmd/git-workty and point it at the binary")
	}
	abs, err := filepath.Abs(bin)
	if err != nil {
		t.Fatalf("resolve bin path: %v", err)
	}
	if _, err := os.Stat(abs); err != nil {
		t.Fatalf("git-workty binary not found at %s (set WORKTY_E2E_BIN): %v", abs, err)
	}
	return abs
}

func runWorkty(t *testing.T, dir string, env map[string]string, args ...string) runResult {
	t.Helper()
	cmd := exec.Command(worktyBin(t), args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append([]string{}, os.Environ()...)
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	out, err := cmd.CombinedOutput()
	res := runResult{out: string(out), err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.code = exitErr.ExitCode()
	}
	return res
}

func mustRunWorkty(t *testing.T, dir string, env map[string]string, args ...string) string {
	t.Helper()
	res := runWorkty(t, dir, env, args...)
	if res.err != nil {
		t.Fatalf("git-workty %v failed: %v\n%s", args, res.err, res.out)
	}
	return res.out
}

func runCmd(t *testing.T, dir string, env map[string]string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if env != nil {
		cmd.Env = append([]string{}, os.Environ()...)
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("run %s %v failed: %v\n%s", name, args, err, string(out))
	}
	return strings.TrimSpace(string(out))
}

// setupRepo creates repo/ on main with one commit, a config that places
// worktrees under wt/, and a private HOME.
func setupRepo(t *testing.T) testRepo {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval temp dir: %v", err)
	}
	repoRoot := filepath.Join(base, "repo")
	if err := os.MkdirAll(repoRoot, 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	runCmd(t, repoRoot, nil, "git", "init")
	runCmd(t, repoRoot, nil, "git", "checkout", "-B", "main")
	runCmd(t, repoRoot, nil, "git", "config", "user.email", "e2e@example.test")
	runCmd(t, repoRoot, nil, "git", "config", "user.name", "Workty E2E")
	if err := os.WriteFile(filepath.Join(repoRoot, "README.md"), []byte("root\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	runCmd(t, repoRoot, nil, "git", "add", "README.md")
	runCmd(t, repoRoot, nil, "git", "commit", "-m", "init")

	home := filepath.Join(base, "home")
	wtRoot := filepath.Join(base, "wt")
	cfgPath := filepath.Join(base, "workty.toml")
	cfg := "root_template = \"" + filepath.ToSlash(filepath.Join(wtRoot, "{repo}", "{branch}")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return testRepo{
		root:   repoRoot,
		wtRoot: wtRoot,
		env: map[string]string{
			"HOME":          home,
			"WORKTY_CONFIG": cfgPath,
			"NO_COLOR":      "1",
		},
	}
}

func toolPathDir(t *testing.T, includeGit bool) string {
	t.Helper()
	dir := t.TempDir()
	if includeGit {
		gitPath, err := exec.LookPath("git")
		if err != nil {
			t.Fatalf("git not found: %v", err)
		}
		if err := os.Symlink(gitPath, filepath.Join(dir, "git")); err != nil {
			t.Fatalf("symlink git: %v", err)
		}
	}
	return dir
}

func writeExecutable(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write executable %s: %v", path, err)
	}
}

func assertContains(t *testing.T, got string, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Fatalf("expected output to contain %q\n--- got ---\n%s", want, got)
	}
}

func currentBranch(t *testing.T, path string) string {
	t.Helper()
	return runCmd(t, path, nil, "git", "rev-parse", "--abbrev-ref", "HEAD")
}

func TestNewGoRemoveRoundTrip(t *testing.T) {
	repo := setupRepo(t)

	path := strings.TrimSpace(mustRunWorkty(t, repo.root, repo.env, "new", "feat/login", "--print-path"))
	want := filepath.Join(repo.wtRoot, "repo", "feat-login")
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
	if got := currentBranch(t, path); got != "feat/login" {
		t.Fatalf("expected feat/login checked out, got %q", got)
	}

	got := strings.TrimSpace(mustRunWorkty(t, path, repo.env, "go", "main"))
	if got != repo.root {
		t.Fatalf("expected go main to print %q, got %q", repo.root, got)
	}

	res := runWorkty(t, path, repo.env, "rm", "feat/login", "--yes")
	if res.code != 2 {
		t.Fatalf("expected removing the current worktree to exit 2, got %d\n%s", res.code, res.out)
	}
	assertContains(t, res.out, "hint:")

	mustRunWorkty(t, repo.root, repo.env, "rm", "feat/login", "--yes", "--delete-branch")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected worktree removed, stat err %v", err)
	}
	runCmd(t, repo.root, nil, "git", "worktree", "prune")
	out := runCmd(t, repo.root, nil, "git", "branch", "--list", "feat/login")
	if out != "" {
		t.Fatalf("expected branch deleted, got %q", out)
	}
}

func TestDirtyRemoveLeavesFilesAlone(t *testing.T) {
	repo := setupRepo(t)
	path := strings.TrimSpace(mustRunWorkty(t, repo.root, repo.env, "new", "wip", "--print-path"))
	notes := filepath.Join(path, "notes.txt")
	if err := os.WriteFile(notes, []byte("keep\n"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	res := runWorkty(t, repo.root, repo.env, "rm", "wip", "--yes")
	if res.code != 2 {
		t.Fatalf("expected exit 2 for dirty worktree, got %d\n%s", res.code, res.out)
	}
	assertContains(t, res.out, "uncommitted")
	data, err := os.ReadFile(notes)
	if err != nil || string(data) != "keep\n" {
		t.Fatalf("dirty file changed: %q, %v", data, err)
	}
}

func TestListJSONAndCleanMerged(t *testing.T) {
	repo := setupRepo(t)
	mustRunWorkty(t, repo.root, repo.env, "new", "hotfix-auth")
	divergent := strings.TrimSpace(mustRunWorkty(t, repo.root, repo.env, "new", "divergent", "--print-path"))
	if err := os.WriteFile(filepath.Join(divergent, "x.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runCmd(t, divergent, nil, "git", "add", "x.txt")
	runCmd(t, divergent, nil, "git", "commit", "-m", "divergent work")

	var entries []struct {
		Branch string `json:"branch"`
		Status *struct {
			Merged bool `json:"merged_into_base"`
		} `json:"status"`
	}
	out := mustRunWorkty(t, repo.root, repo.env, "list", "--json")
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list json: %v\n%s", err, out)
	}
	merged := map[string]bool{}
	for _, e := range entries {
		if e.Status != nil {
			merged[e.Branch] = e.Status.Merged
		}
	}
	if !merged["hotfix-auth"] || merged["divergent"] || merged["main"] {
		t.Fatalf("unexpected merged flags %v", merged)
	}

	out = mustRunWorkty(t, repo.root, repo.env, "clean", "--merged", "--yes")
	assertContains(t, out, "hotfix-auth")
	out = mustRunWorkty(t, repo.root, repo.env, "clean", "--merged", "--yes")
	assertContains(t, out, "No worktrees to clean up.")
	if _, err := os.Stat(divergent); err != nil {
		t.Fatalf("divergent worktree must survive: %v", err)
	}
}

func TestDoctorReportsMissingWorktree(t *testing.T) {
	repo := setupRepo(t)
	path := strings.TrimSpace(mustRunWorkty(t, repo.root, repo.env, "new", "gone", "--print-path"))
	if err := os.RemoveAll(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	out := mustRunWorkty(t, repo.root, repo.env, "doctor")
	assertContains(t, out, "git worktree prune")
}

func TestNotARepositoryExitCode(t *testing.T) {
	repo := setupRepo(t)
	res := runWorkty(t, t.TempDir(), repo.env, "list")
	if res.code != 4 {
		t.Fatalf("expected exit 4 outside a repository, got %d\n%s", res.code, res.out)
	}
	assertContains(t, res.out, "error:")
}

func TestPRWithFakeGH(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake gh is a shell script")
	}
	repo := setupRepo(t)
	origin := filepath.Join(filepath.Dir(repo.root), "origin.git")
	runCmd(t, "", nil, "git", "init", "--bare", origin)
	runCmd(t, repo.root, nil, "git", "remote", "add", "origin", origin)
	runCmd(t, repo.root, nil, "git", "checkout", "-b", "contrib")
	if err := os.WriteFile(filepath.Join(repo.root, "contrib.txt"), []byte("fork\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	runCmd(t, repo.root, nil, "git", "add", "contrib.txt")
	runCmd(t, repo.root, nil, "git", "commit", "-m", "contribution")
	head := runCmd(t, repo.root, nil, "git", "rev-parse", "HEAD")
	runCmd(t, repo.root, nil, "git", "push", "origin", "contrib:refs/pull/42/head")
	runCmd(t, repo.root, nil, "git", "checkout", "main")

	bin := toolPathDir(t, true)
	writeExecutable(t, filepath.Join(bin, "gh"), `#!/bin/sh
case "$1" in
  --version) echo "gh version 2.0.0" ;;
  auth) exit 0 ;;
  pr) echo '{"number":42,"url":"https://github.com/acme/repo/pull/42","headRefName":"contrib","state":"OPEN","mergedAt":"","statusCheckRollup":[]}' ;;
  *) exit 1 ;;
esac
`)
	env := map[string]string{"PATH": bin}
	for k, v := range repo.env {
		env[k] = v
	}

	res := runWorkty(t, repo.root, env, "pr", "42", "--print-path")
	if res.err != nil {
		t.Fatalf("pr failed: %v\n%s", res.err, res.out)
	}
	path := filepath.Join(repo.wtRoot, "repo", "pr-42")
	assertContains(t, res.out, path)
	if got := runCmd(t, path, nil, "git", "rev-parse", "HEAD"); got != head {
		t.Fatalf("expected %s checked out, got %s", head, got)
	}
}

func TestInitScriptForShells(t *testing.T) {
	repo := setupRepo(t)
	for _, shell := range []string{"bash", "zsh", "fish"} {
		out := mustRunWorkty(t, "", repo.env, "init", shell)
		assertContains(t, out, "wcd")
		assertContains(t, out, "git workty pick")
	}
	res := runWorkty(t, "", repo.env, "init", "tcsh")
	if res.err == nil {
		t.Fatalf("expected tcsh to be rejected")
	}
}
