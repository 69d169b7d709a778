package worktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingsFor(findings []Finding, check string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

func useConfigFile(t *testing.T, env *testEnv, cfg Config) {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, SaveConfig(path, cfg))
	t.Setenv(configEnvVar, path)
}

func TestDiagnoseHealthyRepository(t *testing.T) {
	env := newTestEnv(t)
	useConfigFile(t, env, env.engine.Config())
	env.create(t, "feat/login")

	findings := Diagnose(env.repoDir, Options{WorkDir: env.repoDir})
	assert.False(t, HasErrors(findings), "%+v", findings)
	for _, check := range []string{"git", "repository", "config", "template", "base-branch", "worktree-paths", "duplicates", "orphans"} {
		got := findingsFor(findings, check)
		require.NotEmpty(t, got, check)
		assert.Equal(t, SeverityOK, got[0].Severity, "%s: %s", check, got[0].Description)
	}
	require.Len(t, findingsFor(findings, "gh"), 1)
}

func TestDiagnoseReportsProblems(t *testing.T) {
	env := newTestEnv(t)
	useConfigFile(t, env, env.engine.Config())
	missing := env.create(t, "vanished")
	locked := env.create(t, "pinned")
	require.NoError(t, os.RemoveAll(missing))
	runTestGit(t, env.repoDir, "worktree", "lock", "--reason", "long build", locked)
	orphan := filepath.Join(env.wtRoot, "demo", "leftover")
	require.NoError(t, os.MkdirAll(orphan, 0o755))

	findings := Diagnose(env.repoDir, Options{WorkDir: env.repoDir})

	paths := findingsFor(findings, "worktree-paths")
	require.Len(t, paths, 1)
	assert.Equal(t, SeverityWarn, paths[0].Severity)
	assert.Contains(t, paths[0].Description, missing)
	assert.Equal(t, "git worktree prune", paths[0].SuggestedFix)

	orphans := findingsFor(findings, "orphans")
	require.Len(t, orphans, 1)
	assert.Equal(t, SeverityWarn, orphans[0].Severity)
	assert.Contains(t, orphans[0].Description, orphan)

	lockedFindings := findingsFor(findings, "locked")
	require.Len(t, lockedFindings, 1)
	assert.Equal(t, SeverityInfo, lockedFindings[0].Severity)
	assert.Contains(t, lockedFindings[0].Description, "long build")
}

func TestDiagnoseBadConfig(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(`root_template = "relative/{repo}"`+"\nbase_branch = \"trunk\"\n"), 0o644))
	t.Setenv(configEnvVar, path)

	findings := Diagnose(env.repoDir, Options{WorkDir: env.repoDir})
	assert.True(t, HasErrors(findings))

	tpl := findingsFor(findings, "template")
	require.Len(t, tpl, 1)
	assert.Equal(t, SeverityError, tpl[0].Severity)

	base := findingsFor(findings, "base-branch")
	require.Len(t, base, 1)
	assert.Equal(t, SeverityWarn, base[0].Severity)
}

func TestDiagnoseOutsideRepository(t *testing.T) {
	requireGit(t)
	findings := Diagnose(t.TempDir(), Options{})
	require.Len(t, findings, 2)
	assert.Equal(t, "repository", findings[1].Check)
	assert.Equal(t, SeverityError, findings[1].Severity)
	assert.NotEmpty(t, findings[1].SuggestedFix)
}

func TestCheckDuplicatesSanitisedNames(t *testing.T) {
	records := []WorktreeRecord{
		{Path: "/nonexistent/a", Branch: "feat/login"},
		{Path: "/nonexistent/b", Branch: "feat-login"},
	}
	findings := checkDuplicates(records)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarn, findings[0].Severity)
	assert.Contains(t, findings[0].Description, "feat-login")
}

func TestWorktreeRootRequiresRepoSpecificPrefix(t *testing.T) {
	repo := &Repo{Name: "demo", ID: "abcd1234"}
	root, ok := worktreeRoot(repo, "/srv/wt/{repo}-{id}/{branch}")
	require.True(t, ok)
	assert.Equal(t, "/srv/wt/demo-abcd1234", root)

	root, ok = worktreeRoot(repo, "/srv/{repo}/{branch}/src")
	require.True(t, ok)
	assert.Equal(t, "/srv/demo", root)

	_, ok = worktreeRoot(repo, "/srv/{branch}")
	assert.False(t, ok)
}
