package worktree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBranch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"feat/login", "feat-login"},
		{"feature/add user auth", "feature-add-user-auth"},
		{"hotfix-auth", "hotfix-auth"},
		{"release_1.2", "release_1-2"},
		{"/leading/and/trailing/", "leading-and-trailing"},
		{"ümlaut/ß", "ümlaut-ß"},
		{"///", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeBranch(tt.in), "SanitizeBranch(%q)", tt.in)
	}
}

func TestSanitizeBranchOutputIsPathSafe(t *testing.T) {
	for _, in := range []string{"a/b", "a b", "a:b", "a\\b", "..", "a..b", "@{-1}"} {
		out := SanitizeBranch(in)
		assert.NotContains(t, out, "/")
		assert.NotContains(t, out, "\\")
		assert.NotContains(t, out, " ")
		assert.NotContains(t, out, ".")
	}
}

func TestExpandTemplate(t *testing.T) {
	orig := userHomeDir
	userHomeDir = func() (string, error) { return "/home/dev", nil }
	defer func() { userHomeDir = orig }()

	got, err := ExpandTemplate(DefaultRootTemplate, TemplateVars{Repo: "app", ID: "deadbeef", Branch: "feat-login"})
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/.workty/app-deadbeef/feat-login", got)

	got, err = ExpandTemplate("/srv/wt/{repo}/../{branch}", TemplateVars{Repo: "app", Branch: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/wt/x", got)

	_, err = ExpandTemplate("relative/{branch}", TemplateVars{Branch: "x"})
	require.Error(t, err)
}

func TestValidateTemplate(t *testing.T) {
	valid := []string{
		DefaultRootTemplate,
		"/srv/{repo}/{branch}",
		"/srv/{id}/{branch}/src",
	}
	for _, tpl := range valid {
		assert.NoError(t, ValidateTemplate(tpl), tpl)
	}

	invalid := []string{
		"",
		"/srv/{repo}",
		"/srv/{branch",
		"/srv/branch}",
		"/srv/{{branch}}",
		"/srv/{user}/{branch}",
		"relative/{branch}",
	}
	for _, tpl := range invalid {
		assert.Error(t, ValidateTemplate(tpl), tpl)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.engine.Config()

	first, err := Resolve("feat/login", cfg, env.repo, nil)
	require.NoError(t, err)
	second, err := Resolve("feat/login", cfg, env.repo, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, filepath.Join(env.wtRoot, "demo", "feat-login"), first)
}

func TestResolveCollisions(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.engine.Config()
	path := env.create(t, "feat/login")
	records, err := env.engine.Discover()
	require.NoError(t, err)

	// Same branch, registered at that path: not a collision.
	got, err := Resolve("feat/login", cfg, env.repo, records)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	// A different branch sanitising to the same directory.
	_, err = Resolve("feat-login", cfg, env.repo, records)
	var collision *PathCollisionError
	require.True(t, errors.As(err, &collision), "got %v", err)
	assert.Equal(t, "feat/login", collision.Existing)
	assert.Equal(t, path, collision.Path)

	// A stale directory nobody registered.
	stale := filepath.Join(env.wtRoot, "demo", "leftover")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	_, err = Resolve("leftover", cfg, env.repo, records)
	require.True(t, errors.As(err, &collision), "got %v", err)
	assert.Empty(t, collision.Existing)
}

func TestResolveRejectsEmptySegment(t *testing.T) {
	env := newTestEnv(t)
	_, err := Resolve("///", env.engine.Config(), env.repo, nil)
	require.Error(t, err)
}
