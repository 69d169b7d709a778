package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDisabled(t *testing.T) {
	t.Setenv(envDebug, "")
	dir := t.TempDir()
	t.Setenv(envLogDir, dir)

	path, err := Initialize(false)
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInitializeWritesJSONLog(t *testing.T) {
	t.Setenv(envDebug, "")
	dir := filepath.Join(t.TempDir(), "logs")
	t.Setenv(envLogDir, dir)

	path, err := Initialize(true)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".log"))

	Logger.Debug("git", "args", []string{"worktree", "list"})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"debug logging initialized"`)
	assert.Contains(t, string(data), `"msg":"git"`)
}

func TestInitializeHonoursEnv(t *testing.T) {
	t.Setenv(envDebug, "true")
	t.Setenv(envLogDir, t.TempDir())

	path, err := Initialize(false)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestRotateLogsKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, string(rune('a'+i))+".log")
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(p, base.Add(time.Duration(i)*time.Minute), base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	require.NoError(t, rotateLogs(dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"d.log", "e.log", "notes.txt"}, names)
}
