package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvFile_Basic(t *testing.T) {
	data := []byte("KEY=value\nOTHER=stuff\n")
	m, err := ParseEnvFile(data)
	require.NoError(t, err)
	assert.Equal(t, "value", m["KEY"])
	assert.Equal(t, "stuff", m["OTHER"])
}

func TestParseEnvFile_CommentsAndBlanks(t *testing.T) {
	data := []byte("# comment\n\nKEY=value\n  # indented comment\n\nOTHER=stuff\n")
	m, err := ParseEnvFile(data)
	require.NoError(t, err)
	assert.Len(t, m, 2)
}

func TestParseEnvFile_ExportAndQuotes(t *testing.T) {
	data := []byte("export ANTHROPIC_API_KEY=sk-ant\nA=\"two words\"\nB='single'\nC=\"esc\\tape\"\nD=\"unbalanced\n")
	m, err := ParseEnvFile(data)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", m["ANTHROPIC_API_KEY"])
	assert.Equal(t, "two words", m["A"])
	assert.Equal(t, "single", m["B"])
	assert.Equal(t, "esc\tape", m["C"])
	assert.Equal(t, "\"unbalanced", m["D"])
}

func TestParseEnvFile_ValueWithEquals(t *testing.T) {
	m, err := ParseEnvFile([]byte("URL=https://example.com?foo=bar&baz=qux\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com?foo=bar&baz=qux", m["URL"])
}

func TestParseEnvFile_Errors(t *testing.T) {
	_, err := ParseEnvFile([]byte("OK=1\nBADLINE\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "missing '='")

	_, err = ParseEnvFile([]byte("=value\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty key")
}

func TestLoadEnvFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "env")
	project := filepath.Join(dir, ".diagroute.env")
	require.NoError(t, os.WriteFile(global, []byte("DR_GLOBAL_ONLY=g\nDR_SHARED=g\n"), 0o644))
	require.NoError(t, os.WriteFile(project, []byte("DR_PROJECT_ONLY=p\nDR_SHARED=p\n"), 0o644))

	for _, k := range []string{"DR_GLOBAL_ONLY", "DR_PROJECT_ONLY", "DR_SHARED"} {
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}

	LoadEnvFiles(global, project, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "g", os.Getenv("DR_GLOBAL_ONLY"))
	assert.Equal(t, "p", os.Getenv("DR_PROJECT_ONLY"))
	assert.Equal(t, "p", os.Getenv("DR_SHARED"), "project should override global")
}

func TestLoadEnvFiles_ActualEnvWins(t *testing.T) {
	project := filepath.Join(t.TempDir(), ".diagroute.env")
	require.NoError(t, os.WriteFile(project, []byte("DR_MY_VAR=from_file\n"), 0o644))
	t.Setenv("DR_MY_VAR", "from_actual_env")

	LoadEnvFiles(project)

	assert.Equal(t, "from_actual_env", os.Getenv("DR_MY_VAR"), "actual env should win over file")
}

func TestLoadEnvFiles_EmptyButSetEnvWins(t *testing.T) {
	project := filepath.Join(t.TempDir(), ".diagroute.env")
	require.NoError(t, os.WriteFile(project, []byte("DR_EMPTY=from_file\n"), 0o644))
	t.Setenv("DR_EMPTY", "")

	LoadEnvFiles(project)

	assert.Equal(t, "", os.Getenv("DR_EMPTY"))
}

func TestDefaultEnvFiles(t *testing.T) {
	files := DefaultEnvFiles()
	require.Len(t, files, 2)
	assert.Equal(t, GlobalEnvPath(), files[0])
	assert.Equal(t, ProjectEnvPath, files[1])

	assert.Contains(t, GlobalEnvPath(), "diagroute")
	assert.True(t, filepath.IsAbs(GlobalEnvPath()))
}
