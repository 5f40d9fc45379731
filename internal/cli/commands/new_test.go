package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	out, err := execute(t, "-C", dir, "new", "-n", "my-lib", "--require", "requests")
	require.NoError(t, err)

	assert.Contains(t, out, "Creating project: my-lib")
	assert.Contains(t, out, ".  new:pyproject")
	assert.Contains(t, out, "-- new:git")
	assert.Contains(t, out, "Created project: my-lib")

	for _, file := range []string{
		"pyproject.toml",
		"setup.cfg",
		"_toc.yml",
		"docs/_config.yml",
		"docs/test_my-lib.ipynb",
		".gitignore",
		".github/workflows/release.yml",
		".github/workflows/test.yml",
		"noxfile.py",
		"docs/sanitize.cfg",
		"src/my_lib/__init__.py",
		"src/my_lib/__main__.py",
		"README.md",
	} {
		assert.FileExists(t, filepath.Join(dir, file))
	}

	setup, err := os.ReadFile(filepath.Join(dir, "setup.cfg"))
	require.NoError(t, err)
	assert.Contains(t, string(setup), "name = my-lib")
	assert.Contains(t, string(setup), "\trequests")
}

func TestNewCommandIsIdempotent(t *testing.T) {
	dir := newProject(t, "my-lib")

	out, err := execute(t, "-C", dir, "new", "-n", "my-lib")
	require.NoError(t, err)
	assert.Contains(t, out, "-- new:pyproject")
	assert.Contains(t, out, "-- new:readme")
	assert.NotContains(t, out, ".  new:")
	assert.Contains(t, out, "Project my-lib is up to date")
}

func TestNewCommandPositionalName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	_, err := execute(t, "-C", dir, "new", "other")
	require.NoError(t, err)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# other\n", string(readme))
}

func TestNewCommandDefaultName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	t.Setenv("KINDLING_NAME", "")

	_, err := execute(t, "-C", dir, "new")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "docs", "test_sample.ipynb"))
}

func TestNewCommandRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "-C", dir, "new", "../escape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only contain letters, numbers, dashes, and underscores")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSplitRequirements(t *testing.T) {
	assert.Equal(t, []string{"requests", "click>=8"}, splitRequirements(" requests, ,click>=8 "))
	assert.Nil(t, splitRequirements(""))
}

// chdir switches into dir for the rest of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestNewCommandInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	t.Setenv("KINDLING_NAME", "")
	chdir(t, dir)

	out, err := execute(t, "new")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project: sample")
	assert.FileExists(t, filepath.Join(dir, "pyproject.toml"))
	assert.FileExists(t, filepath.Join(dir, "src", "sample", "__init__.py"))
}

func TestRunOutsideProjectUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KINDLING_NAME", "")
	chdir(t, dir)

	_, err := execute(t, "run", "new:readme")
	require.NoError(t, err)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# sample\n", string(readme))
}

func TestNewCommandInteractiveInCI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	t.Setenv("CI", "true")

	out, err := execute(t, "-C", dir, "new", "-i", "-n", "ci-lib")
	require.NoError(t, err)
	assert.Contains(t, out, "Prompts are disabled in CI")
	assert.Contains(t, out, "Created project: ci-lib")
}
