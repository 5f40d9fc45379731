package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndClean(t *testing.T) {
	root := t.TempDir()

	written, err := Write(root, "docs/_config.yml", NewDocsConfig("sample"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(written))

	data, err := os.ReadFile(filepath.Join(root, "docs", "_config.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "sample"`)

	require.NoError(t, Clean(root, "docs/_config.yml"))
	_, err = os.Stat(filepath.Join(root, "docs", "_config.yml"))
	assert.True(t, os.IsNotExist(err))

	// Cleaning again is a no-op
	assert.NoError(t, Clean(root, "docs/_config.yml"))
}

func TestWriteFailsWhenParentIsAFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs"), []byte("x"), 0644))

	_, err := Write(root, "docs/_config.yml", NewDocsConfig("sample"))
	assert.Error(t, err)
}

func TestResolveRejectsEscapes(t *testing.T) {
	root := t.TempDir()

	for _, path := range []string{"../outside", "/etc/passwd", "docs/../../x"} {
		_, err := Resolve(root, path)
		assert.True(t, errors.Is(err, ErrOutsideRoot), "expected %s to be rejected", path)
	}

	full, err := Resolve(root, "src/sample/__init__.py")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "sample", "__init__.py"), full)
}

func TestResolveRelativeRoot(t *testing.T) {
	full, err := Resolve(".", "pyproject.toml")
	require.NoError(t, err)
	assert.Equal(t, "pyproject.toml", full)

	full, err = Resolve("proj", "..notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("proj", "..notes"), full)

	_, err = Resolve(".", "../pyproject.toml")
	assert.True(t, errors.Is(err, ErrOutsideRoot))

	_, err = Resolve("proj", "src/../../x")
	assert.True(t, errors.Is(err, ErrOutsideRoot))
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "sample", PackageName("sample"))
	assert.Equal(t, "my_lib", PackageName("my-lib"))
	assert.Equal(t, "my_lib", PackageName(" my-lib "))
}
