// Package model holds the declarative file models that kindling writes into a
// new project. Every model renders itself to one of three text formats and is
// bound to a fixed output path through a Target in the Registry.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a target path resolves outside the project root
var ErrOutsideRoot = errors.New("path attempts to write outside project directory")

// Model is a schema-backed value with a canonical serialized form
type Model interface {
	Dump() ([]byte, error)
}

// PackageName returns the importable Python package name for a project name
func PackageName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}

// Resolve joins a relative target path onto root and rejects paths that
// escape it.
func Resolve(root, path string) (string, error) {
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}

	full := filepath.Join(root, clean)
	rel, err := filepath.Rel(filepath.Clean(root), full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}

	return full, nil
}

// Write serializes m and persists it to path under root, creating the parent
// directory first. It returns the absolute path written.
func Write(root, path string, m Model) (string, error) {
	full, err := Resolve(root, path)
	if err != nil {
		return "", err
	}

	data, err := m.Dump()
	if err != nil {
		return "", fmt.Errorf("failed to dump %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	abs, err := filepath.Abs(full)
	if err != nil {
		return full, nil
	}
	return abs, nil
}

// Clean removes the file at path under root. A missing file is not an error.
func Clean(root, path string) error {
	full, err := Resolve(root, path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
