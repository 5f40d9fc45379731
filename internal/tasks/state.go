package tasks

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	// StateDir is the per-project directory holding runner state
	StateDir = ".kindling"

	stateFile = "state.json"
)

// State tracks the dependency digests of every task that ran successfully
type State struct {
	// Tasks maps a task name to the digests recorded after its last run
	Tasks map[string]TaskState `json:"tasks"`

	changed bool
}

// TaskState is the record kept for one task
type TaskState struct {
	// FileDigests maps dependency paths (relative to the project root) to SHA-256 digests
	FileDigests map[string]string `json:"file_digests"`
	// LastRun records when the task completed
	LastRun time.Time `json:"last_run"`
}

// LoadState loads runner state from .kindling/state.json under root
func LoadState(root string) (*State, error) {
	statePath := filepath.Join(root, StateDir, stateFile)

	file, err := os.Open(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty state if file doesn't exist
			return &State{Tasks: make(map[string]TaskState)}, nil
		}
		return nil, fmt.Errorf("failed to open task state: %w", err)
	}
	defer file.Close()

	var state State
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode task state: %w", err)
	}

	if state.Tasks == nil {
		state.Tasks = make(map[string]TaskState)
	}

	return &state, nil
}

// Save persists state to .kindling/state.json under root
func (s *State) Save(root string) error {
	dir := filepath.Join(root, StateDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", StateDir, err)
	}

	statePath := filepath.Join(dir, stateFile)

	// Create temporary file for atomic write
	tmpPath := statePath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode task state: %w", err)
	}

	file.Close()

	// Atomic rename
	if err := os.Rename(tmpPath, statePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save task state: %w", err)
	}

	s.changed = false
	return nil
}

// Changed reports whether Record or Forget modified s since it was loaded or saved
func (s *State) Changed() bool {
	return s.changed
}

// Matches reports whether the recorded digests for task equal digests
func (s *State) Matches(task string, digests map[string]string) bool {
	recorded, ok := s.Tasks[task]
	if !ok || len(recorded.FileDigests) != len(digests) {
		return false
	}
	for path, digest := range digests {
		if recorded.FileDigests[path] != digest {
			return false
		}
	}
	return true
}

// Record stores digests for task after a successful run
func (s *State) Record(task string, digests map[string]string) {
	s.Tasks[task] = TaskState{FileDigests: digests, LastRun: time.Now()}
	s.changed = true
}

// Forget drops anything recorded for task
func (s *State) Forget(task string) {
	if _, ok := s.Tasks[task]; ok {
		delete(s.Tasks, task)
		s.changed = true
	}
}

// digestFiles computes SHA-256 digests for paths relative to root
func digestFiles(root string, paths []string) (map[string]string, error) {
	digests := make(map[string]string, len(paths))
	for _, path := range paths {
		hash, err := computeHash(filepath.Join(root, path))
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", path, err)
		}
		digests[path] = hash
	}
	return digests, nil
}

// computeHash computes SHA-256 hash of a file
func computeHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
