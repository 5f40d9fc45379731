// Package tasks runs kindling's declarative task list. Tasks are evaluated
// one at a time in declaration order; a task is skipped when its up-to-date
// predicates hold or when its file dependencies are unchanged since the last
// successful run.
package tasks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kindling-dev/kindling/internal/model"
)

// ErrUnknownTask is returned when a selected task name does not exist
var ErrUnknownTask = errors.New("unknown task")

// UnknownTaskError names the missing task and the names that do exist
type UnknownTaskError struct {
	Name  string
	Known []string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownTask, e.Name)
}

func (e *UnknownTaskError) Unwrap() error {
	return ErrUnknownTask
}

// Predicate reports whether a task is up to date for the project at root
type Predicate func(root string) bool

// Exists holds while path exists under root
func Exists(path string) Predicate {
	return func(root string) bool {
		_, err := os.Stat(filepath.Join(root, path))
		return err == nil
	}
}

// Task is a declarative unit of work
type Task struct {
	Name    string
	Doc     string
	Actions []Action
	// Targets are the files the task produces, relative to the project root
	Targets []string
	// FileDeps are inputs whose digests gate re-execution
	FileDeps []string
	// Uptodate skips the task when every predicate holds
	Uptodate []Predicate
	// Clean removes Targets on cleanup
	Clean        bool
	CleanActions []Action
}

// FromTarget builds the task that writes a registered model for project name:
// ensure the parent directory, then construct and write the model. The task
// is up to date while its target exists.
func FromTarget(t *model.Target, name string) Task {
	path := t.PathFor(name)
	return Task{
		Name: t.Name,
		Doc:  t.Doc,
		Actions: []Action{
			CreateFolder(filepath.Dir(path)),
			WriteModel(path, func() model.Model { return t.New(name) }),
		},
		Targets:  []string{path},
		Uptodate: []Predicate{Exists(path)},
		Clean:    true,
	}
}

// Prefix returns copies of tasks with group prepended to each name, the way
// subtasks are addressed on the command line (new:pyproject).
func Prefix(group string, tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Name = group + ":" + t.Name
		out[i] = t
	}
	return out
}

// Select returns the tasks matching names, in declaration order. A name
// selects a task by its full name or every task in a group ("new" selects
// "new:*"). No names selects everything.
func Select(tasks []Task, names ...string) ([]Task, error) {
	if len(names) == 0 {
		return tasks, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		found := false
		for _, t := range tasks {
			if matches(t.Name, name) {
				found = true
				break
			}
		}
		if !found {
			return nil, &UnknownTaskError{Name: name, Known: Names(tasks)}
		}
		wanted[name] = true
	}

	var selected []Task
	for _, t := range tasks {
		for name := range wanted {
			if matches(t.Name, name) {
				selected = append(selected, t)
				break
			}
		}
	}
	return selected, nil
}

func matches(taskName, selector string) bool {
	return taskName == selector || strings.HasPrefix(taskName, selector+":")
}

// Names lists task names in order
func Names(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}
