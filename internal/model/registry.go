package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrDuplicateTarget is returned when a name or path is registered twice
var ErrDuplicateTarget = errors.New("duplicate target")

// Factory constructs a model from a project name
type Factory func(name string) Model

// Target binds a model factory to its output path. Path may contain the
// {name} and {pkg} placeholders.
type Target struct {
	Name string
	Doc  string
	Path string
	New  Factory
}

// PathFor resolves the target path for a project
func (t *Target) PathFor(name string) string {
	r := strings.NewReplacer("{name}", name, "{pkg}", PackageName(name))
	return r.Replace(t.Path)
}

// Registry manages the file targets kindling knows how to write
type Registry struct {
	targets map[string]*Target
	order   []string
	mutex   sync.RWMutex
}

// NewRegistry creates an empty target registry
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]*Target),
	}
}

// Register adds a target. Names and paths must both be unique.
func (r *Registry) Register(t *Target) error {
	if t.Name == "" {
		return fmt.Errorf("target name is required")
	}
	if t.Path == "" {
		return fmt.Errorf("target %s: path is required", t.Name)
	}
	if t.New == nil {
		return fmt.Errorf("target %s: factory is required", t.Name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.targets[t.Name]; exists {
		return fmt.Errorf("target %s: %w", t.Name, ErrDuplicateTarget)
	}
	for _, other := range r.targets {
		if other.Path == t.Path {
			return fmt.Errorf("target %s: path %s already bound to %s: %w", t.Name, t.Path, other.Name, ErrDuplicateTarget)
		}
	}

	r.targets[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Get retrieves a target by name
func (r *Registry) Get(name string) (*Target, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	t, exists := r.targets[name]
	if !exists {
		return nil, fmt.Errorf("target %s not found", name)
	}
	return t, nil
}

// List returns all targets in registration order
func (r *Registry) List() []*Target {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	targets := make([]*Target, 0, len(r.order))
	for _, name := range r.order {
		targets = append(targets, r.targets[name])
	}
	return targets
}

// Exists checks if a target is registered
func (r *Registry) Exists(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.targets[name]
	return exists
}

// Builtin target names
const (
	TargetPyproject = "pyproject"
	TargetSetupCfg  = "setupcfg"
	TargetTOC       = "toc"
	TargetConfig    = "config"
	TargetNotebook  = "notebook"
	TargetGitignore = "gitignore"
	TargetRelease   = "release"
	TargetTest      = "test"
)

// Builtin returns a registry holding every model kindling writes into a new
// project, in scaffolding order. requires seeds setup.cfg install_requires.
func Builtin(requires ...string) *Registry {
	r := NewRegistry()
	targets := []*Target{
		{
			Name: TargetPyproject,
			Doc:  "build descriptor",
			Path: "pyproject.toml",
			New:  func(name string) Model { return NewPyproject(name) },
		},
		{
			Name: TargetSetupCfg,
			Doc:  "packaging descriptor",
			Path: "setup.cfg",
			New:  func(name string) Model { return NewSetupCfg(name, requires...) },
		},
		{
			Name: TargetTOC,
			Doc:  "documentation table of contents",
			Path: "_toc.yml",
			New:  func(name string) Model { return NewTOC(name) },
		},
		{
			Name: TargetConfig,
			Doc:  "documentation config",
			Path: "docs/_config.yml",
			New:  func(name string) Model { return NewDocsConfig(name) },
		},
		{
			Name: TargetNotebook,
			Doc:  "starter test notebook",
			Path: "docs/test_{name}.ipynb",
			New:  func(name string) Model { return NewNotebook(name) },
		},
		{
			Name: TargetGitignore,
			Doc:  "git ignore rules",
			Path: ".gitignore",
			New:  func(name string) Model { return NewGitignore(name) },
		},
		{
			Name: TargetRelease,
			Doc:  "release workflow",
			Path: WorkflowsDir + "/release.yml",
			New:  func(name string) Model { return NewRelease(name) },
		},
		{
			Name: TargetTest,
			Doc:  "test workflow",
			Path: WorkflowsDir + "/test.yml",
			New:  func(name string) Model { return NewTest(name) },
		},
	}

	for _, t := range targets {
		mustRegister(r, t)
	}
	return r
}

// mustRegister panics when t cannot be registered
func mustRegister(r *Registry, t *Target) {
	if err := r.Register(t); err != nil {
		panic(fmt.Sprintf("model: builtin target: %v", err))
	}
}
