// Package scaffold assembles the task lists behind `kindling new`,
// `kindling develop` and `kindling docs`.
package scaffold

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/kindling-dev/kindling/internal/model"
	"github.com/kindling-dev/kindling/internal/tasks"
)

//go:embed assets/*
var assetsFS embed.FS

// Project files outside the model registry
const (
	Readme    = "README.md"
	SetupCfg  = "setup.cfg"
	Pyproject = "pyproject.toml"
	TOC       = "_toc.yml"
	DocsDir   = "docs"
	Config    = DocsDir + "/_config.yml"
	Conf      = DocsDir + "/conf.py"
	BuildDir  = "_build"
	HTML      = BuildDir + "/html"
	Noxfile   = "noxfile.py"
	Sanitize  = DocsDir + "/sanitize.cfg"
	GitDir    = ".git"
)

// Task groups
const (
	GroupNew     = "new"
	GroupDevelop = "develop"
	GroupDocs    = "docs"
)

// Options tunes the generated project
type Options struct {
	// Requires seeds setup.cfg options.install_requires
	Requires []string
}

// New returns the tasks that initialise a project called name
func New(name string, opts Options) ([]tasks.Task, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	registry := model.Builtin(opts.Requires...)
	var out []tasks.Task
	for _, target := range registry.List() {
		out = append(out, tasks.FromTarget(target, name))
	}

	pkg := path.Join("src", model.PackageName(name))
	initPy, mainPy := path.Join(pkg, "__init__.py"), path.Join(pkg, "__main__.py")

	out = append(out,
		tasks.Task{
			Name:     "git",
			Doc:      "initialise version control",
			Actions:  []tasks.Action{tasks.Cmd("git", "init")},
			Uptodate: []tasks.Predicate{tasks.Exists(GitDir)},
		},
		copyAsset("nox", "nox session runner config", Noxfile, Noxfile),
		copyAsset("nbval-sanitize", "notebook output sanitizer config", "sanitize.cfg", Sanitize),
		tasks.Task{
			Name: "python",
			Doc:  "stub source package",
			Actions: []tasks.Action{
				tasks.CreateFolder(pkg),
				tasks.WriteFile(initPy, ""),
				tasks.WriteFile(mainPy, ""),
			},
			Targets:  []string{initPy, mainPy},
			Uptodate: []tasks.Predicate{tasks.Exists(initPy), tasks.Exists(mainPy)},
		},
		tasks.Task{
			Name:     "readme",
			Doc:      "project readme",
			Actions:  []tasks.Action{tasks.WriteFile(Readme, fmt.Sprintf("# %s\n", name))},
			Targets:  []string{Readme},
			Uptodate: []tasks.Predicate{tasks.Exists(Readme)},
			Clean:    true,
		},
	)

	return out, nil
}

func copyAsset(name, doc, asset, dst string) tasks.Task {
	return tasks.Task{
		Name:     name,
		Doc:      doc,
		Actions:  []tasks.Action{tasks.CopyFS(assetsFS, path.Join("assets", asset), dst)},
		Targets:  []string{dst},
		Uptodate: []tasks.Predicate{tasks.Exists(dst)},
		Clean:    true,
	}
}

// Develop returns the editable-install task; it reruns whenever the build
// or packaging descriptor changes.
func Develop() []tasks.Task {
	return []tasks.Task{{
		Name:     "install",
		Doc:      "editable install of the project",
		Actions:  []tasks.Action{tasks.Cmd("pip", "install", "-e.")},
		FileDeps: []string{Pyproject, SetupCfg},
	}}
}

// Docs returns the documentation configure and build tasks
func Docs() []tasks.Task {
	return []tasks.Task{
		{
			Name:     "config",
			Doc:      "generate the sphinx configuration",
			Actions:  []tasks.Action{tasks.Cmd("jb", "config", "sphinx", "--config", Config, ".")},
			FileDeps: []string{TOC, Config},
			Targets:  []string{Conf},
			Clean:    true,
		},
		{
			Name:         "build",
			Doc:          "build the html documentation",
			Actions:      []tasks.Action{tasks.Cmd("sphinx-build", "-c", DocsDir, ".", HTML)},
			FileDeps:     []string{Readme, Conf},
			Targets:      []string{HTML},
			CleanActions: []tasks.Action{tasks.RemoveAll(HTML)},
		},
	}
}

// All returns every task group for a project, with group-prefixed names
func All(name string, opts Options) ([]tasks.Task, error) {
	newTasks, err := New(name, opts)
	if err != nil {
		return nil, err
	}

	var all []tasks.Task
	all = append(all, tasks.Prefix(GroupNew, newTasks)...)
	all = append(all, tasks.Prefix(GroupDevelop, Develop())...)
	all = append(all, tasks.Prefix(GroupDocs, Docs())...)
	return all, nil
}
