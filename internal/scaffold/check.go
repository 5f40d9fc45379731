package scaffold

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kindling-dev/kindling/internal/model"
)

// Finding is one problem found in a generated file
type Finding struct {
	File    string
	Problem string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.File, f.Problem)
}

// Check parses every generated descriptor with a parser for its format and
// verifies the values kindling wrote for project name. An empty result means
// the project is consistent.
func Check(root, name string) ([]Finding, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}

	checks := []struct {
		file  string
		check func([]byte) []string
	}{
		{Pyproject, checkPyproject(name)},
		{SetupCfg, checkSetupCfg(name)},
		{TOC, checkTOC(name)},
		{Config, checkDocsConfig(name)},
		{model.NotebookFile(name), checkNotebook},
		{model.WorkflowsDir + "/release.yml", checkWorkflow},
		{model.WorkflowsDir + "/test.yml", checkWorkflow},
	}

	var findings []Finding
	for _, c := range checks {
		data, err := os.ReadFile(filepath.Join(root, c.file))
		if errors.Is(err, os.ErrNotExist) {
			findings = append(findings, Finding{File: c.file, Problem: "missing"})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", c.file, err)
		}
		for _, problem := range c.check(data) {
			findings = append(findings, Finding{File: c.file, Problem: problem})
		}
	}

	return findings, nil
}

func checkPyproject(name string) func([]byte) []string {
	return func(data []byte) []string {
		var doc model.Pyproject
		if err := toml.Unmarshal(data, &doc); err != nil {
			return []string{fmt.Sprintf("invalid toml: %v", err)}
		}

		var problems []string
		if want := model.VersionFile(name); doc.Tool.SetuptoolsSCM.WriteTo != want {
			problems = append(problems, fmt.Sprintf("tool.setuptools_scm.write_to = %q, want %q", doc.Tool.SetuptoolsSCM.WriteTo, want))
		}
		if doc.BuildSystem.BuildBackend == "" {
			problems = append(problems, "build-system.build-backend is empty")
		}
		return problems
	}
}

func checkSetupCfg(name string) func([]byte) []string {
	return func(data []byte) []string {
		sections, err := model.ParseCfg(data)
		if err != nil {
			return []string{fmt.Sprintf("invalid cfg: %v", err)}
		}

		var problems []string
		if got := sections["metadata"]["name"]; got != name {
			problems = append(problems, fmt.Sprintf("metadata.name = %q, want %q", got, name))
		}
		if _, ok := sections["options"]; !ok {
			problems = append(problems, "missing [options] section")
		}
		return problems
	}
}

func checkTOC(name string) func([]byte) []string {
	return func(data []byte) []string {
		var toc struct {
			Format   string `yaml:"format"`
			Root     string `yaml:"root"`
			Chapters []struct {
				File string `yaml:"file"`
			} `yaml:"chapters"`
		}
		if err := yaml.Unmarshal(data, &toc); err != nil {
			return []string{fmt.Sprintf("invalid yaml: %v", err)}
		}

		var problems []string
		if toc.Format == "" || toc.Root == "" {
			problems = append(problems, "format and root are required")
		}
		found := false
		for _, ch := range toc.Chapters {
			if ch.File == model.NotebookFile(name) {
				found = true
			}
		}
		if !found {
			problems = append(problems, fmt.Sprintf("no chapter for %s", model.NotebookFile(name)))
		}
		return problems
	}
}

func checkDocsConfig(name string) func([]byte) []string {
	return func(data []byte) []string {
		var cfg struct {
			Title string `yaml:"title"`
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return []string{fmt.Sprintf("invalid yaml: %v", err)}
		}
		if cfg.Title != name {
			return []string{fmt.Sprintf("title = %q, want %q", cfg.Title, name)}
		}
		return nil
	}
}

func checkNotebook(data []byte) []string {
	var nb struct {
		NBFormat int               `json:"nbformat"`
		Cells    []json.RawMessage `json:"cells"`
	}
	if err := json.Unmarshal(data, &nb); err != nil {
		return []string{fmt.Sprintf("invalid notebook: %v", err)}
	}
	if nb.NBFormat != 4 {
		return []string{fmt.Sprintf("nbformat = %d, want 4", nb.NBFormat)}
	}
	if len(nb.Cells) == 0 {
		return []string{"notebook has no cells"}
	}
	return nil
}

func checkWorkflow(data []byte) []string {
	var wf map[string]any
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return []string{fmt.Sprintf("invalid yaml: %v", err)}
	}

	var problems []string
	if _, ok := wf["on"]; !ok {
		problems = append(problems, "missing on")
	}
	jobs, ok := wf["jobs"].(map[string]any)
	if !ok || len(jobs) == 0 {
		problems = append(problems, "missing jobs")
	}
	return problems
}
