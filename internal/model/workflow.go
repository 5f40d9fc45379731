package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// WorkflowsDir holds the GitHub Actions workflow files
	WorkflowsDir = ".github/workflows"

	// DefaultRunner is the runs-on value for generated jobs
	DefaultRunner = "ubuntu-latest"

	// DefaultPyPIUser authenticates uploads with an API token
	DefaultPyPIUser = "__token__"
)

// Workflow is a GitHub Actions pipeline descriptor
type Workflow struct {
	On   any            `json:"on"`
	Jobs map[string]Job `json:"jobs"`
}

type Job struct {
	Steps    []Step         `json:"steps"`
	Strategy map[string]any `json:"strategy,omitempty"`
	RunsOn   string         `json:"runs-on"`
}

// Step is either an action step (Uses/With) or a run step (Run)
type Step struct {
	Name string `json:"name"`
	Uses string `json:"uses,omitempty"`
	With Inputs `json:"with,omitempty"`
	Run  string `json:"run,omitempty"`
}

// Input is one entry of a step's with block
type Input struct {
	Key   string
	Value any
}

// Inputs keeps a step's with block in declaration order
type Inputs []Input

// Get returns the value stored under key
func (in Inputs) Get(key string) (any, bool) {
	for _, input := range in {
		if input.Key == key {
			return input.Value, true
		}
	}
	return nil, false
}

func (in Inputs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, input := range in {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(input.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(input.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (in *Inputs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return fmt.Errorf("with: expected object, got %v", tok)
	}

	*in = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("with: expected key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		*in = append(*in, Input{Key: key, Value: value})
	}
	_, err := dec.Token()
	return err
}

// NewJob creates a job on the default runner
func NewJob(steps ...Step) Job {
	return Job{Steps: steps, RunsOn: DefaultRunner}
}

// WithMatrix returns a copy of j that fans out over python versions
func (j Job) WithMatrix(versions ...any) Job {
	j.Strategy = map[string]any{
		"matrix": map[string]any{"python-version": versions},
	}
	return j
}

func (w *Workflow) Dump() ([]byte, error) {
	return EncodeDocument(w)
}

// Step helpers shared by the generated workflows

func SetupPython(version any) Step {
	return Step{
		Name: "setup python",
		Uses: "actions/setup-python@v2",
		With: Inputs{{Key: "python-version", Value: version}},
	}
}

func Checkout() Step {
	return Step{
		Name: "fetch all history and tags",
		Uses: "actions/checkout@v2",
		With: Inputs{{Key: "fetch-depth", Value: 0}},
	}
}

func Upgrade(packages string) Step {
	return Step{
		Name: "upgrade dependencies",
		Run:  fmt.Sprintf("python -m pip install --upgrade %s", packages),
	}
}

func BuildDist() Step {
	return Step{Name: "build python", Run: "python -m build --sdist --wheel"}
}

func NoxTest() Step {
	return Step{Name: "test within nox", Run: "nox -s test"}
}

func Publish(user string) Step {
	return Step{
		Name: "publish",
		Uses: "pypa/gh-action-pypi-publish@master",
		With: Inputs{
			{Key: "user", Value: user},
			{Key: "password", Value: "${{ secrets.pypi_password }}"},
		},
	}
}

// NewRelease builds the workflow that publishes to PyPI when a release is created
func NewRelease(name string) *Workflow {
	return &Workflow{
		On: map[string]any{
			"release": map[string]any{"types": []string{"created"}},
		},
		Jobs: map[string]Job{
			"pypi": NewJob(
				SetupPython(3.9),
				Checkout(),
				Upgrade("pip build setuptools wheel"),
				BuildDist(),
				Publish(DefaultPyPIUser),
			),
		},
	}
}

// NewTest builds the workflow that runs the nox test session on every push
func NewTest(name string) *Workflow {
	return &Workflow{
		On: []string{"push"},
		Jobs: map[string]Job{
			"pypi": NewJob(
				Checkout(),
				SetupPython("${{ matrix.python-version }}"),
				Upgrade("pip nox"),
				NoxTest(),
			).WithMatrix(3.8, 3.9),
		},
	}
}
