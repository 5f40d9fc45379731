package model

import "fmt"

// Pyproject is the build descriptor written to pyproject.toml
type Pyproject struct {
	Tool        Tool        `toml:"tool"`
	BuildSystem BuildSystem `toml:"build-system"`
}

// Tool holds the [tool.*] tables
type Tool struct {
	SetuptoolsSCM SetuptoolsSCM `toml:"setuptools_scm"`
	Kindling      KindlingTool  `toml:"kindling"`
	Isort         Isort         `toml:"isort"`
	Black         Black         `toml:"black"`
	Pytest        Pytest        `toml:"pytest"`
}

type SetuptoolsSCM struct {
	WriteTo       string `toml:"write_to"`
	VersionScheme string `toml:"version_scheme"`
	LocalScheme   string `toml:"local_scheme"`
}

// KindlingTool is read back by kindling's own configuration loader
type KindlingTool struct {
	Name      string       `toml:"name"`
	Verbosity int          `toml:"verbosity"`
	List      ListSettings `toml:"list"`
}

type ListSettings struct {
	Status   bool `toml:"status"`
	Subtasks bool `toml:"subtasks"`
}

type Isort struct {
	Profile string `toml:"profile"`
}

type Black struct {
	LineLength int `toml:"line_length"`
}

type Pytest struct {
	IniOptions PytestIniOptions `toml:"ini_options"`
}

type PytestIniOptions struct {
	Addopts string `toml:"addopts"`
}

// BuildSystem is the PEP 518 [build-system] table
type BuildSystem struct {
	Requires     []string `toml:"requires"`
	BuildBackend string   `toml:"build-backend"`
}

// VersionFile is the setuptools_scm output path for a project
func VersionFile(name string) string {
	return fmt.Sprintf("src/%s/_version.py", PackageName(name))
}

// NewPyproject builds the default build descriptor for a project
func NewPyproject(name string) *Pyproject {
	return &Pyproject{
		Tool: Tool{
			SetuptoolsSCM: SetuptoolsSCM{
				WriteTo:       VersionFile(name),
				VersionScheme: "release-branch-semver",
				LocalScheme:   "node-and-timestamp",
			},
			Kindling: KindlingTool{
				Name:      name,
				Verbosity: 2,
				List:      ListSettings{Status: true, Subtasks: true},
			},
			Isort: Isort{Profile: "black"},
			Black: Black{LineLength: 100},
			Pytest: Pytest{
				IniOptions: PytestIniOptions{
					Addopts: "--nbval --sanitize-with docs/sanitize.cfg -pno:warnings",
				},
			},
		},
		BuildSystem: BuildSystem{
			Requires:     []string{"setuptools>=45", "wheel", "setuptools_scm>=6.2"},
			BuildBackend: "setuptools.build_meta",
		},
	}
}

// Dump renders the descriptor as TOML
func (p *Pyproject) Dump() ([]byte, error) {
	return EncodeTOML(p)
}
