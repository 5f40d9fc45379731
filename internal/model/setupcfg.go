package model

// SetupCfg is the setuptools declarative config written to setup.cfg
type SetupCfg struct {
	Metadata      Metadata            `cfg:"metadata"`
	Options       Options             `cfg:"options"`
	ExtrasRequire map[string][]string `cfg:"options.extras_require"`
}

type Metadata struct {
	Name                       string `cfg:"name"`
	Description                string `cfg:"description"`
	LongDescription            string `cfg:"long_description"`
	LongDescriptionContentType string `cfg:"long_description_content_type"`
	URL                        string `cfg:"url"`
	Author                     string `cfg:"author"`
	AuthorEmail                string `cfg:"author_email"`
	Keywords                   string `cfg:"keywords"`
}

type Options struct {
	InstallRequires []string `cfg:"install_requires"`
	PackageDir      string   `cfg:"package_dir"`
	Packages        string   `cfg:"packages"`
}

// NewSetupCfg builds the default packaging descriptor. requires seeds
// options.install_requires.
func NewSetupCfg(name string, requires ...string) *SetupCfg {
	return &SetupCfg{
		Metadata: Metadata{
			Name:                       name,
			LongDescription:            "file: README.md",
			LongDescriptionContentType: "text/markdown",
		},
		Options: Options{
			InstallRequires: requires,
			PackageDir:      "\n=src",
			Packages:        "find:",
		},
		ExtrasRequire: map[string][]string{
			"doc":  {"jupyter-book"},
			"test": {"pytest", "nbval"},
		},
	}
}

// Dump renders the descriptor in configparser layout
func (s *SetupCfg) Dump() ([]byte, error) {
	return EncodeCfg(s)
}
