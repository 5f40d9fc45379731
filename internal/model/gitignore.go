package model

import (
	"bytes"
	"text/template"
)

var gitignoreTemplate = template.Must(template.New("gitignore").Parse(`.kindling/
__pycache__
_build
{{.VersionFile}}
*.egg-info
`))

// Gitignore is the project's .gitignore
type Gitignore struct {
	VersionFile string
}

func NewGitignore(name string) *Gitignore {
	return &Gitignore{VersionFile: VersionFile(name)}
}

func (g *Gitignore) Dump() ([]byte, error) {
	var buf bytes.Buffer
	if err := gitignoreTemplate.Execute(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
