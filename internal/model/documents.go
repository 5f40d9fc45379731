package model

import (
	"fmt"

	"github.com/google/uuid"
)

// TOC is the jupyter-book table of contents written to _toc.yml
type TOC struct {
	Format   string    `json:"format"`
	Root     string    `json:"root"`
	Chapters []Chapter `json:"chapters"`
}

type Chapter struct {
	File string `json:"file"`
}

// NotebookFile is the starter notebook path for a project
func NotebookFile(name string) string {
	return fmt.Sprintf("docs/test_%s.ipynb", name)
}

// NewTOC builds a table of contents with the starter notebook as its only chapter
func NewTOC(name string) *TOC {
	return &TOC{
		Format:   "jb-book",
		Root:     "README.md",
		Chapters: []Chapter{{File: NotebookFile(name)}},
	}
}

func (t *TOC) Dump() ([]byte, error) {
	return EncodeDocument(t)
}

// DocsConfig is the jupyter-book config written to docs/_config.yml
type DocsConfig struct {
	Title   string         `json:"title"`
	Execute ExecuteOptions `json:"execute"`
}

type ExecuteOptions struct {
	ExecuteNotebooks string `json:"execute_notebooks"`
}

// NewDocsConfig builds a docs config titled after the project with notebook
// execution disabled.
func NewDocsConfig(name string) *DocsConfig {
	return &DocsConfig{
		Title:   name,
		Execute: ExecuteOptions{ExecuteNotebooks: "off"},
	}
}

func (c *DocsConfig) Dump() ([]byte, error) {
	return EncodeDocument(c)
}

// Notebook is an nbformat 4.5 document
type Notebook struct {
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
	Metadata      map[string]any `json:"metadata"`
	Cells         []any          `json:"cells"`
}

type MarkdownCell struct {
	ID       string         `json:"id"`
	CellType string         `json:"cell_type"`
	Metadata map[string]any `json:"metadata"`
	Source   string         `json:"source"`
}

type CodeCell struct {
	ID             string         `json:"id"`
	CellType       string         `json:"cell_type"`
	Metadata       map[string]any `json:"metadata"`
	ExecutionCount *int           `json:"execution_count"`
	Source         string         `json:"source"`
	Outputs        []any          `json:"outputs"`
}

// NewNotebook builds the two-cell starter test notebook. Cell ids are fresh
// on every call.
func NewNotebook(name string) *Notebook {
	pkg := PackageName(name)

	return &Notebook{
		NBFormat:      4,
		NBFormatMinor: 5,
		Metadata:      map[string]any{},
		Cells: []any{
			MarkdownCell{
				ID:       cellID(),
				CellType: "markdown",
				Metadata: map[string]any{},
				Source:   fmt.Sprintf("# `%s` tests", name),
			},
			CodeCell{
				ID:       cellID(),
				CellType: "code",
				Metadata: map[string]any{},
				Source:   fmt.Sprintf("import %s\n%s", pkg, pkg),
				Outputs:  []any{},
			},
		},
	}
}

// cellID prefers a time-based id and falls back to a random one when the
// node id cannot be read.
func cellID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (n *Notebook) Dump() ([]byte, error) {
	return EncodeDocument(n)
}
