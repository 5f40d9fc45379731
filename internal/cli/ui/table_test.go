package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Task", "Status"}, &TableOptions{NoColor: true})
	table.Highlight("run", color.FgYellow)

	table.AddRow("new:pyproject", "up-to-date")
	table.AddRow("new:readme", "run")
	table.Render()

	expected := "" +
		"Task           Status\n" +
		"─────────────  ──────────\n" +
		"new:pyproject  up-to-date\n" +
		"new:readme     run\n"
	assert.Equal(t, expected, buf.String())
}

func TestTableDropsExtraCells(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Task"}, &TableOptions{NoColor: true})
	table.AddRow("docs:build", "ignored")
	table.Render()

	assert.Equal(t, "Task\n──────────\ndocs:build\n", buf.String())
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, nil, nil).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Version", "0.1.0")
	kv.AddRow("Go", "go1.23.1")
	kv.Render()

	assert.Equal(t, "Version: 0.1.0\nGo:      go1.23.1\n", buf.String())
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	list := NewList(&buf, ListOptions{NoColor: true})
	list.AddItem("pyproject.toml: missing")
	list.AddItem("setup.cfg: missing")
	list.Render()

	assert.Equal(t, "• pyproject.toml: missing\n• setup.cfg: missing\n", buf.String())
}

func TestListNumbered(t *testing.T) {
	var buf bytes.Buffer
	list := NewList(&buf, ListOptions{Numbered: true, NoColor: true})
	list.AddItem("first")
	list.AddItem("second")
	list.Render()

	assert.Equal(t, "1. first\n2. second\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Tasks", true)
	assert.Equal(t, "Tasks\n─────\n", buf.String())
}
