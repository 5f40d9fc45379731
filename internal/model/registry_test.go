package model

import (
	"errors"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	target := &Target{
		Name: "readme",
		Path: "README.md",
		New:  func(name string) Model { return NewGitignore(name) },
	}

	if err := registry.Register(target); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Same name again
	err := registry.Register(target)
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Errorf("Register() duplicate name error = %v, want ErrDuplicateTarget", err)
	}

	// Different name, same path
	err = registry.Register(&Target{Name: "other", Path: "README.md", New: target.New})
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Errorf("Register() duplicate path error = %v, want ErrDuplicateTarget", err)
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	registry := NewRegistry()
	factory := func(name string) Model { return NewTOC(name) }

	tests := []struct {
		name   string
		target *Target
	}{
		{"missing name", &Target{Path: "x", New: factory}},
		{"missing path", &Target{Name: "x", New: factory}},
		{"missing factory", &Target{Name: "x", Path: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := registry.Register(tt.target); err == nil {
				t.Error("Register() should fail")
			}
		})
	}
}

func TestRegistryGet(t *testing.T) {
	registry := Builtin()

	got, err := registry.Get(TargetTOC)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Path != "_toc.yml" {
		t.Errorf("Get() path = %v, want _toc.yml", got.Path)
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("Get() should fail for non-existent target")
	}

	if !registry.Exists(TargetRelease) {
		t.Error("Exists() should report the release target")
	}
}

func TestBuiltinOrder(t *testing.T) {
	want := []string{
		TargetPyproject, TargetSetupCfg, TargetTOC, TargetConfig,
		TargetNotebook, TargetGitignore, TargetRelease, TargetTest,
	}

	got := Builtin().List()
	if len(got) != len(want) {
		t.Fatalf("List() returned %d targets, want %d", len(got), len(want))
	}
	for i, target := range got {
		if target.Name != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, target.Name, want[i])
		}
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	registry := Builtin()
	target, err := registry.Get(TargetPyproject)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("mustRegister did not panic on a duplicate target")
		}
	}()
	mustRegister(registry, target)
}

func TestTargetPathFor(t *testing.T) {
	target := &Target{Path: "src/{pkg}/{name}.txt"}
	if got := target.PathFor("my-lib"); got != "src/my_lib/my-lib.txt" {
		t.Errorf("PathFor() = %s", got)
	}

	nb, _ := Builtin().Get(TargetNotebook)
	if got := nb.PathFor("sample"); got != "docs/test_sample.ipynb" {
		t.Errorf("PathFor() = %s, want docs/test_sample.ipynb", got)
	}
}

func TestBuiltinSeedsRequires(t *testing.T) {
	target, _ := Builtin("requests").Get(TargetSetupCfg)
	cfg := target.New("sample").(*SetupCfg)
	if len(cfg.Options.InstallRequires) != 1 || cfg.Options.InstallRequires[0] != "requests" {
		t.Errorf("InstallRequires = %v, want [requests]", cfg.Options.InstallRequires)
	}
}
