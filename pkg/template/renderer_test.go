package template

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowforge/flowforge/pkg/models"
)

func testBundle() *models.Bundle {
	return models.NewBundle("proj", "", []models.BundleOperation{
		{JobID: "0d32543f785d3459f27ee15ef4eb0c40", Name: "op1", Cmd: `echo "hello" > world.txt`},
		{JobID: "6f4f8d7b5ad1dbf4a4cf1c2c0b701e5d", Name: "op2", Cmd: "flowforge exec op2"},
	})
}

func TestRenderBase(t *testing.T) {
	r := NewRenderer(nil)
	b := testBundle()

	script, err := r.Render("run", b)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	first := strings.SplitN(script, "\n", 2)[0]
	if first != "# "+b.ID {
		t.Errorf("first line = %q, want bundle id comment", first)
	}
	for _, op := range b.Operations {
		if !strings.Contains(script, op.JobID) {
			t.Errorf("script missing job id %s", op.JobID)
		}
		if !strings.Contains(script, op.Cmd) {
			t.Errorf("script missing command %q", op.Cmd)
		}
	}
	if !strings.Contains(script, "#!/bin/bash") {
		t.Error("default header block missing")
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := MapSource{"run": `{{define "header"}}CUSTOM HEADER{{end}}`}
	r := NewRenderer(src)
	b := testBundle()

	first, err := r.Render("run", b)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Render("run", b)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatal("identical bundle and template set rendered differently")
		}
	}
}

// TestRenderOverride checks block-replacement semantics: overridden
// blocks change, untouched blocks keep their default content.
func TestRenderOverride(t *testing.T) {
	src := MapSource{"run": `{{define "header"}}THIS IS A CUSTOM SCRIPT!{{end}}`}
	r := NewRenderer(src)
	b := testBundle()

	script, err := r.Render("run", b)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(script, "THIS IS A CUSTOM SCRIPT!") {
		t.Error("header override not applied")
	}
	if strings.Contains(script, "#!/bin/bash") {
		t.Error("default header rendered alongside override")
	}
	// Body block untouched by the override.
	for _, op := range b.Operations {
		if !strings.Contains(script, op.Cmd) {
			t.Errorf("body default lost: missing %q", op.Cmd)
		}
	}
	// The id line is not overridable.
	if !strings.HasPrefix(script, "# "+b.ID+"\n") {
		t.Error("bundle id line lost under override")
	}
}

func TestRenderUnknownBlockIgnored(t *testing.T) {
	src := MapSource{"run": `{{define "no_such_block"}}IGNORED{{end}}`}
	r := NewRenderer(src)

	script, err := r.Render("run", testBundle())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(script, "IGNORED") {
		t.Error("undeclared block content leaked into the script")
	}
}

func TestRenderMalformedOverride(t *testing.T) {
	src := MapSource{"run": `{{define "header"}}unterminated`}
	r := NewRenderer(src)

	_, err := r.Render("run", testBundle())
	var terr *TemplateError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	src := NewDirSource(dir)

	// Absence is not an error.
	if _, found, err := src.Lookup("run"); err != nil || found {
		t.Fatalf("empty dir: found=%v err=%v", found, err)
	}

	content := `{{define "header"}}FROM DISK{{end}}`
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	got, found, err := src.Lookup("run")
	if err != nil || !found {
		t.Fatalf("Lookup: found=%v err=%v", found, err)
	}
	if got != content {
		t.Errorf("Lookup content = %q", got)
	}

	script, err := NewRenderer(src).Render("run", testBundle())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "FROM DISK") {
		t.Error("disk override not applied")
	}
}
