package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/ops"
)

// Registries in these tests mirror the even/odd scenario used across
// the packages: op1 depends on b being even.
func scenarioRegistry(t *testing.T) *ops.Registry {
	t.Helper()
	r := ops.NewRegistry()
	if err := r.Register("op1",
		func(job *models.Job) (bool, error) {
			b, ok := job.SPInt("b")
			if !ok {
				return false, fmt.Errorf("statepoint has no b")
			}
			return b%2 == 0, nil
		},
		func(job *models.Job) (string, error) { return "echo hello", nil },
	); err != nil {
		t.Fatalf("register op1: %v", err)
	}
	if err := r.RegisterLabel("default_label",
		func(job *models.Job) (bool, error) { return true, nil }); err != nil {
		t.Fatalf("register label: %v", err)
	}
	return r
}

func TestInitAndOpen(t *testing.T) {
	root := t.TempDir()
	reg := scenarioRegistry(t)

	p, err := Init(root, "TestProject", reg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if p.Name != "TestProject" {
		t.Errorf("expected project name TestProject, got %q", p.Name)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Re-init must refuse.
	if _, err := Init(root, "TestProject", reg); err == nil {
		t.Error("expected second Init to fail")
	}

	p2, err := Open(root, reg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p2.Close()
	if p2.Name != "TestProject" {
		t.Errorf("reopened project name = %q", p2.Name)
	}
}

func TestOpenMissingProject(t *testing.T) {
	if _, err := Open(t.TempDir(), scenarioRegistry(t)); err == nil {
		t.Error("expected Open on empty dir to fail")
	}
}

func TestOpenMalformedManifest(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ManifestName)
	if err := os.WriteFile(path, []byte("name: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(root, scenarioRegistry(t)); err == nil {
		t.Error("expected malformed manifest error")
	}
}

func TestOpenJobIdempotent(t *testing.T) {
	p := NewInMemory("TestProject", scenarioRegistry(t))
	defer p.Close()

	sp := map[string]interface{}{"a": 1, "b": 2}
	j1, err := p.OpenJob(sp)
	if err != nil {
		t.Fatalf("OpenJob failed: %v", err)
	}
	j2, err := p.OpenJob(sp)
	if err != nil {
		t.Fatalf("second OpenJob failed: %v", err)
	}
	if j1.ID != j2.ID {
		t.Errorf("same statepoint produced ids %s and %s", j1.ID, j2.ID)
	}
	jobs, err := p.Jobs()
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected 1 job in pool, got %d", len(jobs))
	}
}

func TestFindJobs(t *testing.T) {
	p := NewInMemory("TestProject", scenarioRegistry(t))
	defer p.Close()

	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if _, err := p.OpenJob(map[string]interface{}{"a": a, "b": b}); err != nil {
				t.Fatalf("OpenJob failed: %v", err)
			}
		}
	}

	byA, err := p.FindJobs("", map[string]string{"a": "1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byA) != 3 {
		t.Errorf("filter a=1 matched %d jobs, want 3", len(byA))
	}

	all, _ := p.Jobs()
	prefix := all[0].ID[:8]
	byID, err := p.FindJobs(prefix, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(byID) == 0 {
		t.Errorf("id prefix %q matched nothing", prefix)
	}
	for _, j := range byID {
		if !strings.HasPrefix(j.ID, prefix) {
			t.Errorf("job %s does not match prefix %q", j.ID, prefix)
		}
	}

	none, err := p.FindJobs("", map[string]string{"a": "9"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("filter a=9 matched %d jobs, want 0", len(none))
	}
}

func TestClassifyAndNext(t *testing.T) {
	p := NewInMemory("TestProject", scenarioRegistry(t))
	defer p.Close()

	even, err := p.OpenJob(map[string]interface{}{"a": 0, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	odd, err := p.OpenJob(map[string]interface{}{"a": 0, "b": 1})
	if err != nil {
		t.Fatal(err)
	}

	labels, err := p.Classify(even)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(labels) != 1 || labels[0] != "default_label" {
		t.Errorf("unexpected labels %v", labels)
	}

	next, err := p.NextOperation(even)
	if err != nil {
		t.Fatal(err)
	}
	if next == nil || next.Op.Name != "op1" {
		t.Errorf("expected op1 for even job, got %+v", next)
	}

	next, err = p.NextOperation(odd)
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Errorf("expected no next operation for odd job, got %s", next.Op.Name)
	}
}

func TestScript(t *testing.T) {
	p := NewInMemory("TestProject", scenarioRegistry(t))
	defer p.Close()

	job, err := p.OpenJob(map[string]interface{}{"a": 0, "b": 0})
	if err != nil {
		t.Fatal(err)
	}
	jobOps, err := p.NextOperations(job)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobOps) != 1 {
		t.Fatalf("expected 1 eligible operation, got %d", len(jobOps))
	}
	script, err := p.Script(jobOps)
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	wantID := p.OperationID(job.ID, "op1")
	if !strings.Contains(script, wantID) {
		t.Errorf("script missing bundle id %q:\n%s", wantID, script)
	}
	if !strings.Contains(script, "echo hello") {
		t.Errorf("script missing command:\n%s", script)
	}
}
