package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/flowforge/flowforge/pkg/models"
)

// backends returns one instance of each store implementation; the two
// must agree on all mapping semantics.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "project.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestJobInsertionOrder(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ids := []string{"c-job", "a-job", "b-job"}
			for i, id := range ids {
				if err := st.InsertJob(id, map[string]interface{}{"i": i}); err != nil {
					t.Fatalf("InsertJob: %v", err)
				}
			}
			// Idempotent re-insert must not duplicate or reorder.
			if err := st.InsertJob("c-job", map[string]interface{}{"i": 0}); err != nil {
				t.Fatalf("re-insert: %v", err)
			}

			jobs, err := st.AllJobs()
			if err != nil {
				t.Fatalf("AllJobs: %v", err)
			}
			if len(jobs) != 3 {
				t.Fatalf("pool size = %d, want 3", len(jobs))
			}
			for i, id := range ids {
				if jobs[i].ID != id {
					t.Errorf("pool position %d = %s, want %s (insertion order)", i, jobs[i].ID, id)
				}
			}
		})
	}
}

func TestGetJobNotFound(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.GetJob("nope"); !errors.Is(err, ErrJobNotFound) {
				t.Errorf("expected ErrJobNotFound, got %v", err)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.InsertJob("j1", map[string]interface{}{"a": 1}); err != nil {
				t.Fatal(err)
			}

			if _, ok, err := st.GetDocument("j1", "test"); err != nil || ok {
				t.Fatalf("unset document: ok=%v err=%v", ok, err)
			}

			if err := st.SetDocument("j1", "test", true); err != nil {
				t.Fatalf("SetDocument: %v", err)
			}
			v, ok, err := st.GetDocument("j1", "test")
			if err != nil || !ok {
				t.Fatalf("GetDocument after write: ok=%v err=%v", ok, err)
			}
			if b, _ := v.(bool); !b {
				t.Errorf("document value = %v, want true", v)
			}

			// Overwrite is immediately visible.
			if err := st.SetDocument("j1", "test", false); err != nil {
				t.Fatal(err)
			}
			v, _, _ = st.GetDocument("j1", "test")
			if b, _ := v.(bool); b {
				t.Errorf("document overwrite not visible")
			}

			// Reads through a bound job see the same value.
			job, err := st.GetJob("j1")
			if err != nil {
				t.Fatal(err)
			}
			if _, ok, err := job.Doc("test"); err != nil || !ok {
				t.Errorf("job-bound document read: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestBundleMapping(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := models.NewBundle("proj", "", []models.BundleOperation{
				{JobID: "j1", Name: "op1", Cmd: "true"},
				{JobID: "j2", Name: "op1", Cmd: "true"},
			})
			opIDs := b.OperationIDs("proj")

			// Unmapped operations report unknown, not an error.
			got, err := st.OperationStatus(opIDs[0])
			if err != nil || got != models.StatusUnknown {
				t.Fatalf("unmapped OperationStatus = %s, %v", got, err)
			}

			if err := st.SaveBundle(b, opIDs, models.StatusSubmitted); err != nil {
				t.Fatalf("SaveBundle: %v", err)
			}

			rec, err := st.GetBundle(b.ID)
			if err != nil {
				t.Fatalf("GetBundle: %v", err)
			}
			if rec.Status != models.StatusSubmitted || len(rec.Bundle.Operations) != 2 {
				t.Errorf("record = %+v", rec)
			}

			for _, opID := range opIDs {
				got, err := st.OperationStatus(opID)
				if err != nil {
					t.Fatalf("OperationStatus: %v", err)
				}
				if got != models.StatusSubmitted {
					t.Errorf("OperationStatus(%s) = %s, want submitted", opID, got)
				}
			}

			if err := st.UpdateBundleStatus(b.ID, models.StatusActive); err != nil {
				t.Fatalf("UpdateBundleStatus: %v", err)
			}
			got, _ = st.OperationStatus(opIDs[1])
			if got != models.StatusActive {
				t.Errorf("status after update = %s, want active", got)
			}

			all, err := st.AllBundles()
			if err != nil {
				t.Fatalf("AllBundles: %v", err)
			}
			if len(all) != 1 {
				t.Errorf("AllBundles returned %d records, want 1", len(all))
			}
		})
	}
}

// TestBundleRemapping checks that a resubmission (a new bundle over the
// same operation) takes over the operation index.
func TestBundleRemapping(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			opID := models.OperationID("proj", "j1", "op1")
			ops := []models.BundleOperation{{JobID: "j1", Name: "op1", Cmd: "true"}}

			first := models.NewBundle("proj", "", ops)
			if err := st.SaveBundle(first, []string{opID}, models.StatusSubmitted); err != nil {
				t.Fatal(err)
			}
			if err := st.UpdateBundleStatus(first.ID, models.StatusInactive); err != nil {
				t.Fatal(err)
			}

			second := models.NewBundle("proj", "retry-bundle", ops)
			if err := st.SaveBundle(second, []string{opID}, models.StatusSubmitted); err != nil {
				t.Fatal(err)
			}

			got, err := st.OperationStatus(opID)
			if err != nil {
				t.Fatal(err)
			}
			if got != models.StatusSubmitted {
				t.Errorf("operation tracks stale bundle: status = %s", got)
			}
		})
	}
}

func TestUpdateMissingBundle(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := st.UpdateBundleStatus("ghost", models.StatusInactive)
			if !errors.Is(err, ErrBundleNotFound) {
				t.Errorf("expected ErrBundleNotFound, got %v", err)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.HealthCheck(); err != nil {
				t.Errorf("HealthCheck: %v", err)
			}
		})
	}
}
