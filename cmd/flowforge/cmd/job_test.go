package cmd

import (
	"strings"
	"testing"

	"github.com/flowforge/flowforge/pkg/models"
)

func TestStatepointJSON(t *testing.T) {
	job, err := models.NewJob(map[string]interface{}{"a": 1, "b": 2}, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := statepointJSON(job)
	if err != nil {
		t.Fatalf("statepointJSON failed: %v", err)
	}
	if got != `{"a":1,"b":2}` {
		t.Errorf("statepoint rendered as %q, want {\"a\":1,\"b\":2}", got)
	}
	// The column must show the parameters, not repeat the job id.
	if strings.Contains(got, job.ID) {
		t.Errorf("statepoint rendering contains the job id: %q", got)
	}
}
