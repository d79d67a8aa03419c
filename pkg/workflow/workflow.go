// Package workflow defines the reference workflow the binaries ship
// with. Embedding projects build their own registry against pkg/ops and
// reuse the same machinery.
//
// The reference pipeline runs over statepoints {a, b}: "hello" writes a
// greeting file for jobs with even b, "finalize" flags the job document
// and thereby completes.
package workflow

import (
	"fmt"

	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/ops"
	"github.com/flowforge/flowforge/pkg/project"
)

// ExecFunc runs an operation's payload in-process. The CLI prefers it
// over shelling out when an operation provides one.
type ExecFunc func(p *project.Project, job *models.Job) error

// ExecFuncs maps operation names to their in-process payloads.
var ExecFuncs = map[string]ExecFunc{
	"finalize": func(p *project.Project, job *models.Job) error {
		return job.SetDoc("processed", true)
	},
}

// Registry builds the reference workflow registry. Registration order
// is display and submission order.
func Registry() *ops.Registry {
	r := ops.NewRegistry()

	evenB := func(job *models.Job) (bool, error) {
		b, ok := job.SPInt("b")
		if !ok {
			return false, fmt.Errorf("statepoint has no integer parameter b")
		}
		return b%2 == 0, nil
	}
	processed := func(job *models.Job) (bool, error) {
		v, ok, err := job.Doc("processed")
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		flag, _ := v.(bool)
		return flag, nil
	}

	must(r.Register("hello", evenB, func(job *models.Job) (string, error) {
		return "echo 'hello' > world.txt", nil
	}))
	must(r.RegisterOperation(&ops.Operation{
		Name: "finalize",
		Post: []ops.Predicate{processed},
		Cmd: func(job *models.Job) (string, error) {
			return fmt.Sprintf("flowforge exec finalize %s", job.ID), nil
		},
	}))

	must(r.RegisterLabel("registered", func(job *models.Job) (bool, error) {
		return true, nil
	}))
	must(r.RegisterLabel("even_b", evenB))
	must(r.RegisterLabel("processed", processed))

	return r
}

// must panics on registration errors; the reference workflow is static
// and a duplicate name is a programming bug.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
