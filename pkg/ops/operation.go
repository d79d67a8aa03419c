// Package ops holds the operation and label registry: the eligibility
// engine that decides what a job should run next and how it classifies
// for display.
package ops

import (
	"fmt"

	"github.com/flowforge/flowforge/pkg/models"
)

// Predicate evaluates a condition against a job. A returned error is a
// job-level bug surfaced to the caller, never silently treated as "not
// eligible".
type Predicate func(job *models.Job) (bool, error)

// CmdFunc produces the shell invocation for an operation on a job.
type CmdFunc func(job *models.Job) (string, error)

// Operation is a named, predicate-gated unit of work bound to a job at
// evaluation time. Pre conditions gate eligibility; Post conditions, when
// present, detect completion.
type Operation struct {
	Name string
	Cmd  CmdFunc
	Pre  []Predicate
	Post []Predicate
}

// Label is a named predicate used purely for human-facing classification.
type Label struct {
	Name      string
	Predicate Predicate
}

// Eligible reports whether the operation should run on the job now:
// every pre condition holds and the operation is not already complete.
func (o *Operation) Eligible(job *models.Job) (bool, error) {
	for _, pre := range o.Pre {
		ok, err := pre(job)
		if err != nil {
			return false, &PredicateError{Kind: "operation", Name: o.Name, JobID: job.ID, Err: err}
		}
		if !ok {
			return false, nil
		}
	}
	complete, err := o.Complete(job)
	if err != nil {
		return false, err
	}
	return !complete, nil
}

// Complete reports whether all post conditions hold. An operation with no
// post conditions never self-reports completion; its eligibility is
// governed by the pre conditions alone.
func (o *Operation) Complete(job *models.Job) (bool, error) {
	if len(o.Post) == 0 {
		return false, nil
	}
	for _, post := range o.Post {
		ok, err := post(job)
		if err != nil {
			return false, &PredicateError{Kind: "operation", Name: o.Name, JobID: job.ID, Err: err}
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Command renders the operation's invocation for the job.
func (o *Operation) Command(job *models.Job) (string, error) {
	if o.Cmd == nil {
		return "", fmt.Errorf("operation %s: no command function", o.Name)
	}
	cmd, err := o.Cmd(job)
	if err != nil {
		return "", fmt.Errorf("operation %s: command for job %s: %w", o.Name, job.ID, err)
	}
	return cmd, nil
}

// JobOperation pairs an operation with the job it was resolved against,
// with the command already rendered.
type JobOperation struct {
	Job *models.Job
	Op  *Operation
	Cmd string
}
