package ops

import (
	"fmt"

	"github.com/flowforge/flowforge/pkg/models"
)

type operationEntry struct {
	op        *Operation
	inherited bool
}

type labelEntry struct {
	label     *Label
	inherited bool
}

// Registry holds the ordered sets of operations and labels for one
// orchestrator definition. Registration happens at construction time and
// the registry is immutable during evaluation; evaluation itself is pure
// and safe for concurrent use as long as the job's backing store provides
// read isolation for the predicate's lifetime.
type Registry struct {
	opOrder    []string
	operations map[string]operationEntry
	labelOrder []string
	labels     map[string]labelEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		operations: map[string]operationEntry{},
		labels:     map[string]labelEntry{},
	}
}

// Derive returns a child registry carrying a snapshot copy of this
// registry's entries. Entries copied from the parent are marked inherited:
// redeclaring one of them directly on the child raises a duplicate error,
// matching the single-level uniqueness rule. Later changes to the parent
// do not affect the child.
func (r *Registry) Derive() *Registry {
	child := NewRegistry()
	child.opOrder = append([]string(nil), r.opOrder...)
	for name, e := range r.operations {
		child.operations[name] = operationEntry{op: e.op, inherited: true}
	}
	child.labelOrder = append([]string(nil), r.labelOrder...)
	for name, e := range r.labels {
		child.labels[name] = labelEntry{label: e.label, inherited: true}
	}
	return child
}

// RegisterOperation adds an operation. Registering a name that was
// already added directly at this level, or inherited from a parent,
// fails with ErrDuplicateOperation.
func (r *Registry) RegisterOperation(op *Operation) error {
	if op == nil || op.Name == "" {
		return fmt.Errorf("ops: operation name is required")
	}
	if e, exists := r.operations[op.Name]; exists {
		if e.inherited {
			return fmt.Errorf("ops: %q redeclares inherited operation: %w", op.Name, ErrDuplicateOperation)
		}
		return fmt.Errorf("ops: %q: %w", op.Name, ErrDuplicateOperation)
	}
	r.operations[op.Name] = operationEntry{op: op}
	r.opOrder = append(r.opOrder, op.Name)
	return nil
}

// Register is the builder-style shorthand: a name, an eligibility
// predicate and a command producer.
func (r *Registry) Register(name string, pred Predicate, cmd CmdFunc) error {
	op := &Operation{Name: name, Cmd: cmd}
	if pred != nil {
		op.Pre = []Predicate{pred}
	}
	return r.RegisterOperation(op)
}

// RegisterLabel adds a classification label under the same uniqueness
// rules as operations.
func (r *Registry) RegisterLabel(name string, pred Predicate) error {
	if name == "" {
		return fmt.Errorf("ops: label name is required")
	}
	if pred == nil {
		return fmt.Errorf("ops: label %q: predicate is required", name)
	}
	if e, exists := r.labels[name]; exists {
		if e.inherited {
			return fmt.Errorf("ops: %q redeclares inherited label: %w", name, ErrDuplicateLabel)
		}
		return fmt.Errorf("ops: %q: %w", name, ErrDuplicateLabel)
	}
	r.labels[name] = labelEntry{label: &Label{Name: name, Predicate: pred}}
	r.labelOrder = append(r.labelOrder, name)
	return nil
}

// Operation looks up an operation by name.
func (r *Registry) Operation(name string) (*Operation, bool) {
	e, ok := r.operations[name]
	if !ok {
		return nil, false
	}
	return e.op, true
}

// Operations returns all operations in registration order.
func (r *Registry) Operations() []*Operation {
	out := make([]*Operation, 0, len(r.opOrder))
	for _, name := range r.opOrder {
		out = append(out, r.operations[name].op)
	}
	return out
}

// NumOperations returns the number of registered operations, inherited
// entries included.
func (r *Registry) NumOperations() int { return len(r.opOrder) }

// NumLabels returns the number of registered labels.
func (r *Registry) NumLabels() int { return len(r.labelOrder) }

// Classify evaluates every label predicate against the job in
// registration order and returns the names of those that hold. A
// predicate error propagates; treating it as "no label" would hide
// job-level bugs.
func (r *Registry) Classify(job *models.Job) ([]string, error) {
	var out []string
	for _, name := range r.labelOrder {
		e := r.labels[name]
		ok, err := e.label.Predicate(job)
		if err != nil {
			return nil, &PredicateError{Kind: "label", Name: name, JobID: job.ID, Err: err}
		}
		if ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// NextOperations returns every currently eligible operation for the job
// in registration order, commands rendered. An empty result means the
// job's workflow is complete. Evaluation is fresh on every call; nothing
// is cached.
func (r *Registry) NextOperations(job *models.Job) ([]JobOperation, error) {
	var out []JobOperation
	for _, name := range r.opOrder {
		op := r.operations[name].op
		eligible, err := op.Eligible(job)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}
		cmd, err := op.Command(job)
		if err != nil {
			return nil, err
		}
		out = append(out, JobOperation{Job: job, Op: op, Cmd: cmd})
	}
	return out, nil
}

// NextOperation returns the canonical next operation for the job: the
// first eligible one in registration order, or nil when the job is
// complete. This is what single-step execution and status display use.
func (r *Registry) NextOperation(job *models.Job) (*JobOperation, error) {
	next, err := r.NextOperations(job)
	if err != nil {
		return nil, err
	}
	if len(next) == 0 {
		return nil, nil
	}
	return &next[0], nil
}
