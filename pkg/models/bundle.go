package models

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// BundleOperation is one (job, operation) pair frozen into a bundle.
// The command is captured at bundle creation time so the bundle renders
// identically however often it is re-read.
type BundleOperation struct {
	JobID string `json:"job_id"`
	Name  string `json:"name"`
	Cmd   string `json:"cmd"`
}

// Bundle groups one or more operations into a single external scheduler
// submission. Bundles are never mutated after creation; resubmitting the
// same work creates a new bundle.
type Bundle struct {
	ID         string            `json:"id"`
	Operations []BundleOperation `json:"operations"`
}

// BundleRecord is a persisted bundle together with its last known status.
type BundleRecord struct {
	Bundle Bundle
	Status JobStatus
}

// OperationID is the canonical identity of one (job, operation) pair
// within a project. Single-operation bundles use it directly as their
// bundle id, which keeps submission names readable in scheduler queues.
func OperationID(project, jobID, opName string) string {
	return fmt.Sprintf("%s-%s-%s", project, jobID, opName)
}

// NewBundle assembles a bundle and derives its id: the sole operation's
// identity when there is one, otherwise a stable hash over the sorted
// operation identities. An explicit id overrides the derivation.
func NewBundle(project, explicitID string, ops []BundleOperation) *Bundle {
	b := &Bundle{Operations: ops}
	switch {
	case explicitID != "":
		b.ID = explicitID
	case len(ops) == 1:
		b.ID = OperationID(project, ops[0].JobID, ops[0].Name)
	default:
		ids := make([]string, len(ops))
		for i, op := range ops {
			ids[i] = OperationID(project, op.JobID, op.Name)
		}
		sort.Strings(ids)
		sum := sha1.Sum([]byte(strings.Join(ids, "\n")))
		b.ID = fmt.Sprintf("%s-bundle-%s", project, hex.EncodeToString(sum[:]))
	}
	return b
}

// OperationIDs returns the identities of the constituent operations.
func (b *Bundle) OperationIDs(project string) []string {
	ids := make([]string, len(b.Operations))
	for i, op := range b.Operations {
		ids[i] = OperationID(project, op.JobID, op.Name)
	}
	return ids
}
