// Package store persists the project's job pool, per-job documents and
// the bundle-to-operation mapping the submission manager relies on for
// idempotency. Both backends implement the same interface.
package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/flowforge/flowforge/pkg/models"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrBundleNotFound = errors.New("bundle not found")
	ErrJobExists      = errors.New("job already initialized")
)

// Store is the persistence contract the orchestration core depends on.
// The design assumes one writer per invocation; concurrent invocations
// against the same project must be serialized externally.
type Store interface {
	models.DocumentAccessor

	// Job pool. AllJobs returns jobs in stable insertion order; this is
	// the pool's natural order the submission loop iterates in.
	InsertJob(id string, statepoint map[string]interface{}) error
	GetJob(id string) (*models.Job, error)
	AllJobs() ([]*models.Job, error)

	// Bundle mapping. SaveBundle atomically persists the bundle, its
	// operation index and the initial status; a failed submission must
	// leave no partial mapping behind.
	SaveBundle(b *models.Bundle, opIDs []string, st models.JobStatus) error
	GetBundle(id string) (*models.BundleRecord, error)
	AllBundles() ([]models.BundleRecord, error)
	UpdateBundleStatus(id string, st models.JobStatus) error

	// OperationStatus resolves an operation identity to the status of the
	// most recent bundle containing it; StatusUnknown when never bundled.
	OperationStatus(opID string) (models.JobStatus, error)

	Close() error
	HealthCheck() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Type string // "sqlite" or "memory"
	Path string // sqlite database path
}

// New creates a store from configuration, defaulting to SQLite.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(".flowforge", "project.db")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
}
