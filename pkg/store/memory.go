package store

import (
	"fmt"
	"sync"

	"github.com/flowforge/flowforge/pkg/models"
)

// MemoryStore is an in-memory implementation of the store, used by tests
// and pretend-mode invocations.
type MemoryStore struct {
	mu        sync.RWMutex
	jobOrder  []string
	jobs      map[string]map[string]interface{} // id -> statepoint
	documents map[string]map[string]interface{} // id -> doc
	bundles   map[string]*models.BundleRecord
	opIndex   map[string]string // operation id -> latest bundle id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:      map[string]map[string]interface{}{},
		documents: map[string]map[string]interface{}{},
		bundles:   map[string]*models.BundleRecord{},
		opIndex:   map[string]string{},
	}
}

// InsertJob registers a job and its statepoint. Re-inserting an existing
// id is a no-op so pool initialization is idempotent.
func (s *MemoryStore) InsertJob(id string, statepoint map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return nil
	}
	s.jobs[id] = statepoint
	s.jobOrder = append(s.jobOrder, id)
	return nil
}

// GetJob retrieves a job by id with documents bound.
func (s *MemoryStore) GetJob(id string) (*models.Job, error) {
	s.mu.RLock()
	sp, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	job := &models.Job{ID: id, Statepoint: sp}
	job.BindDocuments(s)
	return job, nil
}

// AllJobs returns the pool in insertion order.
func (s *MemoryStore) AllJobs() ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Job, 0, len(s.jobOrder))
	for _, id := range s.jobOrder {
		job := &models.Job{ID: id, Statepoint: s.jobs[id]}
		job.BindDocuments(s)
		out = append(out, job)
	}
	return out, nil
}

// GetDocument reads one key of a job document.
func (s *MemoryStore) GetDocument(jobID, key string) (interface{}, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[jobID]
	if !ok {
		return nil, false, nil
	}
	v, ok := doc[key]
	return v, ok, nil
}

// SetDocument writes one key of a job document.
func (s *MemoryStore) SetDocument(jobID, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.documents[jobID] == nil {
		s.documents[jobID] = map[string]interface{}{}
	}
	s.documents[jobID][key] = value
	return nil
}

// SaveBundle persists the bundle, its operation index and status in one
// critical section.
func (s *MemoryStore) SaveBundle(b *models.Bundle, opIDs []string, st models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops := append([]models.BundleOperation(nil), b.Operations...)
	s.bundles[b.ID] = &models.BundleRecord{
		Bundle: models.Bundle{ID: b.ID, Operations: ops},
		Status: st,
	}
	for _, opID := range opIDs {
		s.opIndex[opID] = b.ID
	}
	return nil
}

// GetBundle retrieves a persisted bundle record.
func (s *MemoryStore) GetBundle(id string) (*models.BundleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.bundles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

// AllBundles returns every persisted bundle record.
func (s *MemoryStore) AllBundles() ([]models.BundleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BundleRecord, 0, len(s.bundles))
	for _, rec := range s.bundles {
		out = append(out, *rec)
	}
	return out, nil
}

// UpdateBundleStatus overwrites the tracked status of a bundle.
func (s *MemoryStore) UpdateBundleStatus(id string, st models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.bundles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBundleNotFound, id)
	}
	rec.Status = st
	return nil
}

// OperationStatus resolves an operation to its latest bundle's status.
func (s *MemoryStore) OperationStatus(opID string) (models.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bundleID, ok := s.opIndex[opID]
	if !ok {
		return models.StatusUnknown, nil
	}
	rec, ok := s.bundles[bundleID]
	if !ok {
		return models.StatusUnknown, nil
	}
	return rec.Status, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// HealthCheck is a no-op for the in-memory store.
func (s *MemoryStore) HealthCheck() error { return nil }
