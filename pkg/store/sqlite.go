package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flowforge/flowforge/pkg/models"
)

// SQLiteStore is the persistent project store backend.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the project database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	// WAL plus a generous busy timeout: the orchestrator is single-writer
	// per invocation, but the exporter may read concurrently.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writes to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		statepoint TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS documents (
		job_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (job_id, key)
	);
	CREATE TABLE IF NOT EXISTS bundles (
		id TEXT PRIMARY KEY,
		operations TEXT NOT NULL,
		status INTEGER NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS bundle_ops (
		op_id TEXT PRIMARY KEY,
		bundle_id TEXT NOT NULL REFERENCES bundles(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertJob registers a job and its statepoint; re-inserting an existing
// id is a no-op.
func (s *SQLiteStore) InsertJob(id string, statepoint map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, err := json.Marshal(statepoint)
	if err != nil {
		return fmt.Errorf("failed to encode statepoint: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR IGNORE INTO jobs (id, statepoint) VALUES (?, ?)`, id, string(sp))
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by id with documents bound.
func (s *SQLiteStore) GetJob(id string) (*models.Job, error) {
	var spRaw string
	err := s.db.QueryRow(`SELECT statepoint FROM jobs WHERE id = ?`, id).Scan(&spRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	return s.decodeJob(id, spRaw)
}

// AllJobs returns the pool ordered by insertion (rowid).
func (s *SQLiteStore) AllJobs() ([]*models.Job, error) {
	rows, err := s.db.Query(`SELECT id, statepoint FROM jobs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var out []*models.Job
	for rows.Next() {
		var id, spRaw string
		if err := rows.Scan(&id, &spRaw); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		job, err := s.decodeJob(id, spRaw)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) decodeJob(id, spRaw string) (*models.Job, error) {
	var sp map[string]interface{}
	if err := json.Unmarshal([]byte(spRaw), &sp); err != nil {
		return nil, fmt.Errorf("corrupt statepoint for job %s: %w", id, err)
	}
	job := &models.Job{ID: id, Statepoint: sp}
	job.BindDocuments(s)
	return job, nil
}

// GetDocument reads one key of a job document.
func (s *SQLiteStore) GetDocument(jobID, key string) (interface{}, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM documents WHERE job_id = ? AND key = ?`, jobID, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query document: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("corrupt document %s/%s: %w", jobID, key, err)
	}
	return value, true, nil
}

// SetDocument writes one key of a job document.
func (s *SQLiteStore) SetDocument(jobID, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document value: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO documents (job_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(job_id, key) DO UPDATE SET value = excluded.value`,
		jobID, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// SaveBundle persists bundle, operation index and status in one
// transaction. A failed submission never reaches this point, so a bundle
// row always describes work the scheduler accepted.
func (s *SQLiteStore) SaveBundle(b *models.Bundle, opIDs []string, st models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opsRaw, err := json.Marshal(b.Operations)
	if err != nil {
		return fmt.Errorf("failed to encode bundle operations: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO bundles (id, operations, status, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET operations = excluded.operations,
			status = excluded.status, updated_at = CURRENT_TIMESTAMP`,
		b.ID, string(opsRaw), int(st))
	if err != nil {
		return fmt.Errorf("failed to insert bundle: %w", err)
	}
	for _, opID := range opIDs {
		_, err = tx.Exec(
			`INSERT INTO bundle_ops (op_id, bundle_id) VALUES (?, ?)
			 ON CONFLICT(op_id) DO UPDATE SET bundle_id = excluded.bundle_id`,
			opID, b.ID)
		if err != nil {
			return fmt.Errorf("failed to index bundle operation: %w", err)
		}
	}
	return tx.Commit()
}

// GetBundle retrieves a persisted bundle record.
func (s *SQLiteStore) GetBundle(id string) (*models.BundleRecord, error) {
	var opsRaw string
	var status int
	err := s.db.QueryRow(`SELECT operations, status FROM bundles WHERE id = ?`, id).Scan(&opsRaw, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBundleNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bundle: %w", err)
	}
	return decodeBundleRecord(id, opsRaw, status)
}

// AllBundles returns every persisted bundle record.
func (s *SQLiteStore) AllBundles() ([]models.BundleRecord, error) {
	rows, err := s.db.Query(`SELECT id, operations, status FROM bundles ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bundles: %w", err)
	}
	defer rows.Close()

	var out []models.BundleRecord
	for rows.Next() {
		var id, opsRaw string
		var status int
		if err := rows.Scan(&id, &opsRaw, &status); err != nil {
			return nil, fmt.Errorf("failed to scan bundle row: %w", err)
		}
		rec, err := decodeBundleRecord(id, opsRaw, status)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func decodeBundleRecord(id, opsRaw string, status int) (*models.BundleRecord, error) {
	var ops []models.BundleOperation
	if err := json.Unmarshal([]byte(opsRaw), &ops); err != nil {
		return nil, fmt.Errorf("corrupt bundle %s: %w", id, err)
	}
	return &models.BundleRecord{
		Bundle: models.Bundle{ID: id, Operations: ops},
		Status: models.JobStatus(status),
	}, nil
}

// UpdateBundleStatus overwrites the tracked status of a bundle.
func (s *SQLiteStore) UpdateBundleStatus(id string, st models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE bundles SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		int(st), id)
	if err != nil {
		return fmt.Errorf("failed to update bundle status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrBundleNotFound, id)
	}
	return nil
}

// OperationStatus resolves an operation to its latest bundle's status.
func (s *SQLiteStore) OperationStatus(opID string) (models.JobStatus, error) {
	var status int
	err := s.db.QueryRow(
		`SELECT b.status FROM bundle_ops o JOIN bundles b ON b.id = o.bundle_id WHERE o.op_id = ?`,
		opID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StatusUnknown, nil
	}
	if err != nil {
		return models.StatusUnknown, fmt.Errorf("failed to resolve operation status: %w", err)
	}
	return models.JobStatus(status), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable.
func (s *SQLiteStore) HealthCheck() error {
	return s.db.Ping()
}
