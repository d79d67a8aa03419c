package models

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// DocumentAccessor is the narrow contract the job store provides for the
// mutable per-job document. Reads are immediately consistent with the most
// recent write from the same process.
type DocumentAccessor interface {
	GetDocument(jobID, key string) (interface{}, bool, error)
	SetDocument(jobID, key string, value interface{}) error
}

// Job is one parameterized unit of work tracked by the system: an
// identity derived from an immutable statepoint, plus access to a
// mutable document owned by the store.
type Job struct {
	ID         string                 `json:"id"`
	Statepoint map[string]interface{} `json:"statepoint"`

	docs DocumentAccessor
}

// NewJob derives the job identity from the statepoint and binds the
// document accessor. The identity is stable: the same statepoint always
// produces the same id.
func NewJob(statepoint map[string]interface{}, docs DocumentAccessor) (*Job, error) {
	id, err := StatepointID(statepoint)
	if err != nil {
		return nil, err
	}
	return &Job{ID: id, Statepoint: statepoint, docs: docs}, nil
}

// BindDocuments attaches a document accessor to a job loaded from storage.
func (j *Job) BindDocuments(docs DocumentAccessor) {
	j.docs = docs
}

// SP returns a statepoint parameter, or nil if absent.
func (j *Job) SP(key string) interface{} {
	return j.Statepoint[key]
}

// SPInt returns an integer statepoint parameter. JSON decoding turns
// numbers into float64, so both forms are accepted.
func (j *Job) SPInt(key string) (int, bool) {
	switch v := j.Statepoint[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Doc reads a key from the job document.
func (j *Job) Doc(key string) (interface{}, bool, error) {
	if j.docs == nil {
		return nil, false, fmt.Errorf("job %s: no document accessor bound", j.ID)
	}
	return j.docs.GetDocument(j.ID, key)
}

// SetDoc writes a key into the job document.
func (j *Job) SetDoc(key string, value interface{}) error {
	if j.docs == nil {
		return fmt.Errorf("job %s: no document accessor bound", j.ID)
	}
	return j.docs.SetDocument(j.ID, key, value)
}

func (j *Job) String() string {
	return j.ID
}

// StatepointID computes the canonical job identity: the md5 hex digest of
// the statepoint rendered as JSON with recursively sorted keys.
func StatepointID(statepoint map[string]interface{}) (string, error) {
	data, err := canonicalJSON(statepoint)
	if err != nil {
		return "", fmt.Errorf("statepoint not hashable: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON renders a value deterministically: object keys sorted at
// every nesting level, no insignificant whitespace.
func canonicalJSON(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := canonicalJSON(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		return append(buf, '}'), nil
	case []interface{}:
		buf := []byte{'['}
		for i, item := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			ib, err := canonicalJSON(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ib...)
		}
		return append(buf, ']'), nil
	default:
		return json.Marshal(v)
	}
}
