package template

import (
	"fmt"
	"os"
	"path/filepath"
)

// Source resolves an override template for a logical script kind.
// Absence is not an error; the base template is used.
type Source interface {
	Lookup(kind string) (content string, found bool, err error)
}

// DirSource looks override templates up by convention: <dir>/<kind>.sh.
type DirSource struct {
	Dir string
}

// NewDirSource returns a directory-backed template source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Lookup reads the override file for the kind if one exists.
func (s *DirSource) Lookup(kind string) (string, bool, error) {
	path := filepath.Join(s.Dir, kind+".sh")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), true, nil
}

// MapSource serves overrides from memory; used by tests.
type MapSource map[string]string

// Lookup returns the override registered under the kind, if any.
func (s MapSource) Lookup(kind string) (string, bool, error) {
	content, ok := s[kind]
	return content, ok, nil
}
