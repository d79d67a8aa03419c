// Package project binds the job store, the operation registry and the
// script renderer into one orchestrated workflow project.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/ops"
	"github.com/flowforge/flowforge/pkg/store"
	"github.com/flowforge/flowforge/pkg/template"
)

// ManifestName is the project manifest file at the project root.
const ManifestName = "flowforge.yaml"

// Manifest is the on-disk project definition.
type Manifest struct {
	Name             string `yaml:"name"`
	StoreType        string `yaml:"store_type,omitempty"`
	StorePath        string `yaml:"store_path,omitempty"`
	TemplateDir      string `yaml:"template_dir,omitempty"`
	EnvironmentsFile string `yaml:"environments_file,omitempty"`
}

// Project is one workflow project: a named pool of jobs plus the
// registry of operations and labels evaluated against it.
type Project struct {
	Name     string
	Root     string
	Store    store.Store
	Registry *ops.Registry
	Renderer *template.Renderer

	manifest Manifest
}

// Init creates a new project at root: manifest, store and template
// directory. Fails if a manifest already exists.
func Init(root, name string, registry *ops.Registry) (*Project, error) {
	path := filepath.Join(root, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("project already initialized at %s", root)
	}

	m := Manifest{
		Name:        name,
		StoreType:   "sqlite",
		StorePath:   filepath.Join(".flowforge", "project.db"),
		TemplateDir: "templates",
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, m.TemplateDir), 0755); err != nil {
		return nil, err
	}
	return open(root, m, registry)
}

// Open loads the project rooted at root.
func Open(root string, registry *ops.Registry) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("no project at %s: %w", root, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("malformed manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest at %s has no project name", root)
	}
	return open(root, m, registry)
}

// NewInMemory builds a project over the in-memory store, for tests and
// pretend-mode runs.
func NewInMemory(name string, registry *ops.Registry) *Project {
	return &Project{
		Name:     name,
		Store:    store.NewMemoryStore(),
		Registry: registry,
		Renderer: template.NewRenderer(nil),
	}
}

func open(root string, m Manifest, registry *ops.Registry) (*Project, error) {
	storePath := m.StorePath
	if storePath != "" && !filepath.IsAbs(storePath) {
		storePath = filepath.Join(root, storePath)
	}
	st, err := store.New(store.Config{Type: m.StoreType, Path: storePath})
	if err != nil {
		return nil, err
	}

	var src template.Source
	if m.TemplateDir != "" {
		src = template.NewDirSource(filepath.Join(root, m.TemplateDir))
	}

	return &Project{
		Name:     m.Name,
		Root:     root,
		Store:    st,
		Registry: registry,
		Renderer: template.NewRenderer(src),
		manifest: m,
	}, nil
}

// EnvironmentsFile returns the path of the project's environments file.
func (p *Project) EnvironmentsFile() string {
	name := p.manifest.EnvironmentsFile
	if name == "" {
		name = "environments.yaml"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Root, name)
}

// OpenJob registers a job for the statepoint (a no-op if it already
// exists) and returns it bound to the store.
func (p *Project) OpenJob(statepoint map[string]interface{}) (*models.Job, error) {
	id, err := models.StatepointID(statepoint)
	if err != nil {
		return nil, err
	}
	if err := p.Store.InsertJob(id, statepoint); err != nil {
		return nil, err
	}
	return p.Store.GetJob(id)
}

// Jobs returns the pool in its natural, stable order.
func (p *Project) Jobs() ([]*models.Job, error) {
	return p.Store.AllJobs()
}

// FindJobs returns pool jobs matching an id prefix and statepoint
// equality filters. Filter values compare against the string rendering
// of the statepoint value, which is what the CLI passes through.
func (p *Project) FindJobs(idPrefix string, filters map[string]string) ([]*models.Job, error) {
	jobs, err := p.Jobs()
	if err != nil {
		return nil, err
	}
	var out []*models.Job
	for _, job := range jobs {
		if idPrefix != "" && !strings.HasPrefix(job.ID, idPrefix) {
			continue
		}
		match := true
		for k, v := range filters {
			sp, ok := job.Statepoint[k]
			if !ok || fmt.Sprintf("%v", sp) != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, job)
		}
	}
	return out, nil
}

// Classify returns the job's labels in registration order.
func (p *Project) Classify(job *models.Job) ([]string, error) {
	return p.Registry.Classify(job)
}

// NextOperations returns every currently eligible operation for the job.
func (p *Project) NextOperations(job *models.Job) ([]ops.JobOperation, error) {
	return p.Registry.NextOperations(job)
}

// NextOperation returns the canonical next operation, or nil when the
// job's workflow is complete.
func (p *Project) NextOperation(job *models.Job) (*ops.JobOperation, error) {
	return p.Registry.NextOperation(job)
}

// OperationID is the persistent identity of one (job, operation) pair.
func (p *Project) OperationID(jobID, opName string) string {
	return models.OperationID(p.Name, jobID, opName)
}

// NewBundle freezes job operations into a bundle.
func (p *Project) NewBundle(explicitID string, jobOps []ops.JobOperation) *models.Bundle {
	bops := make([]models.BundleOperation, len(jobOps))
	for i, jo := range jobOps {
		bops[i] = models.BundleOperation{JobID: jo.Job.ID, Name: jo.Op.Name, Cmd: jo.Cmd}
	}
	return models.NewBundle(p.Name, explicitID, bops)
}

// Script renders the submission script for a set of job operations
// without submitting anything.
func (p *Project) Script(jobOps []ops.JobOperation) (string, error) {
	return p.Renderer.Render("run", p.NewBundle("", jobOps))
}

// OperationStatus reports the tracked scheduler status for one (job,
// operation) pair, StatusUnknown when it was never submitted.
func (p *Project) OperationStatus(jobID, opName string) (models.JobStatus, error) {
	return p.Store.OperationStatus(p.OperationID(jobID, opName))
}

// Close releases the underlying store.
func (p *Project) Close() error {
	return p.Store.Close()
}
