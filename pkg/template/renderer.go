// Package template renders executable submission scripts from a base
// template composed with optional user overrides.
package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/flowforge/flowforge/pkg/models"
)

// baseScript is the default submission script. The first line carries
// the bundle id, the canonical submission name the scheduler adapter
// falls back to; it sits outside every named block so overrides cannot
// break the naming convention. The named blocks are the override
// points: a user template redefines any subset of them independently.
const baseScript = `# {{.ID}}
{{block "header" .}}#!/bin/bash
# Submission script generated by flowforge.{{end}}
{{block "environment" .}}set -e{{end}}
{{block "body" .}}{{range .Operations}}
# Operation '{{.Name}}' for job '{{.JobID}}':
{{.Cmd}}
{{end}}{{end}}{{block "footer" .}}{{end}}
`

// TemplateError marks a malformed template set. It is fatal for the
// invocation: a partially rendered script must never be submitted.
type TemplateError struct {
	Kind string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Kind, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Renderer composes the base script with overrides from a source.
// Rendering is pure: no I/O beyond reading the template source, and the
// same bundle with the same template set always yields byte-identical
// output.
type Renderer struct {
	source Source
}

// NewRenderer builds a renderer over a template source. A nil source
// means no overrides anywhere.
func NewRenderer(source Source) *Renderer {
	return &Renderer{source: source}
}

// Render turns a bundle into the executable script for the given script
// kind ("run" by convention). An override file for the kind, if
// present, contributes {{define}} blocks that replace the base blocks
// they name; defines that match no base block are ignored.
func (r *Renderer) Render(kind string, bundle *models.Bundle) (string, error) {
	tmpl, err := template.New(kind).Parse(baseScript)
	if err != nil {
		return "", &TemplateError{Kind: kind, Err: err}
	}

	if r.source != nil {
		override, found, err := r.source.Lookup(kind)
		if err != nil {
			return "", &TemplateError{Kind: kind, Err: err}
		}
		if found {
			if _, err := tmpl.Parse(override); err != nil {
				return "", &TemplateError{Kind: kind, Err: err}
			}
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, bundle); err != nil {
		return "", &TemplateError{Kind: kind, Err: err}
	}
	return buf.String(), nil
}
