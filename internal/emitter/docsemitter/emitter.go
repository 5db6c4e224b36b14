// Package docsemitter renders the endpoint surface as a single Markdown
// reference: a linked endpoint table, a section per operation with its
// parameters, body and responses, and the named schemas at the end.
package docsemitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/emitter"
	"github.com/mark3labs/openapi2ts/internal/spec"
)

// Options controls the docs emitter.
type Options struct {
	OutDir  string // required; target directory to write into
	Force   bool   // overwrite existing files
	DryRun  bool   // don't write, only plan
	Verbose bool
}

// Result reports the rendered document.
type Result struct {
	Endpoints int
	Schemas   int
	Planned   []emitter.PlannedFile
}

// Emit renders api.md for the endpoint surface.
func Emit(ctx context.Context, doc *spec.Document, eps []spec.Endpoint, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("docsemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("docsemitter: OutDir is required")
	}

	files := map[string][]byte{
		"api.md": []byte(renderDocs(doc, eps)),
	}
	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.Write(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Endpoints: len(eps), Schemas: len(doc.SchemaOrder), Planned: planned}, nil
}
