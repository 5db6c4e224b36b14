// Package hooksemitter renders React hooks on top of the generated client:
// an eager query hook per GET endpoint and a trigger-style mutation hook for
// everything else. The output imports from ./client and ./types, so it is
// meant to land in the same directory as the client emitter's files.
package hooksemitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/emitter"
	"github.com/mark3labs/openapi2ts/internal/spec"
)

// Options controls the hooks emitter.
type Options struct {
	OutDir  string // required; target directory to write into
	Force   bool   // overwrite existing files
	DryRun  bool   // don't write, only plan
	Verbose bool
}

// Result reports how the endpoint surface split into hooks.
type Result struct {
	Queries   int
	Mutations int
	Planned   []emitter.PlannedFile
}

// Emit renders hooks.ts for the endpoint surface.
func Emit(ctx context.Context, doc *spec.Document, eps []spec.Endpoint, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("hooksemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("hooksemitter: OutDir is required")
	}

	queries, mutations := splitEndpoints(eps)
	files := map[string][]byte{
		"hooks.ts": []byte(renderHooks(doc, queries, mutations)),
	}
	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.Write(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Queries: len(queries), Mutations: len(mutations), Planned: planned}, nil
}

// splitEndpoints decides which endpoints become eager query hooks and which
// become mutation hooks. A GET that demands a request body cannot be fetched
// eagerly, so it falls through to the mutation side.
func splitEndpoints(eps []spec.Endpoint) (queries, mutations []spec.Endpoint) {
	for _, ep := range eps {
		if ep.Verb == spec.GET && !requiresBody(&ep) {
			queries = append(queries, ep)
		} else {
			mutations = append(mutations, ep)
		}
	}
	return queries, mutations
}

func requiresBody(ep *spec.Endpoint) bool {
	return ep.RequestBody != nil && ep.RequestBody.Required && ep.RequestBody.JSONMedia() != nil
}
