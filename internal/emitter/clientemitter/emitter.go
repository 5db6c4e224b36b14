// Package clientemitter renders the typed TypeScript client: types.ts with
// one exported alias per named schema, and client.ts with a fetch-based
// request runtime plus one async function per endpoint.
package clientemitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/emitter"
	"github.com/mark3labs/openapi2ts/internal/spec"
)

// Options controls how the client emitter renders the API surface.
type Options struct {
	OutDir     string // required; target directory to write into
	BaseURL    string // default base URL baked into the client; empty falls back to the document's first server
	ClientName string // exported aggregate const name; defaults to "api"
	Force      bool   // overwrite existing files
	DryRun     bool   // don't write, only plan
	Verbose    bool
}

// Result returns the planned files and the resolved client name.
type Result struct {
	ClientName string
	Planned    []emitter.PlannedFile
}

// Emit renders types.ts and client.ts for the endpoint surface.
func Emit(ctx context.Context, doc *spec.Document, eps []spec.Endpoint, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("clientemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("clientemitter: OutDir is required")
	}
	clientName := sanitizeClientName(opts.ClientName)
	if clientName == "" {
		clientName = "api"
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" && len(doc.Servers) > 0 {
		baseURL = strings.TrimSpace(doc.Servers[0].URL)
	}

	files := map[string][]byte{
		"types.ts":  []byte(renderTypes(doc)),
		"client.ts": []byte(renderClient(doc, eps, clientName, baseURL)),
	}

	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.Write(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{ClientName: clientName, Planned: planned}, nil
}

// sanitizeClientName strips everything that cannot appear in a TypeScript
// identifier; an empty or digit-leading result is rejected so the caller
// falls back to the default.
func sanitizeClientName(name string) string {
	b := strings.Builder{}
	for _, r := range strings.TrimSpace(name) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		return ""
	}
	return out
}
