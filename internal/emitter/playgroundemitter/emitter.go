// Package playgroundemitter renders a self-contained HTML page for poking at
// the API by hand: an endpoint list, a form per operation, and a live fetch
// wired to the configured base URL. The page carries no external assets.
package playgroundemitter

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/mark3labs/openapi2ts/internal/emitter"
	"github.com/mark3labs/openapi2ts/internal/spec"
	"github.com/mark3labs/openapi2ts/internal/typeexpr"
)

//go:embed templates/playground.html.tpl
var playgroundTplFS embed.FS

// Options controls the playground emitter.
type Options struct {
	OutDir  string // required; target directory to write into
	BaseURL string // prefilled base URL; empty falls back to the document's first server
	Force   bool   // overwrite existing files
	DryRun  bool   // don't write, only plan
	Verbose bool
}

// Result reports the rendered page.
type Result struct {
	Endpoints int
	Planned   []emitter.PlannedFile
}

// templateData feeds the page template. Title and Version arrive
// HTML-escaped; BaseURL is a ready JS string literal; Catalog is the inlined
// JSON endpoint list.
type templateData struct {
	Title   string
	Version string
	BaseURL string
	Catalog string
}

// catalogEndpoint is the JSON shape the page script consumes.
type catalogEndpoint struct {
	ID          string         `json:"id"`
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Summary     string         `json:"summary,omitempty"`
	Deprecated  bool           `json:"deprecated,omitempty"`
	PathParams  []catalogParam `json:"pathParams,omitempty"`
	QueryParams []catalogParam `json:"queryParams,omitempty"`
	HasBody     bool           `json:"hasBody,omitempty"`
	BodyType    string         `json:"bodyType,omitempty"`
	BodyExample string         `json:"bodyExample,omitempty"`
	ResultType  string         `json:"resultType,omitempty"`
}

type catalogParam struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Emit renders playground.html for the endpoint surface.
func Emit(ctx context.Context, doc *spec.Document, eps []spec.Endpoint, opts Options) (*Result, error) {
	_ = ctx
	if doc == nil {
		return nil, fmt.Errorf("playgroundemitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("playgroundemitter: OutDir is required")
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" && len(doc.Servers) > 0 {
		baseURL = strings.TrimSpace(doc.Servers[0].URL)
	}

	page, err := renderPlayground(doc, eps, baseURL)
	if err != nil {
		return nil, err
	}
	files := map[string][]byte{
		"playground.html": page,
	}
	planned := emitter.Plan(files)
	if !opts.DryRun {
		if err := emitter.Write(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Endpoints: len(eps), Planned: planned}, nil
}

func renderPlayground(doc *spec.Document, eps []spec.Endpoint, baseURL string) ([]byte, error) {
	catalog, err := buildCatalog(eps)
	if err != nil {
		return nil, err
	}
	tplText, err := playgroundTplFS.ReadFile("templates/playground.html.tpl")
	if err != nil {
		return nil, fmt.Errorf("read playground template: %w", err)
	}
	tpl, err := template.New("playground").Parse(string(tplText))
	if err != nil {
		return nil, fmt.Errorf("parse playground template: %w", err)
	}

	title := doc.Title
	if title == "" {
		title = "OpenAPI document"
	}
	data := templateData{
		Title:   html.EscapeString(title),
		Version: html.EscapeString(doc.Version),
		BaseURL: jsString(baseURL),
		Catalog: catalog,
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("exec playground template: %w", err)
	}
	return buf.Bytes(), nil
}

// buildCatalog inlines the endpoint surface as JSON. encoding/json escapes
// angle brackets by default, which keeps "</script>" in document text from
// breaking out of the page's script block.
func buildCatalog(eps []spec.Endpoint) (string, error) {
	entries := make([]catalogEndpoint, 0, len(eps))
	for i := range eps {
		ep := &eps[i]
		e := catalogEndpoint{
			ID:          ep.ID,
			Method:      strings.ToUpper(string(ep.Verb)),
			Path:        ep.Path,
			Summary:     strings.TrimSpace(ep.Summary),
			Deprecated:  ep.Deprecated,
			PathParams:  catalogParams(ep.PathParams, true),
			QueryParams: catalogParams(ep.QueryParams, false),
		}
		if m := ep.RequestBody.JSONMedia(); m != nil {
			e.HasBody = true
			e.BodyType = compactType(m.Schema)
			if m.Example != nil {
				if data, err := json.MarshalIndent(m.Example, "", "  "); err == nil {
					e.BodyExample = string(data)
				}
			}
		}
		if r := ep.SuccessResponse(); r != nil {
			if m := r.JSONMedia(); m != nil {
				e.ResultType = typeexpr.Project(m.Schema)
			}
		}
		entries = append(entries, e)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal endpoint catalog: %w", err)
	}
	return string(data), nil
}

func catalogParams(params []spec.Parameter, forceRequired bool) []catalogParam {
	if len(params) == 0 {
		return nil
	}
	out := make([]catalogParam, 0, len(params))
	for _, p := range params {
		out = append(out, catalogParam{
			Name:     p.Name,
			Type:     compactType(p.Schema),
			Required: forceRequired || p.Required,
		})
	}
	return out
}

// compactType renders a schema on a single line for the parameter hints.
func compactType(s spec.Schema) string {
	proj := typeexpr.Project(s)
	if !strings.Contains(proj, "\n") {
		return proj
	}
	lines := strings.Split(proj, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
