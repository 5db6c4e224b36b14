package playgroundemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

func petDoc() *spec.Document {
	return &spec.Document{
		Title:   "Pet Store",
		Version: "1.0.0",
		Servers: []spec.Server{{URL: "https://api.example.com/v1"}},
		Schemas: map[string]spec.Schema{
			"Pet": &spec.Object{Fields: []spec.Field{
				{Name: "id", Schema: &spec.Primitive{Type: "integer"}, Required: true},
				{Name: "name", Schema: &spec.Primitive{Type: "string"}, Required: true},
			}},
		},
		SchemaOrder: []string{"Pet"},
	}
}

func petEndpoints() []spec.Endpoint {
	pet := &spec.Ref{Name: "Pet"}
	return []spec.Endpoint{
		{
			ID:      "listPets",
			Verb:    spec.GET,
			Path:    "/pets",
			Summary: "List all pets",
			QueryParams: []spec.Parameter{
				{Name: "limit", In: "query", Schema: &spec.Primitive{Type: "integer"}},
			},
			Responses: []spec.Response{
				{Status: "200", Content: []spec.Media{{Mime: "application/json", Schema: &spec.Array{Elem: pet}}}},
			},
		},
		{
			ID:   "createPet",
			Verb: spec.POST,
			Path: "/pets",
			RequestBody: &spec.RequestBody{
				Required: true,
				Content: []spec.Media{{
					Mime:    "application/json",
					Schema:  pet,
					Example: map[string]any{"id": 1, "name": "Fido"},
				}},
			},
			Responses: []spec.Response{{Status: "201", Content: []spec.Media{{Mime: "application/json", Schema: pet}}}},
		},
	}
}

func TestEmit_RendersPage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if res.Endpoints != 2 {
		t.Fatalf("counted %d endpoints, want 2", res.Endpoints)
	}

	page := readOut(t, dir, "playground.html")
	for _, want := range []string{
		"<title>Pet Store playground</title>",
		"<h1>Pet Store</h1>",
		"const catalog = [",
		"\"id\": \"listPets\"",
		"\"method\": \"GET\"",
		"\"path\": \"/pets\"",
		"\"bodyExample\": \"{\\n  \\\"id\\\": 1,\\n  \\\"name\\\": \\\"Fido\\\"\\n}\"",
		"\"resultType\": \"Pet[]\"",
		"const defaultBaseUrl = \"https://api.example.com/v1\";",
		"encodeURIComponent(v)",
		"res.headers.forEach",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("playground.html missing %q", want)
		}
	}
	if !strings.HasPrefix(page, "<!doctype html>") {
		t.Error("playground.html missing doctype")
	}
}

func TestEmit_EscapesDocumentText(t *testing.T) {
	t.Parallel()

	doc := &spec.Document{Title: "Evil & <Co>"}
	eps := []spec.Endpoint{{
		ID:      "getRoot",
		Verb:    spec.GET,
		Path:    "/",
		Summary: "</script><script>alert(1)</script>",
	}}
	dir := t.TempDir()
	if _, err := Emit(context.Background(), doc, eps, Options{OutDir: dir}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	page := readOut(t, dir, "playground.html")
	if !strings.Contains(page, "<h1>Evil &amp; &lt;Co&gt;</h1>") {
		t.Error("title not HTML-escaped")
	}
	if strings.Contains(page, "<script>alert(1)") {
		t.Error("summary broke out of the script block")
	}
	if !strings.Contains(page, `\u003c/script\u003e`) {
		t.Error("summary angle brackets should be JSON-escaped")
	}
}

func TestEmit_BaseURLOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir, BaseURL: "http://localhost:8080"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	page := readOut(t, dir, "playground.html")
	if !strings.Contains(page, "const defaultBaseUrl = \"http://localhost:8080\";") {
		t.Error("playground.html missing overridden base URL")
	}
}

func TestEmit_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "playground.html" {
		t.Fatalf("planned %v, want playground.html", res.Planned)
	}
	if _, err := os.Stat(filepath.Join(dir, "playground.html")); !os.IsNotExist(err) {
		t.Error("playground.html written during dry run")
	}
}

func readOut(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
