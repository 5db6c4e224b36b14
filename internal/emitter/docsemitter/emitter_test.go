package docsemitter

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
		Title:       "Pet Store",
		Version:     "1.0.0",
		Description: "A sample API that uses a pet store.",
		Servers:     []spec.Server{{URL: "https://api.example.com/v1", Description: "Production"}},
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
			Summary: "List pets | all of them",
			QueryParams: []spec.Parameter{
				{Name: "limit", In: "query", Schema: &spec.Primitive{Type: "integer"}, Description: "How many to return"},
			},
			Responses: []spec.Response{
				{Status: "200", Description: "A paged array of pets.", Content: []spec.Media{{Mime: "application/json", Schema: &spec.Array{Elem: pet}}}},
				{Status: "default", Description: "Unexpected error."},
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
			Responses: []spec.Response{{Status: "201", Description: "Created."}},
		},
		{
			ID:         "getPetsId",
			Verb:       spec.GET,
			Path:       "/pets/{id}",
			Deprecated: true,
			PathParams: []spec.Parameter{
				{Name: "id", In: "path", Schema: &spec.Primitive{Type: "integer"}},
			},
			Responses: []spec.Response{
				{Status: "200", Content: []spec.Media{{Mime: "application/json", Schema: pet}}},
			},
		},
	}
}

func TestEmit_RendersReference(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if res.Endpoints != 3 || res.Schemas != 1 {
		t.Fatalf("counted %d endpoints and %d schemas, want 3 and 1", res.Endpoints, res.Schemas)
	}

	md := readOut(t, dir, "api.md")
	for _, want := range []string{
		"<!-- Generated by openapi2ts. DO NOT EDIT. -->",
		"# Pet Store",
		"Version: 1.0.0",
		"A sample API that uses a pet store.",
		"## Servers",
		"- `https://api.example.com/v1` — Production",
		"## Endpoints",
		"| [`listPets`](#listpets) | `GET` | `/pets` | List pets \\| all of them |",
		"| [`getPetsId`](#getpetsid) | `GET` | `/pets/{id}` |",
		"### `listPets`",
		"`GET /pets`",
		"| `limit` | `number` | no | How many to return |",
		"#### Request body (required)",
		"```ts\nPet\n```",
		"Example:\n\n```json\n{\n  \"id\": 1,\n  \"name\": \"Fido\"\n}\n```",
		"#### Responses",
		"**`200`** — A paged array of pets.",
		"```ts\nPet[]\n```",
		"**`default`** — Unexpected error.",
		"**Deprecated.**",
		"| `id` | `number` | yes |",
		"## Schemas",
		"### `Pet`",
		"```ts\n{\n  id: number;\n  name: string;\n}\n```",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("api.md missing %q", want)
		}
	}
}

func TestEmit_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "api.md" {
		t.Fatalf("planned %v, want api.md", res.Planned)
	}
	if _, err := os.Stat(filepath.Join(dir, "api.md")); !os.IsNotExist(err) {
		t.Error("api.md written during dry run")
	}
}

func TestEmit_EmptySurface(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Emit(context.Background(), &spec.Document{Title: "Bare"}, nil, Options{OutDir: dir}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	md := readOut(t, dir, "api.md")
	if !strings.Contains(md, "# Bare") {
		t.Error("api.md missing title")
	}
	for _, absent := range []string{"## Endpoints", "## Schemas", "## Servers"} {
		if strings.Contains(md, absent) {
			t.Errorf("api.md should omit %q for an empty document", absent)
		}
	}
}

func TestCompactType(t *testing.T) {
	t.Parallel()

	obj := &spec.Object{Fields: []spec.Field{
		{Name: "id", Schema: &spec.Primitive{Type: "integer"}, Required: true},
		{Name: "name", Schema: &spec.Primitive{Type: "string"}},
	}}
	if got, want := compactType(obj), "{ id: number; name?: string; }"; got != want {
		t.Errorf("compactType = %q, want %q", got, want)
	}
	if got := compactType(&spec.Primitive{Type: "string"}); got != "string" {
		t.Errorf("compactType = %q, want string", got)
	}
}

func TestAnchor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"listPets", "listpets"},
		{"getUsersId", "getusersid"},
		{"$weird", "weird"},
		{"get_users", "get_users"},
	}
	for _, tt := range tests {
		if got := anchor(tt.in); got != tt.want {
			t.Errorf("anchor(%q) = %q, want %q", tt.in, got, tt.want)
		}
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
