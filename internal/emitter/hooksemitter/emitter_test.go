package hooksemitter

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
	ok := func(status string, s spec.Schema) spec.Response {
		return spec.Response{Status: status, Content: []spec.Media{{Mime: "application/json", Schema: s}}}
	}
	return []spec.Endpoint{
		{
			ID:   "listPets",
			Verb: spec.GET,
			Path: "/pets",
			QueryParams: []spec.Parameter{
				{Name: "limit", In: "query", Schema: &spec.Primitive{Type: "integer"}},
			},
			Responses: []spec.Response{ok("200", &spec.Array{Elem: pet})},
		},
		{
			ID:   "createPet",
			Verb: spec.POST,
			Path: "/pets",
			RequestBody: &spec.RequestBody{
				Required: true,
				Content:  []spec.Media{{Mime: "application/json", Schema: pet}},
			},
			Responses: []spec.Response{ok("201", pet)},
		},
		{
			ID:   "getPetsId",
			Verb: spec.GET,
			Path: "/pets/{id}",
			PathParams: []spec.Parameter{
				{Name: "id", In: "path", Required: true, Schema: &spec.Primitive{Type: "integer"}},
			},
			Responses: []spec.Response{ok("200", pet)},
		},
	}
}

func TestEmit_SplitsQueriesAndMutations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if res.Queries != 2 || res.Mutations != 1 {
		t.Fatalf("split %d/%d, want 2 queries and 1 mutation", res.Queries, res.Mutations)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "hooks.ts" {
		t.Fatalf("planned %v, want hooks.ts", res.Planned)
	}

	hooks := readOut(t, dir, "hooks.ts")
	for _, want := range []string{
		"// Generated by openapi2ts. DO NOT EDIT.",
		"import { useCallback, useEffect, useState } from \"react\";",
		"import { listPets, getPetsId, createPet } from \"./client\";",
		"import type { ListPetsParams, GetPetsIdParams } from \"./client\";",
		"import type { Pet } from \"./types\";",
		"export interface QueryResult<T> {",
		"export function useListPets(params: ListPetsParams): QueryResult<Pet[]> {",
		"const [data, setData] = useState<Pet[] | undefined>(undefined);",
		"const key = JSON.stringify(params);",
		"listPets(JSON.parse(key) as ListPetsParams)",
		"}, [key, tick]);",
		"export function useGetPetsId(params: GetPetsIdParams): QueryResult<Pet> {",
		"export function useCreatePetMutation() {",
		"const trigger = useCallback(async (body: Pet): Promise<Pet> => {",
		"const result = await createPet(body);",
		"return { trigger, data, error, loading };",
	} {
		if !strings.Contains(hooks, want) {
			t.Errorf("hooks.ts missing %q", want)
		}
	}
	if strings.Contains(hooks, "`") {
		t.Error("hooks.ts contains a template literal")
	}
}

func TestEmit_NoEndpoints(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Emit(context.Background(), petDoc(), nil, Options{OutDir: dir})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if res.Queries != 0 || res.Mutations != 0 {
		t.Fatalf("split %d/%d, want none", res.Queries, res.Mutations)
	}
	hooks := readOut(t, dir, "hooks.ts")
	if !strings.Contains(hooks, "export {};") {
		t.Errorf("empty hooks.ts should export nothing, got:\n%s", hooks)
	}
	if strings.Contains(hooks, "react") {
		t.Error("empty hooks.ts should not import react")
	}
}

func TestEmit_MutationsOnlySkipUseEffect(t *testing.T) {
	t.Parallel()

	eps := []spec.Endpoint{{
		ID:   "deletePetsId",
		Verb: spec.DELETE,
		Path: "/pets/{id}",
		PathParams: []spec.Parameter{
			{Name: "id", In: "path", Required: true, Schema: &spec.Primitive{Type: "integer"}},
		},
	}}
	dir := t.TempDir()
	if _, err := Emit(context.Background(), petDoc(), eps, Options{OutDir: dir}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	hooks := readOut(t, dir, "hooks.ts")
	if !strings.Contains(hooks, "import { useCallback, useState } from \"react\";") {
		t.Error("mutation-only hooks.ts should import only useCallback and useState")
	}
	if strings.Contains(hooks, "useEffect") {
		t.Error("mutation-only hooks.ts should not mention useEffect")
	}
	if !strings.Contains(hooks, "const trigger = useCallback(async (params: DeletePetsIdParams): Promise<unknown> => {") {
		t.Errorf("hooks.ts missing param-only trigger, got:\n%s", hooks)
	}
}

func TestEmit_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Emit(context.Background(), petDoc(), petEndpoints(), Options{OutDir: dir, DryRun: true}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "hooks.ts")); !os.IsNotExist(err) {
		t.Error("hooks.ts written during dry run")
	}
}

func TestSplitEndpoints_GETWithRequiredBody(t *testing.T) {
	t.Parallel()

	eps := []spec.Endpoint{{
		ID:   "searchPets",
		Verb: spec.GET,
		Path: "/search",
		RequestBody: &spec.RequestBody{
			Required: true,
			Content:  []spec.Media{{Mime: "application/json", Schema: &spec.Primitive{Type: "string"}}},
		},
	}}
	queries, mutations := splitEndpoints(eps)
	if len(queries) != 0 || len(mutations) != 1 {
		t.Fatalf("split %d/%d, want the body-carrying GET on the mutation side", len(queries), len(mutations))
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
