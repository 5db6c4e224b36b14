package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

func boolPtr(b bool) *bool { return &b }

func TestProjectPrimitives(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   spec.Schema
		want string
	}{
		{"nil schema", nil, "unknown"},
		{"string", &spec.Primitive{Type: "string"}, "string"},
		{"boolean", &spec.Primitive{Type: "boolean"}, "boolean"},
		{"integer maps to number", &spec.Primitive{Type: "integer"}, "number"},
		{"number", &spec.Primitive{Type: "number"}, "number"},
		{"untyped", &spec.Primitive{}, "unknown"},
		{"unrecognized", &spec.Primitive{Type: "file"}, "unknown"},
		{"nullable string", &spec.Primitive{Type: "string", Nullable: true}, "string | null"},
		{
			"string enum",
			&spec.Primitive{Type: "string", Enum: []any{"a", "b"}},
			`"a" | "b"`,
		},
		{
			"number enum keeps declaration order",
			&spec.Primitive{Type: "integer", Enum: []any{3, 1, 2}},
			"3 | 1 | 2",
		},
		{
			"mixed enum",
			&spec.Primitive{Enum: []any{"on", 1, true, nil}},
			`"on" | 1 | true | null`,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Project(tc.in))
		})
	}
}

func TestProjectArrays(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   spec.Schema
		want string
	}{
		{"array of string", &spec.Array{Elem: &spec.Primitive{Type: "string"}}, "string[]"},
		{"array of unknown", &spec.Array{}, "unknown[]"},
		{
			"array of union is parenthesized",
			&spec.Array{Elem: &spec.OneOf{Parts: []spec.Schema{
				&spec.Primitive{Type: "string"},
				&spec.Primitive{Type: "number"},
			}}},
			"(string | number)[]",
		},
		{
			"array of refs",
			&spec.Array{Elem: &spec.Ref{Name: "Pet"}},
			"Pet[]",
		},
		{
			"nested arrays",
			&spec.Array{Elem: &spec.Array{Elem: &spec.Primitive{Type: "number"}}},
			"number[][]",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Project(tc.in))
		})
	}
}

func TestProjectRecord(t *testing.T) {
	t.Parallel()
	in := &spec.Object{Fields: []spec.Field{
		{Name: "name", Schema: &spec.Primitive{Type: "string"}, Required: true},
		{Name: "age", Schema: &spec.Primitive{Type: "integer"}},
	}}
	want := "{\n  name: string;\n  age?: number;\n}"
	require.Equal(t, want, Project(in))
}

func TestProjectRecordNesting(t *testing.T) {
	t.Parallel()
	in := &spec.Object{Fields: []spec.Field{
		{Name: "owner", Required: true, Schema: &spec.Object{Fields: []spec.Field{
			{Name: "id", Schema: &spec.Primitive{Type: "integer"}, Required: true},
		}}},
	}}
	want := "{\n  owner: {\n    id: number;\n  };\n}"
	require.Equal(t, want, Project(in))
}

func TestProjectRecordQuotesOddKeys(t *testing.T) {
	t.Parallel()
	in := &spec.Object{Fields: []spec.Field{
		{Name: "x-rate-limit", Schema: &spec.Primitive{Type: "integer"}},
	}}
	require.Equal(t, "{\n  \"x-rate-limit\"?: number;\n}", Project(in))
}

func TestProjectOpenMaps(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   spec.Schema
		want string
	}{
		{"bare object", &spec.Object{}, "Record<string, unknown>"},
		{
			"closed object",
			&spec.Object{Additional: spec.Additional{Has: boolPtr(false)}},
			"Record<string, never>",
		},
		{
			"explicitly open object",
			&spec.Object{Additional: spec.Additional{Has: boolPtr(true)}},
			"Record<string, unknown>",
		},
		{
			"typed values",
			&spec.Object{Additional: spec.Additional{Value: &spec.Primitive{Type: "string"}}},
			"Record<string, string>",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Project(tc.in))
		})
	}
}

func TestProjectComposites(t *testing.T) {
	t.Parallel()
	strT := &spec.Primitive{Type: "string"}
	numT := &spec.Primitive{Type: "number"}
	cases := []struct {
		name string
		in   spec.Schema
		want string
	}{
		{"oneOf", &spec.OneOf{Parts: []spec.Schema{strT, numT}}, "string | number"},
		{"anyOf", &spec.AnyOf{Parts: []spec.Schema{strT, numT}}, "string | number"},
		{
			"allOf of refs",
			&spec.AllOf{Parts: []spec.Schema{&spec.Ref{Name: "Base"}, &spec.Ref{Name: "Extra"}}},
			"Base & Extra",
		},
		{
			"allOf wraps union parts",
			&spec.AllOf{Parts: []spec.Schema{
				&spec.Ref{Name: "Base"},
				&spec.OneOf{Parts: []spec.Schema{strT, numT}},
			}},
			"Base & (string | number)",
		},
		{"empty oneOf", &spec.OneOf{}, "unknown"},
		{"empty allOf", &spec.AllOf{}, "unknown"},
		{
			"union with missing part",
			&spec.OneOf{Parts: []spec.Schema{strT, nil}},
			"string | unknown",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Project(tc.in))
		})
	}
}

func TestProjectSelfReference(t *testing.T) {
	t.Parallel()
	// children: Node[] where Node is the component being projected. The
	// reference stays a bare name, so projection terminates.
	node := &spec.Object{Fields: []spec.Field{
		{Name: "value", Schema: &spec.Primitive{Type: "string"}, Required: true},
		{Name: "children", Schema: &spec.Array{Elem: &spec.Ref{Name: "Node"}}},
	}}
	want := "{\n  value: string;\n  children?: Node[];\n}"
	require.Equal(t, want, Project(node))
}

func TestProjectRefNameSanitized(t *testing.T) {
	t.Parallel()
	require.Equal(t, "PetStoreOrder", Project(&spec.Ref{Name: "pet-store.Order"}))
}

func TestPropertyKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "name", PropertyKey("name"))
	require.Equal(t, "$ref", PropertyKey("$ref"))
	require.Equal(t, "_private", PropertyKey("_private"))
	require.Equal(t, `"x-y"`, PropertyKey("x-y"))
	require.Equal(t, `"1st"`, PropertyKey("1st"))
}
