package hooksemitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/spec"
	"github.com/mark3labs/openapi2ts/internal/typeexpr"
)

func header(doc *spec.Document) string {
	title := doc.Title
	if title == "" {
		title = "OpenAPI document"
	}
	h := "// Generated by openapi2ts. DO NOT EDIT.\n// Source: " + title
	if doc.Version != "" {
		h += " " + doc.Version
	}
	return h + "\n"
}

const queryResultDecl = `
/** Shared shape returned by every generated query hook. */
export interface QueryResult<T> {
  data: T | undefined;
  error: unknown;
  loading: boolean;
  refetch: () => void;
}
`

// queryEffect is the fetch-on-mount body shared by every query hook; the
// call expression and the dependency list are substituted in.
const queryEffect = `  useEffect(() => {
    let cancelled = false;
    setLoading(true);
    %s
      .then((result) => {
        if (!cancelled) {
          setData(result);
          setError(undefined);
        }
      })
      .catch((err) => {
        if (!cancelled) {
          setError(err);
        }
      })
      .finally(() => {
        if (!cancelled) {
          setLoading(false);
        }
      });
    return () => {
      cancelled = true;
    };
  }, %s);
`

func renderHooks(doc *spec.Document, queries, mutations []spec.Endpoint) string {
	var b strings.Builder
	b.WriteString(header(doc))
	if len(queries) == 0 && len(mutations) == 0 {
		b.WriteString("\nexport {};\n")
		return b.String()
	}

	b.WriteString("\n" + reactImport(len(queries) > 0))
	b.WriteString(clientImport(queries, mutations))
	if line := typeImport(doc, queries, mutations); line != "" {
		b.WriteString(line)
	}
	b.WriteString(queryResultDecl)
	for i := range queries {
		b.WriteString(renderQueryHook(&queries[i]))
	}
	for i := range mutations {
		b.WriteString(renderMutationHook(&mutations[i]))
	}
	return b.String()
}

func reactImport(hasQueries bool) string {
	if hasQueries {
		return "import { useCallback, useEffect, useState } from \"react\";\n"
	}
	return "import { useCallback, useState } from \"react\";\n"
}

func clientImport(queries, mutations []spec.Endpoint) string {
	var fns, params []string
	add := func(eps []spec.Endpoint) {
		for i := range eps {
			fns = append(fns, eps[i].ID)
			if t := paramsTypeName(&eps[i]); t != "" {
				params = append(params, t)
			}
		}
	}
	add(queries)
	add(mutations)

	line := "import { " + strings.Join(fns, ", ") + " } from \"./client\";\n"
	if len(params) > 0 {
		line += "import type { " + strings.Join(params, ", ") + " } from \"./client\";\n"
	}
	return line
}

// typeImport lists the named types the hooks reference directly: success
// payloads for every hook, request bodies only for mutation triggers. Query
// parameters are reached through the Params types, so their schemas never
// show up here.
func typeImport(doc *spec.Document, queries, mutations []spec.Endpoint) string {
	used := map[string]bool{}
	collect := func(s spec.Schema) {
		for _, n := range spec.RefNames(s) {
			used[n] = true
		}
	}
	result := func(ep *spec.Endpoint) {
		if r := ep.SuccessResponse(); r != nil {
			if m := r.JSONMedia(); m != nil {
				collect(m.Schema)
			}
		}
	}
	for i := range queries {
		result(&queries[i])
	}
	for i := range mutations {
		result(&mutations[i])
		if m := mutations[i].RequestBody.JSONMedia(); m != nil {
			collect(m.Schema)
		}
	}
	if len(used) == 0 {
		return ""
	}

	names := make([]string, 0, len(used))
	seen := make(map[string]bool, len(used))
	for _, raw := range doc.SchemaOrder {
		if used[raw] && !seen[raw] {
			names = append(names, raw)
			seen[raw] = true
		}
	}
	var rest []string
	for raw := range used {
		if !seen[raw] {
			rest = append(rest, raw)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	out := make([]string, 0, len(names))
	emitted := make(map[string]bool, len(names))
	for _, raw := range names {
		t := spec.TypeName(raw)
		if !emitted[t] {
			out = append(out, t)
			emitted[t] = true
		}
	}
	return "import type { " + strings.Join(out, ", ") + " } from \"./types\";\n"
}

func renderQueryHook(ep *spec.Endpoint) string {
	result := resultTypeAt(ep, 0)
	paramsType := paramsTypeName(ep)

	var b strings.Builder
	b.WriteString("\n" + hookDoc(ep))
	if paramsType != "" {
		b.WriteString("export function use" + spec.ExportName(ep.ID) + "(params: " + paramsType + "): QueryResult<" + result + "> {\n")
	} else {
		b.WriteString("export function use" + spec.ExportName(ep.ID) + "(): QueryResult<" + result + "> {\n")
	}
	b.WriteString("  const [data, setData] = useState<" + resultTypeAt(ep, 1) + " | undefined>(undefined);\n")
	b.WriteString("  const [error, setError] = useState<unknown>(undefined);\n")
	b.WriteString("  const [loading, setLoading] = useState(true);\n")
	b.WriteString("  const [tick, setTick] = useState(0);\n")
	b.WriteString("  const refetch = useCallback(() => setTick((t) => t + 1), []);\n")

	call := ep.ID + "()"
	deps := "[tick]"
	if paramsType != "" {
		// Serialize params into the dependency list so a new object with the
		// same contents does not refire the effect.
		b.WriteString("  const key = JSON.stringify(params);\n")
		call = ep.ID + "(JSON.parse(key) as " + paramsType + ")"
		deps = "[key, tick]"
	}
	fmt.Fprintf(&b, queryEffect, call, deps)
	b.WriteString("  return { data, error, loading, refetch };\n}\n")
	return b.String()
}

func renderMutationHook(ep *spec.Endpoint) string {
	result := resultTypeAt(ep, 1)
	paramsType := paramsTypeName(ep)
	bodyType, hasBody := requestBodyType(ep)

	var args, callArgs []string
	if paramsType != "" {
		args = append(args, "params: "+paramsType)
		callArgs = append(callArgs, "params")
	}
	if hasBody {
		if ep.RequestBody.Required {
			args = append(args, "body: "+bodyType)
		} else {
			args = append(args, "body?: "+bodyType)
		}
		callArgs = append(callArgs, "body")
	}

	var b strings.Builder
	b.WriteString("\n" + hookDoc(ep))
	b.WriteString("export function use" + spec.ExportName(ep.ID) + "Mutation() {\n")
	b.WriteString("  const [data, setData] = useState<" + result + " | undefined>(undefined);\n")
	b.WriteString("  const [error, setError] = useState<unknown>(undefined);\n")
	b.WriteString("  const [loading, setLoading] = useState(false);\n")
	b.WriteString("  const trigger = useCallback(async (" + strings.Join(args, ", ") + "): Promise<" + result + "> => {\n")
	b.WriteString("    setLoading(true);\n")
	b.WriteString("    try {\n")
	b.WriteString("      const result = await " + ep.ID + "(" + strings.Join(callArgs, ", ") + ");\n")
	b.WriteString("      setData(result);\n")
	b.WriteString("      setError(undefined);\n")
	b.WriteString("      return result;\n")
	b.WriteString("    } catch (err) {\n")
	b.WriteString("      setError(err);\n")
	b.WriteString("      throw err;\n")
	b.WriteString("    } finally {\n")
	b.WriteString("      setLoading(false);\n")
	b.WriteString("    }\n")
	b.WriteString("  }, []);\n")
	b.WriteString("  return { trigger, data, error, loading };\n}\n")
	return b.String()
}

func paramsTypeName(ep *spec.Endpoint) string {
	if len(ep.PathParams) == 0 && len(ep.QueryParams) == 0 {
		return ""
	}
	return spec.ExportName(ep.ID) + "Params"
}

func resultTypeAt(ep *spec.Endpoint, depth int) string {
	if r := ep.SuccessResponse(); r != nil {
		if m := r.JSONMedia(); m != nil {
			return typeexpr.ProjectAt(m.Schema, depth)
		}
	}
	return "unknown"
}

func requestBodyType(ep *spec.Endpoint) (string, bool) {
	m := ep.RequestBody.JSONMedia()
	if m == nil {
		return "", false
	}
	return typeexpr.ProjectAt(m.Schema, 1), true
}

func methodOf(ep *spec.Endpoint) string {
	return strings.ToUpper(string(ep.Verb))
}

func hookDoc(ep *spec.Endpoint) string {
	lines := []string{methodOf(ep) + " " + ep.Path}
	if s := strings.TrimSpace(ep.Summary); s != "" {
		lines = append(lines, strings.ReplaceAll(s, "*/", "*\\/"))
	}
	if ep.Deprecated {
		lines = append(lines, "@deprecated")
	}
	if len(lines) == 1 {
		return "/** " + lines[0] + " */\n"
	}
	var b strings.Builder
	b.WriteString("/**\n")
	for _, l := range lines {
		b.WriteString(" * " + l + "\n")
	}
	b.WriteString(" */\n")
	return b.String()
}
