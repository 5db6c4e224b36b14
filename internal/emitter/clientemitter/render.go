package clientemitter

import (
	"encoding/json"
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

func renderTypes(doc *spec.Document) string {
	var b strings.Builder
	b.WriteString(header(doc))
	if len(doc.SchemaOrder) == 0 {
		b.WriteString("\nexport {};\n")
		return b.String()
	}
	for _, name := range doc.SchemaOrder {
		b.WriteString("\nexport type " + spec.TypeName(name) + " = " + typeexpr.Project(doc.Schemas[name]) + ";\n")
	}
	return b.String()
}

// clientRuntime is the fixed preamble of client.ts; the default base URL is
// substituted in. The generated code avoids template literals so this file
// can hold it in one raw string.
const clientRuntime = `
/** Per-call overrides for the generated client. */
export interface RequestOptions {
  baseUrl?: string;
  headers?: Record<string, string>;
  signal?: AbortSignal;
  fetch?: typeof fetch;
}

/** Error thrown for any non-2xx response. */
export class ApiError extends Error {
  status: number;
  body: unknown;

  constructor(status: number, statusText: string, body: unknown) {
    super("HTTP " + status + " " + statusText);
    this.name = "ApiError";
    this.status = status;
    this.body = body;
  }
}

const defaultBaseUrl = %s;

function buildQuery(params: Record<string, unknown>): string {
  const search = new URLSearchParams();
  for (const [key, value] of Object.entries(params)) {
    if (value === undefined || value === null) {
      continue;
    }
    if (Array.isArray(value)) {
      for (const item of value) {
        search.append(key, String(item));
      }
      continue;
    }
    search.append(key, String(value));
  }
  const encoded = search.toString();
  return encoded === "" ? "" : "?" + encoded;
}

async function request<T>(
  method: string,
  path: string,
  query: Record<string, unknown>,
  body: unknown,
  options: RequestOptions,
): Promise<T> {
  const baseUrl = options.baseUrl ?? defaultBaseUrl;
  if (baseUrl === "") {
    throw new Error("no base URL configured; pass options.baseUrl");
  }
  const doFetch = options.fetch ?? fetch;
  const headers: Record<string, string> = { Accept: "application/json", ...options.headers };
  const init: RequestInit = { method, headers, signal: options.signal };
  if (body !== undefined) {
    headers["Content-Type"] = "application/json";
    init.body = JSON.stringify(body);
  }
  const response = await doFetch(baseUrl.replace(/\/+$/, "") + path + buildQuery(query), init);
  const text = await response.text();
  let data: unknown;
  if (text !== "") {
    try {
      data = JSON.parse(text);
    } catch {
      data = text;
    }
  }
  if (!response.ok) {
    throw new ApiError(response.status, response.statusText, data);
  }
  return data as T;
}
`

func renderClient(doc *spec.Document, eps []spec.Endpoint, clientName, baseURL string) string {
	var b strings.Builder
	b.WriteString(header(doc))
	if imports := typeImports(doc, eps); len(imports) > 0 {
		b.WriteString("\nimport type { " + strings.Join(imports, ", ") + " } from \"./types\";\n")
	}
	fmt.Fprintf(&b, clientRuntime, jsString(baseURL))
	for i := range eps {
		b.WriteString(renderEndpoint(&eps[i]))
	}
	b.WriteString(renderAggregate(eps, clientName))
	return b.String()
}

// typeImports lists the named types client.ts references, in schema
// declaration order with any strays sorted after.
func typeImports(doc *spec.Document, eps []spec.Endpoint) []string {
	used := map[string]bool{}
	collect := func(s spec.Schema) {
		for _, n := range spec.RefNames(s) {
			used[n] = true
		}
	}
	for i := range eps {
		ep := &eps[i]
		for _, p := range ep.PathParams {
			collect(p.Schema)
		}
		for _, p := range ep.QueryParams {
			collect(p.Schema)
		}
		if m := ep.RequestBody.JSONMedia(); m != nil {
			collect(m.Schema)
		}
		if r := ep.SuccessResponse(); r != nil {
			if m := r.JSONMedia(); m != nil {
				collect(m.Schema)
			}
		}
	}
	if len(used) == 0 {
		return nil
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
	return out
}

func renderEndpoint(ep *spec.Endpoint) string {
	var b strings.Builder
	paramsType := paramsTypeName(ep)
	result := resultType(ep)
	bodyType, hasBody := requestBodyType(ep)

	if paramsType != "" {
		b.WriteString("\nexport type " + paramsType + " = {\n")
		for _, p := range ep.PathParams {
			b.WriteString(paramField(p, true))
		}
		for _, p := range ep.QueryParams {
			b.WriteString(paramField(p, false))
		}
		b.WriteString("};\n")
	}

	b.WriteString("\n" + endpointDoc(ep))
	b.WriteString("export async function " + ep.ID + "(")
	var args []string
	if paramsType != "" {
		args = append(args, "params: "+paramsType)
	}
	if hasBody {
		if ep.RequestBody.Required {
			args = append(args, "body: "+bodyType)
		} else {
			args = append(args, "body?: "+bodyType)
		}
	}
	args = append(args, "options: RequestOptions = {}")
	b.WriteString(strings.Join(args, ", "))
	b.WriteString("): Promise<" + result + "> {\n")

	bodyArg := "undefined"
	if hasBody {
		bodyArg = "body"
	}
	// fetch leaves non-standard casing alone (notably "patch"), so emit the
	// canonical uppercase form.
	b.WriteString("  return request<" + resultTypeAt(ep, 1) + ">(" + jsString(methodOf(ep)) + ", " +
		pathExpr(ep) + ", " + queryExpr(ep) + ", " + bodyArg + ", options);\n")
	b.WriteString("}\n")
	return b.String()
}

func renderAggregate(eps []spec.Endpoint, clientName string) string {
	var b strings.Builder
	b.WriteString("\nexport const " + clientName + " = {\n")
	for i := range eps {
		b.WriteString("  " + eps[i].ID + ",\n")
	}
	b.WriteString("} as const;\n")
	return b.String()
}

func paramsTypeName(ep *spec.Endpoint) string {
	if len(ep.PathParams) == 0 && len(ep.QueryParams) == 0 {
		return ""
	}
	return spec.ExportName(ep.ID) + "Params"
}

// paramField renders one line of a Params type. Path parameters are always
// required in the signature regardless of what the document claims.
func paramField(p spec.Parameter, forceRequired bool) string {
	opt := "?"
	if forceRequired || p.Required {
		opt = ""
	}
	return "  " + typeexpr.PropertyKey(p.Name) + opt + ": " + typeexpr.ProjectAt(p.Schema, 1) + ";\n"
}

func resultType(ep *spec.Endpoint) string { return resultTypeAt(ep, 0) }

// resultTypeAt projects the success payload at the given indent depth, so
// inline object types line up whether they appear in a signature or inside a
// function body.
func resultTypeAt(ep *spec.Endpoint, depth int) string {
	if r := ep.SuccessResponse(); r != nil {
		if m := r.JSONMedia(); m != nil {
			return typeexpr.ProjectAt(m.Schema, depth)
		}
	}
	return "unknown"
}

// requestBodyType reports the request body type when the endpoint takes a
// JSON body. Non-JSON bodies (form uploads and the like) are not part of the
// generated surface.
func requestBodyType(ep *spec.Endpoint) (string, bool) {
	m := ep.RequestBody.JSONMedia()
	if m == nil {
		return "", false
	}
	return typeexpr.Project(m.Schema), true
}

func methodOf(ep *spec.Endpoint) string {
	return strings.ToUpper(string(ep.Verb))
}

func endpointDoc(ep *spec.Endpoint) string {
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

// pathExpr renders the request path as a concatenation expression, with each
// declared path parameter URI-encoded in place. Placeholders without a
// declared parameter stay literal.
func pathExpr(ep *spec.Endpoint) string {
	declared := map[string]bool{}
	for _, p := range ep.PathParams {
		declared[p.Name] = true
	}
	var parts []string
	literal := ""
	for i, seg := range strings.Split(ep.Path, "/") {
		if i > 0 {
			literal += "/"
		}
		if name, ok := placeholder(seg); ok && declared[name] {
			if literal != "" {
				parts = append(parts, jsString(literal))
				literal = ""
			}
			parts = append(parts, "encodeURIComponent(String("+paramAccess(name)+"))")
			continue
		}
		literal += seg
	}
	if literal != "" || len(parts) == 0 {
		parts = append(parts, jsString(literal))
	}
	return strings.Join(parts, " + ")
}

func placeholder(seg string) (string, bool) {
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func queryExpr(ep *spec.Endpoint) string {
	if len(ep.QueryParams) == 0 {
		return "{}"
	}
	pairs := make([]string, 0, len(ep.QueryParams))
	for _, p := range ep.QueryParams {
		pairs = append(pairs, typeexpr.PropertyKey(p.Name)+": "+paramAccess(p.Name))
	}
	return "{ " + strings.Join(pairs, ", ") + " }"
}

func paramAccess(name string) string {
	if typeexpr.IsIdentifier(name) {
		return "params." + name
	}
	return "params[" + jsString(name) + "]"
}

// jsString renders a Go string as a JS string literal. json.Marshal escaping
// is valid JS and additionally neutralizes angle brackets for embedding.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
