package docsemitter

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/spec"
	"github.com/mark3labs/openapi2ts/internal/typeexpr"
)

func renderDocs(doc *spec.Document, eps []spec.Endpoint) string {
	var b strings.Builder
	title := doc.Title
	if title == "" {
		title = "OpenAPI document"
	}
	b.WriteString("<!-- Generated by openapi2ts. DO NOT EDIT. -->\n")
	b.WriteString("<!-- Source: " + title)
	if doc.Version != "" {
		b.WriteString(" " + doc.Version)
	}
	b.WriteString(" -->\n\n# " + title + "\n")
	if doc.Version != "" {
		b.WriteString("\nVersion: " + doc.Version + "\n")
	}
	if d := strings.TrimSpace(doc.Description); d != "" {
		b.WriteString("\n" + d + "\n")
	}

	if len(doc.Servers) > 0 {
		b.WriteString("\n## Servers\n\n")
		for _, s := range doc.Servers {
			b.WriteString("- `" + s.URL + "`")
			if d := strings.TrimSpace(s.Description); d != "" {
				b.WriteString(" — " + mdCell(d))
			}
			b.WriteString("\n")
		}
	}

	if len(eps) > 0 {
		b.WriteString("\n## Endpoints\n\n")
		b.WriteString("| Operation | Method | Path | Summary |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for i := range eps {
			ep := &eps[i]
			b.WriteString("| [`" + ep.ID + "`](#" + anchor(ep.ID) + ") | `" + methodOf(ep) +
				"` | `" + mdCell(ep.Path) + "` | " + mdCell(ep.Summary) + " |\n")
		}
		for i := range eps {
			b.WriteString(renderEndpoint(&eps[i]))
		}
	}

	if len(doc.SchemaOrder) > 0 {
		b.WriteString("\n## Schemas\n")
		for _, name := range doc.SchemaOrder {
			b.WriteString("\n### `" + spec.TypeName(name) + "`\n\n")
			b.WriteString(tsFence(typeexpr.Project(doc.Schemas[name])))
		}
	}
	return b.String()
}

func renderEndpoint(ep *spec.Endpoint) string {
	var b strings.Builder
	b.WriteString("\n### `" + ep.ID + "`\n\n")
	b.WriteString("`" + methodOf(ep) + " " + ep.Path + "`\n")
	if ep.Deprecated {
		b.WriteString("\n**Deprecated.**\n")
	}
	if s := strings.TrimSpace(ep.Summary); s != "" {
		b.WriteString("\n" + s + "\n")
	}
	if d := strings.TrimSpace(ep.Description); d != "" && d != strings.TrimSpace(ep.Summary) {
		b.WriteString("\n" + d + "\n")
	}

	b.WriteString(paramTable("Path parameters", ep.PathParams, true))
	b.WriteString(paramTable("Query parameters", ep.QueryParams, false))
	b.WriteString(renderBody(ep.RequestBody))
	b.WriteString(renderResponses(ep.Responses))
	return b.String()
}

// paramTable renders one parameter bucket. Path parameters are documented as
// required no matter what the source document claims, matching the generated
// client signatures.
func paramTable(heading string, params []spec.Parameter, forceRequired bool) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n#### " + heading + "\n\n")
	b.WriteString("| Name | Type | Required | Description |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, p := range params {
		req := "no"
		if forceRequired || p.Required {
			req = "yes"
		}
		b.WriteString("| `" + mdCell(p.Name) + "` | `" + mdCell(compactType(p.Schema)) +
			"` | " + req + " | " + mdCell(p.Description) + " |\n")
	}
	return b.String()
}

func renderBody(body *spec.RequestBody) string {
	if body == nil || len(body.Content) == 0 {
		return ""
	}
	var b strings.Builder
	if body.Required {
		b.WriteString("\n#### Request body (required)\n")
	} else {
		b.WriteString("\n#### Request body (optional)\n")
	}
	if d := strings.TrimSpace(body.Description); d != "" {
		b.WriteString("\n" + d + "\n")
	}
	if m := body.JSONMedia(); m != nil {
		b.WriteString("\n" + tsFence(typeexpr.Project(m.Schema)))
		b.WriteString(exampleFence(m.Example))
		return b.String()
	}
	mimes := make([]string, 0, len(body.Content))
	for _, m := range body.Content {
		mimes = append(mimes, "`"+m.Mime+"`")
	}
	b.WriteString("\nContent type: " + strings.Join(mimes, ", ") + "\n")
	return b.String()
}

func renderResponses(responses []spec.Response) string {
	if len(responses) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n#### Responses\n")
	for i := range responses {
		r := &responses[i]
		b.WriteString("\n**`" + r.Status + "`**")
		if d := strings.TrimSpace(r.Description); d != "" {
			b.WriteString(" — " + mdCell(d))
		}
		b.WriteString("\n")
		if m := r.JSONMedia(); m != nil && m.Schema != nil {
			b.WriteString("\n" + tsFence(typeexpr.Project(m.Schema)))
			b.WriteString(exampleFence(m.Example))
		}
	}
	return b.String()
}

func methodOf(ep *spec.Endpoint) string {
	return strings.ToUpper(string(ep.Verb))
}

func tsFence(expr string) string {
	return "```ts\n" + expr + "\n```\n"
}

func exampleFence(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return "\nExample:\n\n```json\n" + string(data) + "\n```\n"
}

// compactType renders a schema on a single line for table cells.
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

// mdCell flattens text into a single escaped line safe inside a table cell.
func mdCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

// anchor mirrors the GitHub heading slug for a backticked operation id.
func anchor(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
