package spec

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// BuildDocument converts a loaded OpenAPI v3 document into the resolved
// Document model. Named components are converted exactly once and every
// reference to one becomes a Ref node, so repeated and cyclic references stay
// finite. A reference whose target is missing aborts with a ResolveError;
// structural anomalies (absent info, untyped schemas, empty responses) never
// do.
func BuildDocument(ctx context.Context, res *LoadResult) (*Document, error) {
	_ = ctx
	if res == nil || res.Doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	src := res.Doc
	c := &converter{
		order:   probeOrder(res.Raw),
		known:   map[string]*openapi3.SchemaRef{},
		inlined: map[*openapi3.Schema]bool{},
	}

	doc := &Document{ConvertedFromV2: res.ConvertedFromV2}
	if src.Info != nil {
		doc.Title = safeStr(src.Info.Title)
		doc.Version = safeStr(src.Info.Version)
		doc.Description = safeStr(src.Info.Description)
	}
	for _, s := range src.Servers {
		if s == nil {
			continue
		}
		doc.Servers = append(doc.Servers, Server{URL: safeStr(s.URL), Description: safeStr(s.Description)})
	}

	// Register component names before converting any body: a ref into the
	// registry resolves by name alone, which is what lets bodies convert in
	// any order and self-references terminate.
	if src.Components != nil {
		for name, ref := range src.Components.Schemas {
			c.known[name] = ref
		}
	}
	if len(c.known) > 0 {
		present := make(map[string]bool, len(c.known))
		for name := range c.known {
			present[name] = true
		}
		doc.SchemaOrder = orderedKeys(c.order.schemas, present)
		doc.Schemas = make(map[string]Schema, len(c.known))
		for _, name := range doc.SchemaOrder {
			body, err := c.schema(c.known[name])
			if err != nil {
				return nil, err
			}
			doc.Schemas[name] = body
		}
	}

	if src.Paths != nil {
		present := make(map[string]bool, len(src.Paths))
		for p := range src.Paths {
			present[p] = true
		}
		for _, pattern := range orderedKeys(c.order.paths, present) {
			item := src.Paths[pattern]
			if item == nil {
				continue
			}
			entry := PathEntry{Pattern: pattern}
			var err error
			if entry.Item, err = c.pathItem(item); err != nil {
				return nil, err
			}
			doc.Paths = append(doc.Paths, entry)
		}
	}

	slog.Debug("spec: document built",
		"title", doc.Title, "paths", len(doc.Paths), "schemas", len(doc.Schemas))
	return doc, nil
}

type converter struct {
	order *docOrder
	// known holds the component schema registry by name.
	known map[string]*openapi3.SchemaRef
	// inlined guards descent through inlined (non-component) ref targets so
	// a cycle that never passes through a named component terminates.
	inlined map[*openapi3.Schema]bool
}

func (c *converter) pathItem(item *openapi3.PathItem) (PathItem, error) {
	var out PathItem
	var err error
	if out.Parameters, err = c.parameters(item.Parameters); err != nil {
		return out, err
	}
	// Only the verbs the generator renders; head/options/trace are dropped.
	ops := []struct {
		src *openapi3.Operation
		dst **Operation
	}{
		{item.Get, &out.Get},
		{item.Put, &out.Put},
		{item.Post, &out.Post},
		{item.Delete, &out.Delete},
		{item.Patch, &out.Patch},
	}
	for _, o := range ops {
		if o.src == nil {
			continue
		}
		op, err := c.operation(o.src)
		if err != nil {
			return out, err
		}
		*o.dst = op
	}
	return out, nil
}

func (c *converter) operation(src *openapi3.Operation) (*Operation, error) {
	op := &Operation{
		ID:          safeStr(src.OperationID),
		Summary:     safeStr(src.Summary),
		Description: safeStr(src.Description),
		Deprecated:  src.Deprecated,
	}
	for _, t := range src.Tags {
		if t = strings.TrimSpace(t); t != "" {
			op.Tags = append(op.Tags, t)
		}
	}
	var err error
	if op.Parameters, err = c.parameters(src.Parameters); err != nil {
		return nil, err
	}
	if src.RequestBody != nil {
		switch {
		case src.RequestBody.Value != nil:
			content, err := c.mediaList(src.RequestBody.Value.Content)
			if err != nil {
				return nil, err
			}
			op.RequestBody = &RequestBody{
				Required:    src.RequestBody.Value.Required,
				Description: safeStr(src.RequestBody.Value.Description),
				Content:     content,
			}
		case src.RequestBody.Ref != "":
			return nil, unresolved(src.RequestBody.Ref)
		}
	}
	for status, rref := range src.Responses {
		if rref == nil {
			continue
		}
		if rref.Value == nil {
			if rref.Ref != "" {
				return nil, unresolved(rref.Ref)
			}
			continue
		}
		desc := ""
		if rref.Value.Description != nil {
			desc = safeStr(*rref.Value.Description)
		}
		content, err := c.mediaList(rref.Value.Content)
		if err != nil {
			return nil, err
		}
		op.Responses = append(op.Responses, Response{Status: status, Description: desc, Content: content})
	}
	sortResponses(op.Responses)
	return op, nil
}

// sortResponses orders by status code with "default" last; kin stores
// responses in a map, so the declared order is gone either way.
func sortResponses(rs []Response) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i].Status, rs[j].Status
		if (a == "default") != (b == "default") {
			return b == "default"
		}
		return a < b
	})
}

func (c *converter) parameters(params openapi3.Parameters) ([]Parameter, error) {
	var out []Parameter
	for _, pref := range params {
		if pref == nil {
			continue
		}
		if pref.Value == nil {
			if pref.Ref != "" {
				return nil, unresolved(pref.Ref)
			}
			continue
		}
		p := pref.Value
		pm := Parameter{
			Name:        safeStr(p.Name),
			In:          safeStr(p.In),
			Required:    p.Required,
			Description: safeStr(p.Description),
		}
		if p.Schema != nil {
			s, err := c.schema(p.Schema)
			if err != nil {
				return nil, err
			}
			pm.Schema = s
		}
		out = append(out, pm)
	}
	return out, nil
}

func (c *converter) mediaList(content openapi3.Content) ([]Media, error) {
	if len(content) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Media, 0, len(keys))
	for _, mime := range keys {
		mt := content[mime]
		if mt == nil {
			continue
		}
		var ex any
		if mt.Example != nil {
			ex = mt.Example
		} else if len(mt.Examples) > 0 {
			// Pick the first example value deterministically by key.
			enames := make([]string, 0, len(mt.Examples))
			for name := range mt.Examples {
				enames = append(enames, name)
			}
			sort.Strings(enames)
			if ref := mt.Examples[enames[0]]; ref != nil && ref.Value != nil {
				ex = ref.Value.Value
			}
		}
		s, err := c.schema(mt.Schema)
		if err != nil {
			return nil, err
		}
		out = append(out, Media{Mime: mime, Schema: s, Example: ex})
	}
	return out, nil
}

// schema converts a kin schema node. Refs into #/components/schemas become
// Ref nodes without descending into the target; other refs (deep pointers,
// external files) are inlined from their resolved value.
func (c *converter) schema(ref *openapi3.SchemaRef) (Schema, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.Ref != "" {
		if name, ok := componentName(ref.Ref); ok {
			if _, known := c.known[name]; known {
				return &Ref{Name: name}, nil
			}
		}
		if ref.Value == nil {
			return nil, unresolved(ref.Ref)
		}
		if c.inlined[ref.Value] {
			// A cycle with no named component on it cannot be inlined;
			// degrade to unknown rather than recurse.
			return nil, nil
		}
		c.inlined[ref.Value] = true
		defer delete(c.inlined, ref.Value)
		return c.schemaValue(ref.Value)
	}
	if ref.Value == nil {
		return nil, nil
	}
	return c.schemaValue(ref.Value)
}

func (c *converter) schemaValue(s *openapi3.Schema) (Schema, error) {
	// allOf wins when both composite forms are present; the union forms are
	// consulted only in its absence.
	switch {
	case len(s.AllOf) > 0:
		parts, err := c.parts(s.AllOf)
		if err != nil {
			return nil, err
		}
		return &AllOf{Parts: parts}, nil
	case len(s.OneOf) > 0:
		parts, err := c.parts(s.OneOf)
		if err != nil {
			return nil, err
		}
		return &OneOf{Parts: parts}, nil
	case len(s.AnyOf) > 0:
		parts, err := c.parts(s.AnyOf)
		if err != nil {
			return nil, err
		}
		return &AnyOf{Parts: parts}, nil
	}

	switch safeStr(s.Type) {
	case "array":
		elem, err := c.schema(s.Items)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Nullable: s.Nullable}, nil
	case "object":
		return c.object(s)
	case "string", "integer", "number", "boolean":
		return c.primitive(s, safeStr(s.Type)), nil
	case "":
		// Untyped: infer an object when property keys are present and an
		// array when items is; anything else projects to unknown.
		if len(s.Properties) > 0 || s.AdditionalProperties.Has != nil || s.AdditionalProperties.Schema != nil {
			return c.object(s)
		}
		if s.Items != nil {
			elem, err := c.schema(s.Items)
			if err != nil {
				return nil, err
			}
			return &Array{Elem: elem, Nullable: s.Nullable}, nil
		}
		return c.primitive(s, ""), nil
	default:
		// Unrecognized type: keep enum narrowing when declared.
		return c.primitive(s, ""), nil
	}
}

func (c *converter) primitive(s *openapi3.Schema, typ string) *Primitive {
	p := &Primitive{Type: typ, Format: safeStr(s.Format), Nullable: s.Nullable}
	if len(s.Enum) > 0 {
		p.Enum = append([]any(nil), s.Enum...)
	}
	return p
}

func (c *converter) object(s *openapi3.Schema) (Schema, error) {
	obj := &Object{Nullable: s.Nullable}
	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		if order := c.order.propertyOrder(names); order != nil {
			present := make(map[string]bool, len(names))
			for _, n := range names {
				present[n] = true
			}
			names = orderedKeys(order, present)
		} else {
			sort.Strings(names)
		}
		required := make(map[string]bool, len(s.Required))
		for _, r := range s.Required {
			required[r] = true
		}
		for _, name := range names {
			pref := s.Properties[name]
			ps, err := c.schema(pref)
			if err != nil {
				return nil, err
			}
			desc := ""
			if pref != nil && pref.Value != nil {
				desc = safeStr(pref.Value.Description)
			}
			obj.Fields = append(obj.Fields, Field{
				Name:        name,
				Schema:      ps,
				Required:    required[name],
				Description: desc,
			})
		}
	}
	if s.AdditionalProperties.Has != nil {
		has := *s.AdditionalProperties.Has
		obj.Additional.Has = &has
	}
	if s.AdditionalProperties.Schema != nil {
		v, err := c.schema(s.AdditionalProperties.Schema)
		if err != nil {
			return nil, err
		}
		obj.Additional.Value = v
	}
	return obj, nil
}

func (c *converter) parts(refs openapi3.SchemaRefs) ([]Schema, error) {
	out := make([]Schema, 0, len(refs))
	for _, r := range refs {
		s, err := c.schema(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func componentName(ref string) (string, bool) {
	name, ok := strings.CutPrefix(ref, "#/components/schemas/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func unresolved(ref string) error {
	return &SpecError{
		Code:        ResolveError,
		Message:     fmt.Sprintf("spec: unresolved reference %q", ref),
		JSONPointer: ref,
	}
}

func safeStr(s string) string { return strings.TrimSpace(s) }
