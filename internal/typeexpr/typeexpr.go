// Package typeexpr renders resolved schemas as TypeScript type expressions.
//
// Projection is total: it never fails, and any shape it cannot express
// becomes "unknown". Depth is a formatting device for record indentation,
// never a termination device; recursion terminates because references stay
// references (a Ref projects to its bare type name).
package typeexpr

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mark3labs/openapi2ts/internal/spec"
)

// Project renders s as a TypeScript type expression at the top indentation
// level. A nil schema projects to "unknown".
func Project(s spec.Schema) string { return ProjectAt(s, 0) }

// ProjectAt renders s with record bodies indented depth+1 levels deep (two
// spaces per level).
func ProjectAt(s spec.Schema, depth int) string {
	switch v := s.(type) {
	case nil:
		return "unknown"
	case *spec.Ref:
		return spec.TypeName(v.Name)
	case *spec.Primitive:
		return nullable(primitive(v), v.Nullable)
	case *spec.Array:
		elem := ProjectAt(v.Elem, depth)
		if needsParens(elem) {
			elem = "(" + elem + ")"
		}
		return nullable(elem+"[]", v.Nullable)
	case *spec.Object:
		return nullable(object(v, depth), v.Nullable)
	case *spec.AllOf:
		return intersection(v.Parts, depth)
	case *spec.OneOf:
		return union(v.Parts, depth)
	case *spec.AnyOf:
		return union(v.Parts, depth)
	}
	return "unknown"
}

func primitive(p *spec.Primitive) string {
	if len(p.Enum) > 0 {
		lits := make([]string, 0, len(p.Enum))
		for _, v := range p.Enum {
			lits = append(lits, literal(v))
		}
		return strings.Join(lits, " | ")
	}
	switch p.Type {
	case "string":
		return "string"
	case "integer", "number":
		return "number"
	case "boolean":
		return "boolean"
	}
	return "unknown"
}

// literal renders an enum member as a TS literal. JSON encoding covers every
// value YAML or JSON can put in an enum, null included.
func literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "unknown"
	}
	return string(b)
}

func object(o *spec.Object, depth int) string {
	if len(o.Fields) == 0 {
		if o.Additional.Value != nil {
			return "Record<string, " + ProjectAt(o.Additional.Value, depth) + ">"
		}
		if o.Additional.Has != nil && !*o.Additional.Has {
			return "Record<string, never>"
		}
		return "Record<string, unknown>"
	}
	inner := strings.Repeat("  ", depth+1)
	var b strings.Builder
	b.WriteString("{\n")
	for _, f := range o.Fields {
		b.WriteString(inner)
		b.WriteString(PropertyKey(f.Name))
		if !f.Required {
			b.WriteString("?")
		}
		b.WriteString(": ")
		b.WriteString(ProjectAt(f.Schema, depth+1))
		b.WriteString(";\n")
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("}")
	return b.String()
}

func intersection(parts []spec.Schema, depth int) string {
	if len(parts) == 0 {
		return "unknown"
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		expr := ProjectAt(p, depth)
		// A union part binds looser than the intersection around it.
		if needsParens(expr) {
			expr = "(" + expr + ")"
		}
		out = append(out, expr)
	}
	return strings.Join(out, " & ")
}

func union(parts []spec.Schema, depth int) string {
	if len(parts) == 0 {
		return "unknown"
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, ProjectAt(p, depth))
	}
	return strings.Join(out, " | ")
}

func nullable(expr string, isNullable bool) string {
	if !isNullable {
		return expr
	}
	return expr + " | null"
}

// needsParens reports whether expr contains a top-level union or
// intersection, i.e. one that would bind looser than a suffix or an
// enclosing intersection.
func needsParens(expr string) bool {
	depth := 0
	inStr := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '<', '(', '[':
			depth++
		case '}', '>', ')', ']':
			depth--
		case '|', '&':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsIdentifier reports whether name is usable as a bare TS property name.
func IsIdentifier(name string) bool { return identRe.MatchString(name) }

// PropertyKey returns name as a TS object key, quoted when necessary.
func PropertyKey(name string) string {
	if IsIdentifier(name) {
		return name
	}
	b, _ := json.Marshal(name)
	return string(b)
}
