package spec

import "strings"

// Resolved document model shared by the endpoint extractor, the type
// projector, and every emitter. References are settled at build time: a Ref
// node names an entry in Document.Schemas, so consumers never chase pointers.

type Verb string

const (
	GET    Verb = "get"
	POST   Verb = "post"
	PUT    Verb = "put"
	DELETE Verb = "delete"
	PATCH  Verb = "patch"
)

// VerbOrder is the fixed priority used when flattening a path's operations.
var VerbOrder = []Verb{GET, POST, PUT, DELETE, PATCH}

type Document struct {
	Title       string
	Version     string
	Description string
	Servers     []Server
	Paths       []PathEntry // declaration order of the source document
	Schemas     map[string]Schema
	SchemaOrder []string // declaration order of component names
	// ConvertedFromV2 records that the source was a Swagger 2.0 document.
	ConvertedFromV2 bool
}

type Server struct {
	URL         string
	Description string
}

type PathEntry struct {
	Pattern string
	Item    PathItem
}

// PathItem carries the verb slots the generator understands plus the
// parameters shared by every operation of the path.
type PathItem struct {
	Get        *Operation
	Put        *Operation
	Post       *Operation
	Delete     *Operation
	Patch      *Operation
	Parameters []Parameter
}

// Operation returns the slot for v, or nil.
func (pi *PathItem) Operation(v Verb) *Operation {
	switch v {
	case GET:
		return pi.Get
	case PUT:
		return pi.Put
	case POST:
		return pi.Post
	case DELETE:
		return pi.Delete
	case PATCH:
		return pi.Patch
	}
	return nil
}

type Operation struct {
	ID          string // operationId; empty until extraction names it
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response // sorted by status, "default" last
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string
	Schema      Schema // nil when the parameter declares none
}

type RequestBody struct {
	Required    bool
	Description string
	Content     []Media
}

type Response struct {
	Status      string // "200", "404", "default"
	Description string
	Content     []Media
}

type Media struct {
	Mime   string
	Schema Schema
	// Example holds a single example value if available. It may be nil.
	Example any
}

// Endpoint is the flat descriptor every renderer consumes: one per
// (path, verb) pair, parameters already merged and bucketed, identifier
// always present.
type Endpoint struct {
	ID          string
	Verb        Verb
	Path        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	PathParams  []Parameter
	QueryParams []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

// SuccessResponse returns the first 2xx response, or nil.
func (e *Endpoint) SuccessResponse() *Response {
	for i := range e.Responses {
		s := e.Responses[i].Status
		if len(s) == 3 && s[0] == '2' {
			return &e.Responses[i]
		}
	}
	return nil
}

// JSONMedia returns the first JSON media entry of the body, or nil.
func (b *RequestBody) JSONMedia() *Media {
	if b == nil {
		return nil
	}
	return jsonMedia(b.Content)
}

// JSONMedia returns the first JSON media entry of the response, or nil.
func (r *Response) JSONMedia() *Media {
	if r == nil {
		return nil
	}
	return jsonMedia(r.Content)
}

func jsonMedia(content []Media) *Media {
	for i := range content {
		if isJSONMime(content[i].Mime) {
			return &content[i]
		}
	}
	return nil
}

func isJSONMime(mime string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	// application/json plus suffixed variants like application/problem+json.
	return mime == "application/json" || strings.HasSuffix(mime, "+json")
}

// Schema is the closed set of shapes a resolved schema node can take. A nil
// Schema means the source declared none; projection treats it as unknown.
type Schema interface {
	schemaNode()
}

// Primitive is a scalar type, optionally narrowed to an enumerated literal
// set. An empty Type means the source declared no recognizable type.
type Primitive struct {
	Type     string // string|number|integer|boolean or ""
	Format   string
	Enum     []any // declaration order
	Nullable bool
}

// Array is a homogeneous list. Elem is nil when items is absent.
type Array struct {
	Elem     Schema
	Nullable bool
}

// Field is a single object property.
type Field struct {
	Name        string
	Schema      Schema
	Required    bool
	Description string
}

// Additional is an object's additionalProperties policy: Has nil means
// unspecified, false forbids extra keys, true allows untyped ones; a non-nil
// Value types them.
type Additional struct {
	Has   *bool
	Value Schema
}

// Object is an ordered record. Fields keep the declaration order of the
// source document.
type Object struct {
	Fields     []Field
	Additional Additional
	Nullable   bool
}

// AllOf is an intersection of its parts.
type AllOf struct {
	Parts []Schema
}

// OneOf is an exclusive union of its parts.
type OneOf struct {
	Parts []Schema
}

// AnyOf is an inclusive union of its parts.
type AnyOf struct {
	Parts []Schema
}

// Ref names a component in Document.Schemas. Conversion never descends
// through a Ref, which is what keeps cyclic schemas finite.
type Ref struct {
	Name string
}

func (*Primitive) schemaNode() {}
func (*Array) schemaNode()     {}
func (*Object) schemaNode()    {}
func (*AllOf) schemaNode()     {}
func (*OneOf) schemaNode()     {}
func (*AnyOf) schemaNode()     {}
func (*Ref) schemaNode()       {}

// RefNames returns the component names a schema mentions, depth-first and
// deduplicated, without following the references themselves.
func RefNames(s Schema) []string {
	var out []string
	seen := map[string]struct{}{}
	collectRefNames(s, seen, &out)
	return out
}

func collectRefNames(s Schema, seen map[string]struct{}, out *[]string) {
	switch v := s.(type) {
	case *Ref:
		if _, ok := seen[v.Name]; !ok {
			seen[v.Name] = struct{}{}
			*out = append(*out, v.Name)
		}
	case *Array:
		collectRefNames(v.Elem, seen, out)
	case *Object:
		for _, f := range v.Fields {
			collectRefNames(f.Schema, seen, out)
		}
		collectRefNames(v.Additional.Value, seen, out)
	case *AllOf:
		for _, p := range v.Parts {
			collectRefNames(p, seen, out)
		}
	case *OneOf:
		for _, p := range v.Parts {
			collectRefNames(p, seen, out)
		}
	case *AnyOf:
		for _, p := range v.Parts {
			collectRefNames(p, seen, out)
		}
	}
}
