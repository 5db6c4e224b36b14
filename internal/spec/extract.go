package spec

import (
	"strconv"
	"strings"
)

// ExtractOption configures endpoint extraction.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
}

// WithIncludeTags keeps only endpoints that have at least one of the given tags.
func WithIncludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		if len(tags) == 0 {
			return
		}
		if c.includeTags == nil {
			c.includeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes endpoints that have any of the given tags.
func WithExcludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		if len(tags) == 0 {
			return
		}
		if c.excludeTags == nil {
			c.excludeTags = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// ExtractEndpoints flattens the document's path table into the renderer
// surface: paths in declaration order, verbs in the fixed GET, POST, PUT,
// DELETE, PATCH priority, one descriptor per (path, verb) pair present.
// Path-level parameters are merged under operation-level precedence and
// bucketed into path and query lists; header and cookie parameters are
// dropped. Operations without an id get the fallback identifier, and
// colliding identifiers are deduplicated with numeric suffixes in extraction
// order.
func ExtractEndpoints(doc *Document, opts ...ExtractOption) []Endpoint {
	cfg := &extractConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var out []Endpoint
	used := make(map[string]int)
	for _, pe := range doc.Paths {
		for _, verb := range VerbOrder {
			op := pe.Item.Operation(verb)
			if op == nil {
				continue
			}
			if !allowByTags(op.Tags, cfg) {
				continue
			}
			ep := Endpoint{
				Verb:        verb,
				Path:        pe.Pattern,
				Summary:     op.Summary,
				Description: op.Description,
				Tags:        op.Tags,
				Deprecated:  op.Deprecated,
				RequestBody: op.RequestBody,
				Responses:   op.Responses,
			}
			for _, p := range mergeParameters(pe.Item.Parameters, op.Parameters) {
				switch p.In {
				case "path":
					ep.PathParams = append(ep.PathParams, p)
				case "query":
					ep.QueryParams = append(ep.QueryParams, p)
				}
				// header and cookie parameters are not part of the surface
			}
			id := op.ID
			if id == "" {
				id = FallbackOperationID(pe.Pattern, verb)
			}
			// Declared ids are normalized too, so every artifact agrees on
			// one identifier per endpoint.
			ep.ID = claimID(used, Identifier(id))
			out = append(out, ep)
		}
	}
	return out
}

// mergeParameters applies operation-level precedence over path-level
// parameters matched by (in, name), keeping declaration positions stable:
// overrides replace in place, new parameters append.
func mergeParameters(shared, own []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	merged := make([]Parameter, len(shared), len(shared)+len(own))
	copy(merged, shared)
	index := make(map[string]int, len(shared))
	for i, p := range shared {
		index[paramKey(p.In, p.Name)] = i
	}
	for _, p := range own {
		if i, ok := index[paramKey(p.In, p.Name)]; ok {
			merged[i] = p
			continue
		}
		index[paramKey(p.In, p.Name)] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

func paramKey(in, name string) string { return in + ":" + name }

// claimID returns id or, when already claimed, the first free numeric-suffix
// variant ("getUsersId", "getUsersId2", ...).
func claimID(used map[string]int, id string) string {
	next, taken := used[id]
	if !taken {
		used[id] = 2
		return id
	}
	for {
		candidate := id + strconv.Itoa(next)
		if _, exists := used[candidate]; !exists {
			used[id] = next + 1
			used[candidate] = 2
			return candidate
		}
		next++
	}
}

func allowByTags(tags []string, cfg *extractConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(cfg.excludeTags) > 0 {
		for _, t := range tags {
			if _, blocked := cfg.excludeTags[t]; blocked {
				return false
			}
		}
	}
	return true
}
