package spec

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// docOrder captures the textual order of the mappings the generator must not
// reshuffle: path patterns, component schema names, and object property
// lists. kin-openapi stores these in Go maps, so the order is recovered from
// the raw bytes with a yaml.v3 node probe; yaml.v3 keeps mapping order and
// parses JSON flow syntax too, so one probe covers both input formats.
//
// Order data is advisory. A probe failure yields an empty docOrder and
// callers fall back to sorted keys; it never fails a load.
type docOrder struct {
	paths   []string
	schemas []string
	// propsBySet maps the canonical key set of an object's properties to the
	// declared order of those properties. Objects are correlated with the
	// source text by key set because the converted tree has no positions to
	// match on; the first occurrence of a set wins.
	propsBySet map[string][]string
}

func probeOrder(raw []byte) *docOrder {
	ord := &docOrder{propsBySet: map[string][]string{}}
	if len(raw) == 0 {
		return ord
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return ord
	}
	ord.paths = mappingKeys(mappingValue(&root, "paths"))
	schemas := mappingValue(mappingValue(&root, "components"), "schemas")
	if schemas == nil {
		// Swagger 2.0 definition names survive conversion unchanged.
		schemas = mappingValue(&root, "definitions")
	}
	ord.schemas = mappingKeys(schemas)
	ord.walkProperties(&root)
	return ord
}

// orderedKeys arranges present keys in probe order, appending keys the probe
// missed in sorted order so the result is deterministic either way.
func orderedKeys(ordered []string, present map[string]bool) []string {
	out := make([]string, 0, len(present))
	seen := make(map[string]bool, len(present))
	for _, k := range ordered {
		if present[k] && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range present {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// propertyOrder returns the declared order for an object whose property
// names are keys, or nil when the probe saw no matching object.
func (o *docOrder) propertyOrder(keys []string) []string {
	if o == nil || len(o.propsBySet) == 0 {
		return nil
	}
	return o.propsBySet[canonKeySet(keys)]
}

func (o *docOrder) walkProperties(n *yaml.Node) {
	if n == nil || n.Kind == yaml.AliasNode {
		return
	}
	if n.Kind == yaml.DocumentNode {
		for _, c := range n.Content {
			o.walkProperties(c)
		}
		return
	}
	if n.Kind == yaml.SequenceNode {
		for _, c := range n.Content {
			o.walkProperties(c)
		}
		return
	}
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Value == "properties" && val.Kind == yaml.MappingNode {
			names := mappingKeys(val)
			if len(names) > 1 {
				set := canonKeySet(names)
				if _, ok := o.propsBySet[set]; !ok {
					o.propsBySet[set] = names
				}
			}
		}
		o.walkProperties(val)
	}
}

func canonKeySet(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// mappingNode unwraps document and alias nodes down to a mapping, or nil.
func mappingNode(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) > 0:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		case n.Kind == yaml.MappingNode:
			return n
		default:
			return nil
		}
	}
	return nil
}

func mappingKeys(n *yaml.Node) []string {
	m := mappingNode(n)
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	m := mappingNode(n)
	if m == nil {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
