package spec

import (
	"strings"
	"unicode"
)

// FallbackOperationID derives a deterministic identifier for an operation
// that declares none: the lower-cased verb followed by every path segment in
// capitalized-boundary form. Placeholder braces are stripped first, so a
// parameter segment contributes its name ("/users/{id}" with GET becomes
// "getUsersId"). When no segment survives the identifier is "<verb>Root".
//
// The function is collision-agnostic: distinct inputs may map to the same
// identifier, and deduplication is the extractor's job.
func FallbackOperationID(pattern string, verb Verb) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(verb)))
	wrote := false
	for _, seg := range strings.Split(pattern, "/") {
		t := pascalSegment(seg)
		if t == "" {
			continue
		}
		b.WriteString(t)
		wrote = true
	}
	if !wrote {
		b.WriteString("Root")
	}
	return b.String()
}

// TypeName sanitizes a component name into an exported TypeScript type
// identifier. "pet-store.Order" becomes "PetStoreOrder".
func TypeName(name string) string {
	t := pascalSegment(name)
	if t == "" {
		return "Schema"
	}
	if t[0] >= '0' && t[0] <= '9' {
		t = "Type" + t
	}
	return t
}

// ExportName upper-cases the first letter of an identifier, leaving the rest
// untouched ("getUsersId" → "GetUsersId").
func ExportName(id string) string {
	if id == "" {
		return id
	}
	r := []rune(id)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Identifier normalizes a declared operation id into a camelCase TypeScript
// identifier: separator-delimited tokens are joined with capitalized
// boundaries and the first letter lowered, so "get pet by id" becomes
// "getPetById" while fallback ids pass through unchanged. Ids reducing to
// nothing, or starting with a digit, get an "op" prefix.
func Identifier(id string) string {
	t := pascalSegment(id)
	if t == "" {
		return "op"
	}
	r := []rune(t)
	r[0] = unicode.ToLower(r[0])
	out := string(r)
	if out[0] >= '0' && out[0] <= '9' {
		out = "op" + out
	}
	return out
}

// pascalSegment uppercases the first letter of every separator-delimited
// token and drops the separators (braces included). The tail of each token is
// kept verbatim so acronyms survive: "user-IDs" → "UserIDs".
func pascalSegment(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
