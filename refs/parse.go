// Package refs parses and resolves catalog entity references.
//
// References arrive in several loosely-normalized forms:
// fully qualified ("user:default/john.doe"), namespace-less
// ("user:john.doe"), or bare names ("team-a"). Parsing never
// fails; malformed input degrades to a bare name.
package refs

import "strings"

// TypeUnknown is the parsed type for references without a type prefix
const TypeUnknown = ""

// Parse splits a reference into its type and name.
//
//	Parse("user:default/john.doe") -> ("user", "john.doe")
//	Parse("user:guest")            -> ("user", "guest")
//	Parse("team-a")                -> ("", "team-a")
//
// The type is lower-cased for case-insensitive kind matching.
func Parse(ref string) (refType, name string) {
	typePart, rest, found := strings.Cut(ref, ":")
	if !found {
		return TypeUnknown, ref
	}
	if idx := strings.LastIndex(rest, "/"); idx >= 0 {
		rest = rest[idx+1:]
	}
	return strings.ToLower(typePart), rest
}

// Name extracts just the name from a reference.
// Stable: Name(Name(x)) == Name(x).
func Name(ref string) string {
	_, name := Parse(ref)
	return name
}

// NormalizeAll reduces a list of references to bare names
func NormalizeAll(refs []string) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = Name(r)
	}
	return out
}
