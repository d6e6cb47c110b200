package types

import "strings"

// DefaultNamespace is assumed when an entity or reference omits one
const DefaultNamespace = "default"

// Catalog entity kinds
const (
	KindUser      = "User"
	KindGroup     = "Group"
	KindComponent = "Component"
	KindAPI       = "API"
	KindSystem    = "System"
	KindDomain    = "Domain"
	KindResource  = "Resource"
)

// AllKinds lists every supported kind in sync order.
// Users and groups first: identities must exist before
// document permissions that reference them.
var AllKinds = []string{
	KindUser,
	KindGroup,
	KindComponent,
	KindAPI,
	KindSystem,
	KindDomain,
	KindResource,
}

// IsKnownKind reports whether s names a supported kind, case-insensitively
func IsKnownKind(s string) bool {
	for _, k := range AllKinds {
		if strings.EqualFold(k, s) {
			return true
		}
	}
	return false
}

// CanonicalKind maps any casing of a supported kind to its canonical
// form. Unknown kinds come back unchanged.
func CanonicalKind(s string) string {
	for _, k := range AllKinds {
		if strings.EqualFold(k, s) {
			return k
		}
	}
	return s
}

// KindMatches reports whether an entity kind matches a parsed reference type
func KindMatches(kind, refType string) bool {
	return strings.EqualFold(kind, refType)
}
