package types

// Typed views over the open spec bag. The catalog schema is extensible
// per kind, so spec stays a map; these accessors cover the fields the
// mapper reads and tolerate missing or wrongly-typed values.

// Profile holds the optional user or group profile block
type Profile struct {
	DisplayName string
	Email       string
	Picture     string
}

// SpecString returns spec[key] when it is a non-empty string
func (e *Entity) SpecString(key string) string {
	if e.Spec == nil {
		return ""
	}
	s, _ := e.Spec[key].(string)
	return s
}

// SpecStrings returns spec[key] as a string slice, dropping non-strings
func (e *Entity) SpecStrings(key string) []string {
	if e.Spec == nil {
		return nil
	}
	raw, ok := e.Spec[key].([]any)
	if !ok {
		// Already-normalized entities may carry []string directly
		if ss, ok := e.Spec[key].([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Profile returns the spec.profile block, zero-valued when absent
func (e *Entity) Profile() Profile {
	if e.Spec == nil {
		return Profile{}
	}
	m, ok := e.Spec["profile"].(map[string]any)
	if !ok {
		return Profile{}
	}
	p := Profile{}
	p.DisplayName, _ = m["displayName"].(string)
	p.Email, _ = m["email"].(string)
	p.Picture, _ = m["picture"].(string)
	return p
}

// MemberOf returns a user's group references
func (e *Entity) MemberOf() []string {
	return e.SpecStrings("memberOf")
}

// SetMemberOf replaces a user's group references.
// Used when duplicate identities are merged.
func (e *Entity) SetMemberOf(groups []string) {
	if e.Spec == nil {
		e.Spec = map[string]any{}
	}
	e.Spec["memberOf"] = groups
}

// Owner returns the owner reference, empty when unowned
func (e *Entity) Owner() string { return e.SpecString("owner") }

// System returns the owning system reference
func (e *Entity) System() string { return e.SpecString("system") }

// Domain returns the owning domain reference
func (e *Entity) Domain() string { return e.SpecString("domain") }

// Parent returns a group's parent group reference
func (e *Entity) Parent() string { return e.SpecString("parent") }

// SpecType returns spec.type (service, openapi, team, ...)
func (e *Entity) SpecType() string { return e.SpecString("type") }

// Lifecycle returns spec.lifecycle (production, experimental, ...)
func (e *Entity) Lifecycle() string { return e.SpecString("lifecycle") }

// Definition returns an API entity's definition text
func (e *Entity) Definition() string { return e.SpecString("definition") }

// MemberRelations returns targetRefs of the entity's hasMember relations
func (e *Entity) MemberRelations() []string {
	var refs []string
	for _, rel := range e.Relations {
		if rel.Type == "hasMember" {
			refs = append(refs, rel.TargetRef)
		}
	}
	return refs
}
