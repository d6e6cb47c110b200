package refs

import (
	"github.com/yairfalse/silta/types"
)

// Resolution tries an ordered list of strategies; the first hit wins.
// Catalog data mixes reference styles freely, so strict-only matching
// would silently drop valid relationships.
type strategy func(ref string, idx *Index) *types.Entity

var strategies = []strategy{
	resolveExact,
	resolveDefaultNamespace,
	resolveNameScan,
	resolveBareScan,
}

// Resolve finds the entity a reference points at, or nil when no
// strategy matches. A nil result is not an error; callers proceed
// without the link.
func Resolve(ref string, idx *Index) *types.Entity {
	for _, s := range strategies {
		if e := s(ref, idx); e != nil {
			return e
		}
	}
	return nil
}

// resolveExact matches the reference against full canonical refs
func resolveExact(ref string, idx *Index) *types.Entity {
	if e, ok := idx.Get(ref); ok {
		return e
	}
	return nil
}

// resolveDefaultNamespace reconstructs {type}:default/{name} and retries
func resolveDefaultNamespace(ref string, idx *Index) *types.Entity {
	refType, name := Parse(ref)
	if refType == TypeUnknown {
		return nil
	}
	if e, ok := idx.Get(refType + ":" + types.DefaultNamespace + "/" + name); ok {
		return e
	}
	return nil
}

// resolveNameScan scans entities in arrival order for a bare-name match.
// When the reference carries a known type, the candidate's kind must
// match it case-insensitively.
func resolveNameScan(ref string, idx *Index) *types.Entity {
	refType, name := Parse(ref)
	for _, e := range idx.All() {
		if e.Metadata.Name != name {
			continue
		}
		if refType != TypeUnknown && !types.KindMatches(e.Kind, refType) {
			continue
		}
		return e
	}
	return nil
}

// resolveBareScan handles plain references like "team-a": the original,
// unparsed string must equal an entity name exactly.
func resolveBareScan(ref string, idx *Index) *types.Entity {
	refType, _ := Parse(ref)
	if refType != TypeUnknown {
		return nil
	}
	for _, e := range idx.All() {
		if e.Metadata.Name == ref {
			return e
		}
	}
	return nil
}
