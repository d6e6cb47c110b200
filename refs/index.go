package refs

import (
	"github.com/yairfalse/silta/types"
)

// Index is an in-memory lookup structure over one sync run's entity set.
// Built once after the full set is materialized (entities may reference
// entities fetched after them), read-only during resolution.
//
// The primary key is the full canonical ref. Bare name and namespace/name
// aliases are kept as secondary keys; on alias collision the first entity
// indexed wins, so resolution order tracks catalog arrival order.
type Index struct {
	byRef   map[string]*types.Entity
	byAlias map[string]*types.Entity
	ordered []*types.Entity
}

// NewIndex builds an index over entities, preserving their order
func NewIndex(entities []*types.Entity) *Index {
	idx := &Index{
		byRef:   make(map[string]*types.Entity, len(entities)),
		byAlias: make(map[string]*types.Entity, 2*len(entities)),
		ordered: make([]*types.Entity, 0, len(entities)),
	}
	for _, e := range entities {
		idx.add(e)
	}
	return idx
}

func (idx *Index) add(e *types.Entity) {
	ref := e.Ref()
	if _, dup := idx.byRef[ref]; dup {
		// Same canonical ref twice: keep the first, matching arrival order
		return
	}
	idx.byRef[ref] = e
	idx.ordered = append(idx.ordered, e)

	for _, alias := range []string{
		e.Metadata.Name,
		e.Namespace() + "/" + e.Metadata.Name,
	} {
		if _, taken := idx.byAlias[alias]; !taken {
			idx.byAlias[alias] = e
		}
	}
}

// Get looks up an entity by its exact canonical ref
func (idx *Index) Get(ref string) (*types.Entity, bool) {
	e, ok := idx.byRef[ref]
	return e, ok
}

// GetAlias looks up an entity by bare name or namespace/name
func (idx *Index) GetAlias(alias string) (*types.Entity, bool) {
	e, ok := idx.byAlias[alias]
	return e, ok
}

// All returns the indexed entities in insertion order
func (idx *Index) All() []*types.Entity {
	return idx.ordered
}

// Len returns the number of distinct entities indexed
func (idx *Index) Len() int {
	return len(idx.ordered)
}
