package mapper

import (
	"sort"

	"github.com/yairfalse/silta/refs"
	"github.com/yairfalse/silta/types"
)

// DedupResult is the accumulator for one deduplication pass
type DedupResult struct {
	// Unique holds one user per distinct email, in original relative order
	Unique []*types.Entity
	// Duplicates maps each colliding email to its users in encounter
	// order, the kept user first
	Duplicates map[string][]*types.Entity
}

// DeduplicateUsers collapses users sharing an email into one identity.
// The first user seen for an email is kept; later duplicates contribute
// their group memberships, which are merged into the kept user as a
// normalized bare-name set.
func DeduplicateUsers(users []*types.Entity) DedupResult {
	res := DedupResult{
		Unique:     make([]*types.Entity, 0, len(users)),
		Duplicates: make(map[string][]*types.Entity),
	}
	seen := make(map[string]*types.Entity, len(users))

	for _, user := range users {
		email, _ := UserEmail(user)

		kept, dup := seen[email]
		if !dup {
			seen[email] = user
			res.Unique = append(res.Unique, user)
			continue
		}

		if len(res.Duplicates[email]) == 0 {
			res.Duplicates[email] = append(res.Duplicates[email], kept)
		}
		res.Duplicates[email] = append(res.Duplicates[email], user)

		mergeMemberships(kept, user)
	}
	return res
}

// mergeMemberships unions both users' memberOf lists into the kept user,
// normalized to bare group names. Sorted so repeated runs produce
// byte-identical output.
func mergeMemberships(kept, dup *types.Entity) {
	set := make(map[string]struct{})
	for _, ref := range append(kept.MemberOf(), dup.MemberOf()...) {
		set[refs.Name(ref)] = struct{}{}
	}
	merged := make([]string, 0, len(set))
	for name := range set {
		merged = append(merged, name)
	}
	sort.Strings(merged)
	kept.SetMemberOf(merged)
}
