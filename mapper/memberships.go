package mapper

import (
	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/refs"
	"github.com/yairfalse/silta/types"
)

// MapMemberships derives group-membership edges from both directions of
// the ownership graph: each user's memberOf list, then each group's
// hasMember relations. Pairs are deduplicated; output is grouped by
// group in first-seen order with members in first-seen order.
func MapMemberships(users, groups []*types.Entity) []glean.Membership {
	members := make(map[string][]string)
	var groupOrder []string

	record := func(group, member string) {
		if _, seen := members[group]; !seen {
			groupOrder = append(groupOrder, group)
		}
		for _, existing := range members[group] {
			if existing == member {
				return
			}
		}
		members[group] = append(members[group], member)
	}

	for _, user := range users {
		for _, groupRef := range user.MemberOf() {
			record(refs.Name(groupRef), user.Metadata.Name)
		}
	}

	for _, group := range groups {
		for _, userRef := range group.MemberRelations() {
			record(group.Metadata.Name, refs.Name(userRef))
		}
	}

	var out []glean.Membership
	for _, group := range groupOrder {
		for _, member := range members[group] {
			out = append(out, glean.Membership{GroupName: group, MemberUserID: member})
		}
	}
	return out
}
