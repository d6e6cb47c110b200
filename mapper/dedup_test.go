package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/silta/types"
)

func userEntity(name, email string, memberOf ...string) *types.Entity {
	spec := map[string]any{}
	if email != "" {
		spec["profile"] = map[string]any{"email": email}
	}
	if len(memberOf) > 0 {
		groups := make([]any, len(memberOf))
		for i, g := range memberOf {
			groups[i] = g
		}
		spec["memberOf"] = groups
	}
	return &types.Entity{
		Kind:     types.KindUser,
		Metadata: types.EntityMetadata{Name: name},
		Spec:     spec,
	}
}

func TestUserEmail(t *testing.T) {
	email, synthesized := UserEmail(userEntity("john", "john@example.com"))
	assert.Equal(t, "john@example.com", email)
	assert.False(t, synthesized)

	email, synthesized = UserEmail(userEntity("ghost", ""))
	assert.Equal(t, "ghost@backstage.local", email)
	assert.True(t, synthesized)
}

func TestDeduplicateUsers_AllDistinct(t *testing.T) {
	users := []*types.Entity{
		userEntity("a", "a@x.com"),
		userEntity("b", "b@x.com"),
	}
	res := DeduplicateUsers(users)

	assert.Equal(t, users, res.Unique)
	assert.Empty(t, res.Duplicates)
}

func TestDeduplicateUsers_MergesMemberships(t *testing.T) {
	first := userEntity("a1", "a@x.com", "team-a")
	second := userEntity("a2", "a@x.com", "group:default/team-b")

	res := DeduplicateUsers([]*types.Entity{first, second})

	require.Len(t, res.Unique, 1)
	assert.Same(t, first, res.Unique[0])

	require.Len(t, res.Duplicates["a@x.com"], 2)
	assert.Same(t, first, res.Duplicates["a@x.com"][0])
	assert.Same(t, second, res.Duplicates["a@x.com"][1])

	// Merged memberships are normalized bare names
	assert.Equal(t, []string{"team-a", "team-b"}, first.MemberOf())
}

func TestDeduplicateUsers_KeepsFirstInOrder(t *testing.T) {
	users := []*types.Entity{
		userEntity("x", "x@x.com"),
		userEntity("a1", "a@x.com"),
		userEntity("y", "y@x.com"),
		userEntity("a2", "a@x.com"),
	}
	res := DeduplicateUsers(users)

	require.Len(t, res.Unique, 3)
	assert.Equal(t, "x", res.Unique[0].Metadata.Name)
	assert.Equal(t, "a1", res.Unique[1].Metadata.Name)
	assert.Equal(t, "y", res.Unique[2].Metadata.Name)
}

func TestDeduplicateUsers_CountsAddUp(t *testing.T) {
	users := []*types.Entity{
		userEntity("a1", "a@x.com"),
		userEntity("a2", "a@x.com"),
		userEntity("a3", "a@x.com"),
		userEntity("b", "b@x.com"),
	}
	res := DeduplicateUsers(users)

	dupTotal := 0
	for _, dups := range res.Duplicates {
		// Each entry lists the kept user plus its duplicates
		dupTotal += len(dups) - 1
	}
	assert.Equal(t, len(users), len(res.Unique)+dupTotal)
}

func TestDeduplicateUsers_PlaceholderEmailsCollide(t *testing.T) {
	// Two email-less users with the same name collapse to one identity
	res := DeduplicateUsers([]*types.Entity{
		userEntity("ghost", ""),
		userEntity("ghost", ""),
	})
	assert.Len(t, res.Unique, 1)
	assert.Len(t, res.Duplicates["ghost@backstage.local"], 2)
}
