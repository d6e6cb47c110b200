package mapper

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/types"
)

func testMapper(policy Policy) *Mapper {
	return New("https://backstage.example.com", "backstage", policy, zerolog.Nop())
}

func ownedEntity(owner string) *types.Entity {
	e := &types.Entity{
		Kind:     types.KindComponent,
		Metadata: types.EntityMetadata{Name: "svc"},
	}
	if owner != "" {
		e.Spec = map[string]any{"owner": owner}
	}
	return e
}

func TestParsePolicy(t *testing.T) {
	for _, valid := range []string{"none", "owner", "datasource-users", "all-users"} {
		p, err := ParsePolicy(valid)
		require.NoError(t, err)
		assert.Equal(t, Policy(valid), p)
	}

	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDatasourceUsers, p)

	_, err = ParsePolicy("everyone")
	assert.Error(t, err)
}

func TestDerivePermissions_None(t *testing.T) {
	got := testMapper(PolicyNone).derivePermissions(ownedEntity("user:default/bob"))
	assert.True(t, got.IsEmpty())
}

func TestDerivePermissions_OwnerGroup(t *testing.T) {
	got := testMapper(PolicyOwner).derivePermissions(ownedEntity("group:default/team-a"))
	assert.Equal(t, []string{"team-a"}, got.AllowedGroups)
	assert.Empty(t, got.AllowedUsers)
}

func TestDerivePermissions_OwnerUser(t *testing.T) {
	got := testMapper(PolicyOwner).derivePermissions(ownedEntity("user:default/bob"))
	require.Len(t, got.AllowedUsers, 1)
	assert.Equal(t, glean.UserReference{DatasourceUserID: "bob", Datasource: "backstage"}, got.AllowedUsers[0])
}

func TestDerivePermissions_OwnerAbsent(t *testing.T) {
	got := testMapper(PolicyOwner).derivePermissions(ownedEntity(""))
	assert.True(t, got.IsEmpty())
}

func TestDerivePermissions_OwnerUnrecognizedType(t *testing.T) {
	got := testMapper(PolicyOwner).derivePermissions(ownedEntity("system:default/core"))
	assert.True(t, got.IsEmpty())
}

func TestDerivePermissions_DatasourceUsers(t *testing.T) {
	got := testMapper(PolicyDatasourceUsers).derivePermissions(ownedEntity(""))
	assert.True(t, got.AllowAllDatasourceUsers)
}

func TestDerivePermissions_AllUsers(t *testing.T) {
	got := testMapper(PolicyAllUsers).derivePermissions(ownedEntity(""))
	assert.True(t, got.AllowAnonymous)
}
