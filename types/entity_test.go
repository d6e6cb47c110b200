package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef_DefaultNamespace(t *testing.T) {
	e := Entity{Kind: KindUser, Metadata: EntityMetadata{Name: "john.doe"}}
	assert.Equal(t, "user:default/john.doe", e.Ref())
}

func TestRef_ExplicitNamespace(t *testing.T) {
	e := Entity{Kind: KindComponent, Metadata: EntityMetadata{Namespace: "payments", Name: "billing-api"}}
	assert.Equal(t, "component:payments/billing-api", e.Ref())
}

func TestDocumentID(t *testing.T) {
	e := Entity{Kind: KindAPI, Metadata: EntityMetadata{Name: "orders"}}
	assert.Equal(t, "api-default-orders", e.DocumentID())
}

func TestLabel(t *testing.T) {
	e := Entity{Kind: KindSystem, Metadata: EntityMetadata{Name: "core"}}
	assert.Equal(t, "System:core", e.Label())
}

func TestIsKnownKind_CaseInsensitive(t *testing.T) {
	assert.True(t, IsKnownKind("user"))
	assert.True(t, IsKnownKind("API"))
	assert.True(t, IsKnownKind("api"))
	assert.False(t, IsKnownKind("widget"))
	assert.False(t, IsKnownKind(""))
}

func TestCanonicalKind(t *testing.T) {
	assert.Equal(t, "User", CanonicalKind("user"))
	assert.Equal(t, "API", CanonicalKind("api"))
	assert.Equal(t, "Component", CanonicalKind("Component"))
	assert.Equal(t, "widget", CanonicalKind("widget"))
}

func TestKindMatches(t *testing.T) {
	assert.True(t, KindMatches("User", "user"))
	assert.True(t, KindMatches("API", "api"))
	assert.False(t, KindMatches("User", "group"))
}
