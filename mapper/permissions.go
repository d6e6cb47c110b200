package mapper

import (
	"fmt"

	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/refs"
	"github.com/yairfalse/silta/types"
)

// Policy selects how document permissions are derived
type Policy string

const (
	// PolicyNone grants access to nobody
	PolicyNone Policy = "none"
	// PolicyOwner grants the owning user or group
	PolicyOwner Policy = "owner"
	// PolicyDatasourceUsers grants all users known to the datasource
	PolicyDatasourceUsers Policy = "datasource-users"
	// PolicyAllUsers grants anonymous access
	PolicyAllUsers Policy = "all-users"
)

// ParsePolicy validates a configured policy value.
// An empty value defaults to datasource-users; anything else
// unrecognized is a configuration error caught before mapping starts.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyNone, PolicyOwner, PolicyDatasourceUsers, PolicyAllUsers:
		return Policy(s), nil
	case "":
		return PolicyDatasourceUsers, nil
	}
	return "", fmt.Errorf("unknown permissions policy %q (valid: none, owner, datasource-users, all-users)", s)
}

// derivePermissions computes the grant for one entity.
// The owner policy parses the owner reference only; it does not confirm
// the owner entity exists.
func (m *Mapper) derivePermissions(e *types.Entity) glean.Permissions {
	switch m.policy {
	case PolicyNone:
		return glean.Permissions{}
	case PolicyOwner:
		return m.ownerGrant(e)
	case PolicyAllUsers:
		return glean.Permissions{AllowAnonymous: true}
	default:
		return glean.Permissions{AllowAllDatasourceUsers: true}
	}
}

func (m *Mapper) ownerGrant(e *types.Entity) glean.Permissions {
	owner := e.Owner()
	if owner == "" {
		return glean.Permissions{}
	}
	ownerType, ownerID := refs.Parse(owner)
	switch ownerType {
	case "user":
		return glean.Permissions{
			AllowedUsers: []glean.UserReference{{
				DatasourceUserID: ownerID,
				Datasource:       m.datasource,
			}},
		}
	case "group":
		return glean.Permissions{AllowedGroups: []string{ownerID}}
	}
	// Owner is neither a user nor a group: nobody gets access
	return glean.Permissions{}
}
