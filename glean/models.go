// Package glean holds the indexing API document and identity model
// plus a batched REST push client.
package glean

// Content is a typed text payload for a document field
type Content struct {
	MIMEType    string `json:"mimeType"`
	TextContent string `json:"textContent"`
}

// UserReference points at a datasource user by id
type UserReference struct {
	DatasourceUserID string `json:"datasourceUserId"`
	Datasource       string `json:"datasource,omitempty"`
}

// Permissions is the computed grant for one document
type Permissions struct {
	AllowedUsers            []UserReference `json:"allowedUsers,omitempty"`
	AllowedGroups           []string        `json:"allowedGroups,omitempty"`
	AllowAllDatasourceUsers bool            `json:"allowAllDatasourceUsersAccess,omitempty"`
	AllowAnonymous          bool            `json:"allowAnonymousAccess,omitempty"`
}

// IsEmpty reports whether the grant allows nobody
func (p Permissions) IsEmpty() bool {
	return len(p.AllowedUsers) == 0 && len(p.AllowedGroups) == 0 &&
		!p.AllowAllDatasourceUsers && !p.AllowAnonymous
}

// CustomProperty is a key-value attribute attached to a document
type CustomProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Document is the search-indexable representation of a catalog entity
type Document struct {
	Datasource            string           `json:"datasource"`
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	ViewURL               string           `json:"viewURL"`
	ObjectType            string           `json:"objectType,omitempty"`
	Content               Content          `json:"content"`
	Summary               *Content         `json:"summary,omitempty"`
	Body                  *Content         `json:"body,omitempty"`
	Permissions           Permissions      `json:"permissions"`
	Owner                 *UserReference   `json:"owner,omitempty"`
	ContainerObjectType   string           `json:"containerObjectType,omitempty"`
	ContainerDatasourceID string           `json:"containerDatasourceId,omitempty"`
	CustomProperties      []CustomProperty `json:"customProperties,omitempty"`
	Tags                  []string         `json:"tags,omitempty"`
}

// User is a datasource identity keyed by email
type User struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	UserID     string `json:"userId"`
	ProfileURL string `json:"profileUrl,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty"`
}

// Group is a datasource group identity keyed by name
type Group struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
}

// Membership is one (group, member) edge
type Membership struct {
	GroupName    string `json:"groupName"`
	MemberUserID string `json:"memberUserId"`
}
