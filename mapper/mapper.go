// Package mapper translates catalog entities into index documents,
// identities, and permission grants.
package mapper

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/refs"
	"github.com/yairfalse/silta/types"
)

// PlaceholderEmailDomain synthesizes emails for users without one
const PlaceholderEmailDomain = "backstage.local"

// Mapper converts catalog entities to the index's document and
// identity model. Stateless across calls; safe to reuse per run.
type Mapper struct {
	baseURL    string
	datasource string
	policy     Policy
	logger     zerolog.Logger
}

// New creates a mapper. The policy must come from ParsePolicy.
func New(baseURL, datasource string, policy Policy, logger zerolog.Logger) *Mapper {
	return &Mapper{
		baseURL:    strings.TrimRight(baseURL, "/"),
		datasource: datasource,
		policy:     policy,
		logger:     logger.With().Str("component", "mapper").Logger(),
	}
}

// EntityError records one entity's mapping failure
type EntityError struct {
	Entity  string // kind:name
	Message string
}

func (e EntityError) Error() string {
	return e.Entity + " - " + e.Message
}

// UserEmail derives a user's email, synthesizing a placeholder when the
// profile has none. The second return reports whether it was synthesized.
func UserEmail(e *types.Entity) (string, bool) {
	if email := e.Profile().Email; email != "" {
		return email, false
	}
	return e.Metadata.Name + "@" + PlaceholderEmailDomain, true
}

// MapUser converts a User entity to a datasource user identity
func (m *Mapper) MapUser(e *types.Entity) glean.User {
	profile := e.Profile()

	email, synthesized := UserEmail(e)
	if synthesized {
		m.logger.Warn().
			Str("user", e.Metadata.Name).
			Str("email", email).
			Msg("user has no email, using placeholder")
	}

	name := profile.DisplayName
	if name == "" {
		name = e.Metadata.Name
	}

	return glean.User{
		Email:      email,
		Name:       name,
		UserID:     e.Metadata.Name,
		ProfileURL: m.entityURL(e),
		PhotoURL:   profile.Picture,
	}
}

// MapGroup converts a Group entity to a datasource group identity
func (m *Mapper) MapGroup(e *types.Entity) glean.Group {
	display := e.Profile().DisplayName
	if display == "" {
		display = e.Metadata.Name
	}
	return glean.Group{Name: e.Metadata.Name, DisplayName: display}
}

// MapDocuments maps entities to documents, collecting per-entity errors.
// One malformed entity never aborts the batch.
func (m *Mapper) MapDocuments(entities []*types.Entity, idx *refs.Index) ([]glean.Document, []EntityError) {
	docs := make([]glean.Document, 0, len(entities))
	var errs []EntityError

	for _, e := range entities {
		doc, err := m.mapDocument(e, idx)
		if err != nil {
			errs = append(errs, EntityError{Entity: e.Label(), Message: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}

// MapDocument converts one entity to a document using the index for
// container resolution.
func (m *Mapper) MapDocument(e *types.Entity, idx *refs.Index) (glean.Document, error) {
	return m.mapDocument(e, idx)
}

func (m *Mapper) mapDocument(e *types.Entity, idx *refs.Index) (doc glean.Document, err error) {
	// Spec bags are open maps; shield the batch from shape surprises
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mapping panic: %v", r)
		}
	}()

	if e.Metadata.Name == "" {
		return glean.Document{}, fmt.Errorf("entity has no name")
	}

	doc = glean.Document{
		Datasource:  m.datasource,
		ID:          e.DocumentID(),
		Title:       e.Metadata.Name,
		ViewURL:     m.entityURL(e),
		ObjectType:  strings.ToLower(e.Kind),
		Content:     glean.Content{MIMEType: "text/plain", TextContent: synthesizeContent(e)},
		Permissions: m.derivePermissions(e),
		Tags:        e.Metadata.Tags,
	}

	if ownerType, ownerID := refs.Parse(e.Owner()); ownerType == "user" && ownerID != "" {
		doc.Owner = &glean.UserReference{DatasourceUserID: ownerID, Datasource: m.datasource}
	}

	if desc := e.Metadata.Description; desc != "" {
		doc.Summary = &glean.Content{MIMEType: "text/plain", TextContent: PlainText(desc)}
	}

	if def := e.Definition(); def != "" {
		format := classifyDefinition(e.SpecType(), def)
		m.logger.Debug().
			Str("entity", e.Label()).
			Str("format", string(format)).
			Msg("classified definition")
		// Definitions are structured formats, not prose: no markdown reduction
		doc.Body = &glean.Content{MIMEType: definitionMIMEType(format), TextContent: def}
	}

	if idx != nil {
		if parent, objectType := m.container(e, idx); parent != nil {
			doc.ContainerObjectType = objectType
			doc.ContainerDatasourceID = parent.DocumentID()
		}
	}

	doc.CustomProperties = customProperties(e)
	return doc, nil
}

// container resolves the entity's parent in the containment hierarchy:
// Component/API/Resource sit in a System, Systems in a Domain, Groups
// under a parent Group. Unresolvable parents mean no link, not an error.
func (m *Mapper) container(e *types.Entity, idx *refs.Index) (*types.Entity, string) {
	var ref, objectType string
	switch e.Kind {
	case types.KindComponent, types.KindAPI, types.KindResource:
		ref, objectType = e.System(), "system"
	case types.KindSystem:
		ref, objectType = e.Domain(), "domain"
	case types.KindGroup:
		ref, objectType = e.Parent(), "group"
	}
	if ref == "" {
		return nil, ""
	}
	parent := refs.Resolve(ref, idx)
	if parent == nil {
		m.logger.Debug().
			Str("entity", e.Label()).
			Str("ref", ref).
			Msg("container reference did not resolve")
		return nil, ""
	}
	return parent, objectType
}

func customProperties(e *types.Entity) []glean.CustomProperty {
	props := []glean.CustomProperty{
		{Name: "namespace", Value: e.Namespace()},
	}
	if t := e.SpecType(); t != "" {
		props = append(props, glean.CustomProperty{Name: "kind", Value: t})
	}
	if lc := e.Lifecycle(); lc != "" {
		props = append(props, glean.CustomProperty{Name: "lifecycle", Value: titleCase(lc)})
	}
	props = append(props, glean.CustomProperty{Name: "ref", Value: e.Ref()})
	return props
}

// entityURL builds the catalog UI URL for an entity
func (m *Mapper) entityURL(e *types.Entity) string {
	return fmt.Sprintf("%s/catalog/%s/%s/%s",
		m.baseURL, e.Namespace(), strings.ToLower(e.Kind), e.Metadata.Name)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
