package types

import "strings"

// Entity represents a single catalog record (user, group, or technical asset)
type Entity struct {
	APIVersion string           `json:"apiVersion"`
	Kind       string           `json:"kind"`
	Metadata   EntityMetadata   `json:"metadata"`
	Spec       map[string]any   `json:"spec,omitempty"`
	Relations  []EntityRelation `json:"relations,omitempty"`
}

// EntityMetadata holds identity and descriptive fields for an entity
type EntityMetadata struct {
	Namespace   string            `json:"namespace,omitempty"`
	Name        string            `json:"name"`
	UID         string            `json:"uid,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Links       []EntityLink      `json:"links,omitempty"`
}

// EntityLink is a titled URL attached to an entity
type EntityLink struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// EntityRelation is a typed edge to another entity
type EntityRelation struct {
	Type      string `json:"type"`
	TargetRef string `json:"targetRef"`
}

// Namespace returns the entity namespace, defaulting to "default"
func (e *Entity) Namespace() string {
	if e.Metadata.Namespace == "" {
		return DefaultNamespace
	}
	return e.Metadata.Namespace
}

// Ref returns the canonical reference string {kind}:{namespace}/{name}
func (e *Entity) Ref() string {
	return strings.ToLower(e.Kind) + ":" + e.Namespace() + "/" + e.Metadata.Name
}

// DocumentID returns the stable document identifier {kind}-{namespace}-{name}
func (e *Entity) DocumentID() string {
	return strings.ToLower(e.Kind) + "-" + e.Namespace() + "-" + e.Metadata.Name
}

// Label identifies the entity in error reports and logs
func (e *Entity) Label() string {
	return e.Kind + ":" + e.Metadata.Name
}
