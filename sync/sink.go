package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/yairfalse/silta/glean"
)

// DryRunSink records mapped output instead of pushing it. With an
// output directory set it also writes each set as a JSON artifact, so
// a run can be inspected before the index is touched.
type DryRunSink struct {
	// OutputDir receives documents.json, users.json, groups.json and
	// memberships.json. Empty disables artifact writing.
	OutputDir string
	Logger    zerolog.Logger

	Documents   []glean.Document
	Users       []glean.User
	Groups      []glean.Group
	Memberships []glean.Membership
}

// PushDocuments records documents without uploading
func (s *DryRunSink) PushDocuments(_ context.Context, docs []glean.Document) error {
	s.Documents = append(s.Documents, docs...)
	return s.writeArtifact("documents.json", s.Documents)
}

// PushUsers records users without uploading
func (s *DryRunSink) PushUsers(_ context.Context, users []glean.User) error {
	s.Users = append(s.Users, users...)
	return s.writeArtifact("users.json", s.Users)
}

// PushGroups records groups without uploading
func (s *DryRunSink) PushGroups(_ context.Context, groups []glean.Group) error {
	s.Groups = append(s.Groups, groups...)
	return s.writeArtifact("groups.json", s.Groups)
}

// PushMemberships records memberships without uploading
func (s *DryRunSink) PushMemberships(_ context.Context, memberships []glean.Membership) error {
	s.Memberships = append(s.Memberships, memberships...)
	return s.writeArtifact("memberships.json", s.Memberships)
}

func (s *DryRunSink) writeArtifact(name string, v any) error {
	if s.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.OutputDir, 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.OutputDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.Logger.Debug().Str("path", path).Msg("wrote dry run artifact")
	return nil
}
