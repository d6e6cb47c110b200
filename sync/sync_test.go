package sync

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/journal"
	"github.com/yairfalse/silta/mapper"
	"github.com/yairfalse/silta/types"
)

type fakeSource struct {
	entities map[string][]*types.Entity
	failKind string
}

func (f *fakeSource) FetchEntities(_ context.Context, kind string) ([]*types.Entity, error) {
	if kind == f.failKind {
		return nil, errors.New("catalog unreachable")
	}
	return f.entities[kind], nil
}

type fakeSink struct {
	documents   []glean.Document
	users       []glean.User
	groups      []glean.Group
	memberships []glean.Membership
	failDocs    bool
}

func (f *fakeSink) PushDocuments(_ context.Context, docs []glean.Document) error {
	if f.failDocs {
		return errors.New("index rejected upload")
	}
	f.documents = append(f.documents, docs...)
	return nil
}

func (f *fakeSink) PushUsers(_ context.Context, users []glean.User) error {
	f.users = append(f.users, users...)
	return nil
}

func (f *fakeSink) PushGroups(_ context.Context, groups []glean.Group) error {
	f.groups = append(f.groups, groups...)
	return nil
}

func (f *fakeSink) PushMemberships(_ context.Context, memberships []glean.Membership) error {
	f.memberships = append(f.memberships, memberships...)
	return nil
}

func userFixture(name, email string, groups ...string) *types.Entity {
	memberOf := make([]any, len(groups))
	for i, g := range groups {
		memberOf[i] = g
	}
	return &types.Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       types.KindUser,
		Metadata:   types.EntityMetadata{Name: name},
		Spec: map[string]any{
			"profile":  map[string]any{"email": email},
			"memberOf": memberOf,
		},
	}
}

func groupFixture(name string) *types.Entity {
	return &types.Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       types.KindGroup,
		Metadata:   types.EntityMetadata{Name: name},
		Spec:       map[string]any{"type": "team"},
	}
}

func componentFixture(name, owner string) *types.Entity {
	return &types.Entity{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       types.KindComponent,
		Metadata:   types.EntityMetadata{Name: name, Description: "a service"},
		Spec: map[string]any{
			"type":      "service",
			"lifecycle": "production",
			"owner":     owner,
		},
	}
}

func testRunner(t *testing.T, source Source, sink Sink, opts ...Option) *Runner {
	t.Helper()
	pol, err := mapper.ParsePolicy("")
	require.NoError(t, err)
	m := mapper.New("https://backstage.example.com", "backstage", pol, zerolog.Nop())
	return NewRunner(source, sink, m, types.AllKinds, zerolog.Nop(), opts...)
}

func TestRun_FullSync(t *testing.T) {
	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindUser:      {userFixture("alice", "alice@example.com", "group:default/platform")},
		types.KindGroup:     {groupFixture("platform")},
		types.KindComponent: {componentFixture("payments", "group:default/platform")},
	}}
	sink := &fakeSink{}

	res, err := testRunner(t, source, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ok", res.Status())
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 1, res.Memberships)
	assert.Equal(t, 1, res.Documents)
	assert.Equal(t, 1, res.Counts[types.KindComponent])

	require.Len(t, sink.documents, 1)
	assert.Equal(t, "component-default-payments", sink.documents[0].ID)
	require.Len(t, sink.memberships, 1)
	assert.Equal(t, "platform", sink.memberships[0].GroupName)
}

func TestRun_DuplicateUsersMergedBeforePush(t *testing.T) {
	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindUser: {
			userFixture("jdoe", "jdoe@example.com", "group:default/team-a"),
			userFixture("john.doe", "jdoe@example.com", "group:default/team-b"),
		},
		types.KindGroup: {groupFixture("team-a"), groupFixture("team-b")},
	}}
	sink := &fakeSink{}

	res, err := testRunner(t, source, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Duplicates)
	require.Contains(t, res.DuplicateEmails, "jdoe@example.com")
	assert.Equal(t, []string{"default/jdoe", "default/john.doe"}, res.DuplicateEmails["jdoe@example.com"])

	// the kept identity carries both memberships
	require.Len(t, sink.users, 1)
	assert.Equal(t, "jdoe@example.com", sink.users[0].Email)
	require.Len(t, sink.memberships, 2)
	for _, m := range sink.memberships {
		assert.Equal(t, "jdoe", m.MemberUserID)
	}
}

func TestRun_MappingErrorsDegradeToPartial(t *testing.T) {
	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindComponent: {
			componentFixture("good", "group:default/platform"),
			{Kind: types.KindComponent, Metadata: types.EntityMetadata{Name: ""}},
		},
	}}
	sink := &fakeSink{}

	res, err := testRunner(t, source, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "partial", res.Status())
	assert.Equal(t, 1, res.Documents)
	require.Len(t, res.MappingErrors, 1)
	assert.Len(t, sink.documents, 1)
}

func TestRun_FetchFailureMarksRunFailed(t *testing.T) {
	source := &fakeSource{
		entities: map[string][]*types.Entity{
			types.KindUser: {userFixture("alice", "alice@example.com")},
		},
		failKind: types.KindComponent,
	}
	sink := &fakeSink{}

	res, err := testRunner(t, source, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "failed", res.Status())
	require.Len(t, res.PushErrors, 1)
	assert.Contains(t, res.PushErrors[0], "catalog unreachable")
	// identities still synced before the failure
	assert.Len(t, sink.users, 1)
}

func TestRun_PushFailureMarksRunFailed(t *testing.T) {
	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindComponent: {componentFixture("payments", "group:default/platform")},
	}}
	sink := &fakeSink{failDocs: true}

	res, err := testRunner(t, source, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "failed", res.Status())
	require.Len(t, res.PushErrors, 1)
	assert.Contains(t, res.PushErrors[0], "push documents")
}

func TestRun_OnlyEnabledKindsFetched(t *testing.T) {
	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindComponent: {componentFixture("payments", "")},
		types.KindAPI:       {{Kind: types.KindAPI, Metadata: types.EntityMetadata{Name: "pay-api"}}},
	}}
	sink := &fakeSink{}

	pol, err := mapper.ParsePolicy("")
	require.NoError(t, err)
	m := mapper.New("https://backstage.example.com", "backstage", pol, zerolog.Nop())
	runner := NewRunner(source, sink, m, []string{types.KindComponent}, zerolog.Nop())

	res, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Documents)
	assert.NotContains(t, res.Counts, types.KindAPI)
	assert.NotContains(t, res.Counts, types.KindUser)
}

func TestRun_RecordsJournal(t *testing.T) {
	j, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindComponent: {componentFixture("payments", "")},
	}}

	_, err = testRunner(t, source, &fakeSink{}, WithJournal(j), WithDryRun(true)).Run(context.Background())
	require.NoError(t, err)

	last, err := j.Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "ok", last.Status)
	assert.True(t, last.DryRun)
	assert.Equal(t, 1, last.Counts["documents"])
}

func TestDryRunSink_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{entities: map[string][]*types.Entity{
		types.KindUser:      {userFixture("alice", "alice@example.com")},
		types.KindComponent: {componentFixture("payments", "")},
	}}
	sink := &DryRunSink{OutputDir: dir, Logger: zerolog.Nop()}

	res, err := testRunner(t, source, sink, WithDryRun(true)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status())

	data, err := os.ReadFile(filepath.Join(dir, "documents.json"))
	require.NoError(t, err)
	var docs []glean.Document
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "component-default-payments", docs[0].ID)

	_, err = os.Stat(filepath.Join(dir, "users.json"))
	assert.NoError(t, err)
}
