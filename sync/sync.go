// Package sync orchestrates one catalog-to-index synchronization run.
//
// The mapping core is synchronous and single-threaded: the full entity
// set is materialized first, the reference index is built in a separate
// pass, and only then are entities mapped. Later-fetched entities may be
// referenced by earlier ones.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yairfalse/silta/glean"
	"github.com/yairfalse/silta/journal"
	"github.com/yairfalse/silta/mapper"
	"github.com/yairfalse/silta/refs"
	"github.com/yairfalse/silta/telemetry"
	"github.com/yairfalse/silta/types"
)

// Source produces the full entity set for a kind, already deserialized.
// The sequence must be fully drained; the core does not paginate.
type Source interface {
	FetchEntities(ctx context.Context, kind string) ([]*types.Entity, error)
}

// Sink accepts ordered output sets. Batching and transport are its
// concern, not the core's.
type Sink interface {
	PushDocuments(ctx context.Context, docs []glean.Document) error
	PushUsers(ctx context.Context, users []glean.User) error
	PushGroups(ctx context.Context, groups []glean.Group) error
	PushMemberships(ctx context.Context, memberships []glean.Membership) error
}

// Runner drives one sync run end to end
type Runner struct {
	source  Source
	sink    Sink
	mapper  *mapper.Mapper
	kinds   []string
	logger  zerolog.Logger
	metrics *telemetry.SyncMetrics
	journal *journal.Journal
	dryRun  bool
}

// Option configures a Runner
type Option func(*Runner)

// WithMetrics attaches metric instruments
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithJournal records each run in the journal
func WithJournal(j *journal.Journal) Option {
	return func(r *Runner) { r.journal = j }
}

// WithDryRun marks runs as previews in logs and the journal
func WithDryRun(dry bool) Option {
	return func(r *Runner) { r.dryRun = dry }
}

// NewRunner creates a sync runner over a source and sink
func NewRunner(source Source, sink Sink, m *mapper.Mapper, kinds []string, logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		source: source,
		sink:   sink,
		mapper: m,
		kinds:  kinds,
		logger: logger.With().Str("component", "sync").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a full sync: identities first (documents may reference
// them in permission grants), then catalog entities.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "sync.run")
	defer span.End()

	start := time.Now()
	res := NewResult()
	res.DryRun = r.dryRun

	log := telemetry.WithContext(ctx, r.logger)
	log.Info().Bool("dry_run", r.dryRun).Msg("starting sync")

	if err := r.syncIdentities(ctx, res); err != nil {
		res.PushErrors = append(res.PushErrors, err.Error())
	}
	if err := r.syncEntities(ctx, res); err != nil {
		res.PushErrors = append(res.PushErrors, err.Error())
	}

	res.Duration = time.Since(start)
	r.finish(ctx, res)

	log.Info().
		Str("status", res.Status()).
		Dur("duration", res.Duration).
		Int("documents", res.Documents).
		Int("users", res.Users).
		Int("groups", res.Groups).
		Int("memberships", res.Memberships).
		Int("mapping_errors", len(res.MappingErrors)).
		Msg("sync finished")

	return res, nil
}

func (r *Runner) syncIdentities(ctx context.Context, res *Result) error {
	log := telemetry.WithContext(ctx, r.logger)

	users, err := r.fetchKind(ctx, res, types.KindUser)
	if err != nil {
		return err
	}
	groups, err := r.fetchKind(ctx, res, types.KindGroup)
	if err != nil {
		return err
	}
	if len(users) == 0 && len(groups) == 0 {
		log.Info().Msg("no users or groups to sync")
		return nil
	}

	dedup := mapper.DeduplicateUsers(users)
	res.recordDedup(dedup)
	if len(dedup.Duplicates) > 0 {
		for email, dups := range dedup.Duplicates {
			names := make([]string, len(dups))
			for i, u := range dups {
				names[i] = u.Namespace() + "/" + u.Metadata.Name
			}
			log.Info().Str("email", email).Strs("users", names).Msg("merged duplicate user identities")
		}
	}
	if r.metrics != nil {
		r.metrics.RecordIdentities(ctx, int64(len(dedup.Unique)), int64(res.Duplicates))
	}

	gleanUsers := make([]glean.User, len(dedup.Unique))
	for i, u := range dedup.Unique {
		gleanUsers[i] = r.mapper.MapUser(u)
	}
	gleanGroups := make([]glean.Group, len(groups))
	for i, g := range groups {
		gleanGroups[i] = r.mapper.MapGroup(g)
	}
	memberships := mapper.MapMemberships(dedup.Unique, groups)

	res.Users = len(gleanUsers)
	res.Groups = len(gleanGroups)
	res.Memberships = len(memberships)

	if err := r.sink.PushUsers(ctx, gleanUsers); err != nil {
		return fmt.Errorf("push users: %w", err)
	}
	if err := r.sink.PushGroups(ctx, gleanGroups); err != nil {
		return fmt.Errorf("push groups: %w", err)
	}
	if err := r.sink.PushMemberships(ctx, memberships); err != nil {
		return fmt.Errorf("push memberships: %w", err)
	}
	return nil
}

func (r *Runner) syncEntities(ctx context.Context, res *Result) error {
	log := telemetry.WithContext(ctx, r.logger)

	// Materialize every enabled kind before building the index:
	// forward references are legal in catalog data
	var entities []*types.Entity
	for _, kind := range r.kinds {
		if kind == types.KindUser || kind == types.KindGroup {
			continue
		}
		fetched, err := r.fetchKind(ctx, res, kind)
		if err != nil {
			return err
		}
		entities = append(entities, fetched...)
	}
	if len(entities) == 0 {
		log.Info().Msg("no catalog entities to sync")
		return nil
	}

	idx := refs.NewIndex(entities)

	docs, mapErrs := r.mapper.MapDocuments(entities, idx)
	res.Documents = len(docs)
	res.MappingErrors = append(res.MappingErrors, mapErrs...)
	if r.metrics != nil {
		r.metrics.RecordMapped(ctx, int64(len(docs)), int64(len(mapErrs)))
	}
	for _, me := range mapErrs {
		log.Warn().Str("entity", me.Entity).Str("error", me.Message).Msg("entity failed to map")
	}

	if err := r.sink.PushDocuments(ctx, docs); err != nil {
		return fmt.Errorf("push documents: %w", err)
	}
	return nil
}

func (r *Runner) fetchKind(ctx context.Context, res *Result, kind string) ([]*types.Entity, error) {
	if !r.kindEnabled(kind) {
		return nil, nil
	}
	entities, err := r.source.FetchEntities(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("fetch %s entities: %w", kind, err)
	}
	res.Counts[kind] = len(entities)
	if r.metrics != nil {
		r.metrics.RecordFetched(ctx, kind, int64(len(entities)))
	}
	return entities, nil
}

func (r *Runner) kindEnabled(kind string) bool {
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *Runner) finish(ctx context.Context, res *Result) {
	if r.metrics != nil {
		r.metrics.RecordRun(ctx, res.Status(), res.Duration.Seconds())
	}
	if r.journal == nil {
		return
	}
	if _, err := r.journal.Record(res.JournalRun()); err != nil {
		log := telemetry.WithContext(ctx, r.logger)
		log.Error().Err(err).Msg("failed to record run in journal")
	}
}
