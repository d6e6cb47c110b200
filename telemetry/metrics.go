package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics holds the connector's metric instruments
type SyncMetrics struct {
	syncRuns        metric.Int64Counter
	syncDuration    metric.Float64Histogram
	entitiesFetched metric.Int64Counter
	documentsMapped metric.Int64Counter
	mappingErrors   metric.Int64Counter
	identitiesSeen  metric.Int64Gauge
	duplicateUsers  metric.Int64Counter
}

// NewSyncMetrics creates the connector metrics on the global meter
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := Meter

	syncRuns, err := meter.Int64Counter(
		"silta.sync.runs",
		metric.WithDescription("Number of sync runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	syncDuration, err := meter.Float64Histogram(
		"silta.sync.duration",
		metric.WithDescription("Duration of sync runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	entitiesFetched, err := meter.Int64Counter(
		"silta.catalog.entities.fetched",
		metric.WithDescription("Entities fetched from the catalog"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, err
	}

	documentsMapped, err := meter.Int64Counter(
		"silta.mapper.documents.mapped",
		metric.WithDescription("Entities mapped to documents"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	mappingErrors, err := meter.Int64Counter(
		"silta.mapper.errors",
		metric.WithDescription("Per-entity mapping failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	identitiesSeen, err := meter.Int64Gauge(
		"silta.identities.unique",
		metric.WithDescription("Unique identities after deduplication"),
		metric.WithUnit("{identity}"),
	)
	if err != nil {
		return nil, err
	}

	duplicateUsers, err := meter.Int64Counter(
		"silta.identities.duplicates",
		metric.WithDescription("Duplicate user identities merged"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncRuns:        syncRuns,
		syncDuration:    syncDuration,
		entitiesFetched: entitiesFetched,
		documentsMapped: documentsMapped,
		mappingErrors:   mappingErrors,
		identitiesSeen:  identitiesSeen,
		duplicateUsers:  duplicateUsers,
	}, nil
}

// RecordRun records a completed sync run with status
func (m *SyncMetrics) RecordRun(ctx context.Context, status string, durationSeconds float64) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.syncRuns.Add(ctx, 1, attrs)
	m.syncDuration.Record(ctx, durationSeconds, attrs)
}

// RecordFetched records entities fetched for one kind
func (m *SyncMetrics) RecordFetched(ctx context.Context, kind string, count int64) {
	m.entitiesFetched.Add(ctx, count, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordMapped records mapped documents and mapping failures
func (m *SyncMetrics) RecordMapped(ctx context.Context, mapped, failed int64) {
	m.documentsMapped.Add(ctx, mapped)
	if failed > 0 {
		m.mappingErrors.Add(ctx, failed)
	}
}

// RecordIdentities records dedup results
func (m *SyncMetrics) RecordIdentities(ctx context.Context, unique, duplicates int64) {
	m.identitiesSeen.Record(ctx, unique)
	if duplicates > 0 {
		m.duplicateUsers.Add(ctx, duplicates)
	}
}
