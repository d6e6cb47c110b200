package sync

import (
	"time"

	"github.com/yairfalse/silta/journal"
	"github.com/yairfalse/silta/mapper"
)

// Result summarizes one sync run
type Result struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	DryRun    bool          `json:"dry_run"`

	// Counts holds fetched entities per kind
	Counts map[string]int `json:"counts"`

	Users       int `json:"users"`
	Groups      int `json:"groups"`
	Memberships int `json:"memberships"`
	Documents   int `json:"documents"`

	// Duplicates is the number of user entities folded into another
	// identity during deduplication. DuplicateEmails lists the affected
	// addresses with the entities behind each one, kept entity first.
	Duplicates      int                 `json:"duplicates"`
	DuplicateEmails map[string][]string `json:"duplicate_emails,omitempty"`

	// MappingErrors are per-entity failures. They degrade the run to
	// partial but never abort it.
	MappingErrors []mapper.EntityError `json:"mapping_errors,omitempty"`

	// PushErrors are fetch or transport failures. They mark the run failed.
	PushErrors []string `json:"push_errors,omitempty"`
}

// NewResult creates an empty result stamped with the current time
func NewResult() *Result {
	return &Result{
		StartedAt: time.Now().UTC(),
		Counts:    make(map[string]int),
	}
}

// Status classifies the run: ok, partial, or failed
func (r *Result) Status() string {
	switch {
	case len(r.PushErrors) > 0:
		return "failed"
	case len(r.MappingErrors) > 0:
		return "partial"
	default:
		return "ok"
	}
}

func (r *Result) recordDedup(d mapper.DedupResult) {
	for email, dups := range d.Duplicates {
		if r.DuplicateEmails == nil {
			r.DuplicateEmails = make(map[string][]string)
		}
		names := make([]string, len(dups))
		for i, u := range dups {
			names[i] = u.Namespace() + "/" + u.Metadata.Name
		}
		r.DuplicateEmails[email] = names
		// the first entry is the identity that was kept
		r.Duplicates += len(dups) - 1
	}
}

// JournalRun converts the result into a journal record
func (r *Result) JournalRun() journal.Run {
	counts := make(map[string]int, len(r.Counts)+4)
	for kind, n := range r.Counts {
		counts[kind] = n
	}
	counts["documents"] = r.Documents
	counts["users"] = r.Users
	counts["groups"] = r.Groups
	counts["memberships"] = r.Memberships

	var errs []string
	for _, me := range r.MappingErrors {
		errs = append(errs, me.Entity+": "+me.Message)
	}
	errs = append(errs, r.PushErrors...)

	return journal.Run{
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		DryRun:     r.DryRun,
		Status:     r.Status(),
		Counts:     counts,
		Duplicates: r.Duplicates,
		Errors:     errs,
	}
}
