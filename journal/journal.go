// Package journal keeps a local history of sync runs.
// Backed by bbolt with an in-memory btree index for ordered listing.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"
)

// Bucket names in bbolt
var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")
)

var keySequence = []byte("sequence")

// Run records one sync run's outcome
type Run struct {
	Sequence   int64          `json:"sequence"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
	DryRun     bool           `json:"dry_run"`
	Status     string         `json:"status"` // ok, partial, failed
	Counts     map[string]int `json:"counts,omitempty"`
	Duplicates int            `json:"duplicates,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

// runEntry is the btree index record
type runEntry struct {
	Sequence  int64
	StartedAt time.Time
	Status    string
}

// Journal is the on-disk run history
type Journal struct {
	mu    sync.RWMutex
	db    *bbolt.DB
	index *btree.BTreeG[*runEntry]
	seq   int64
}

// Open creates or opens a journal in dir
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, "silta.db"), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal buckets: %w", err)
	}

	j := &Journal{
		db: db,
		index: btree.NewG[*runEntry](32, func(a, b *runEntry) bool {
			return a.Sequence < b.Sequence
		}),
	}
	if err := j.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// load rebuilds the in-memory index from disk
func (j *Journal) load() error {
	return j.db.View(func(tx *bbolt.Tx) error {
		if raw := tx.Bucket(bucketMeta).Get(keySequence); raw != nil {
			j.seq = int64(binary.BigEndian.Uint64(raw))
		}
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("decode run %x: %w", k, err)
			}
			j.index.ReplaceOrInsert(&runEntry{
				Sequence:  run.Sequence,
				StartedAt: run.StartedAt,
				Status:    run.Status,
			})
			return nil
		})
	})
}

// Record persists a run and assigns it the next sequence number
func (j *Journal) Record(run Run) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	run.Sequence = j.seq

	data, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("encode run: %w", err)
	}

	err = j.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRuns).Put(seqKey(run.Sequence), data); err != nil {
			return err
		}
		var seqBuf [8]byte
		binary.BigEndian.PutUint64(seqBuf[:], uint64(j.seq))
		return tx.Bucket(bucketMeta).Put(keySequence, seqBuf[:])
	})
	if err != nil {
		j.seq--
		return 0, fmt.Errorf("persist run: %w", err)
	}

	j.index.ReplaceOrInsert(&runEntry{
		Sequence:  run.Sequence,
		StartedAt: run.StartedAt,
		Status:    run.Status,
	})
	return run.Sequence, nil
}

// Get returns one run by sequence number
func (j *Journal) Get(seq int64) (*Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var run *Run
	err := j.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketRuns).Get(seqKey(seq))
		if raw == nil {
			return nil
		}
		run = &Run{}
		return json.Unmarshal(raw, run)
	})
	if err != nil {
		return nil, fmt.Errorf("read run %d: %w", seq, err)
	}
	return run, nil
}

// List returns up to limit runs, newest first
func (j *Journal) List(limit int) ([]Run, error) {
	j.mu.RLock()

	var seqs []int64
	j.index.Descend(func(e *runEntry) bool {
		seqs = append(seqs, e.Sequence)
		return limit <= 0 || len(seqs) < limit
	})
	j.mu.RUnlock()

	runs := make([]Run, 0, len(seqs))
	for _, seq := range seqs {
		run, err := j.Get(seq)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, *run)
		}
	}
	return runs, nil
}

// Last returns the most recent run, or nil when the journal is empty
func (j *Journal) Last() (*Run, error) {
	runs, err := j.List(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// Close flushes and closes the journal
func (j *Journal) Close() error {
	return j.db.Close()
}

func seqKey(seq int64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(seq))
	return key[:]
}
