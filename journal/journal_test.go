package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	dir := t.TempDir()
	j, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, dir
}

func TestRecordAssignsSequence(t *testing.T) {
	j, _ := openTestJournal(t)

	seq1, err := j.Record(Run{Status: "ok", StartedAt: time.Now()})
	require.NoError(t, err)
	seq2, err := j.Record(Run{Status: "failed", StartedAt: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, int64(1), seq1)
	assert.Equal(t, int64(2), seq2)
}

func TestGet(t *testing.T) {
	j, _ := openTestJournal(t)

	seq, err := j.Record(Run{
		Status:     "partial",
		Counts:     map[string]int{"documents": 12, "users": 3},
		Duplicates: 1,
		Errors:     []string{"Component:broken - mapping panic"},
	})
	require.NoError(t, err)

	run, err := j.Get(seq)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "partial", run.Status)
	assert.Equal(t, 12, run.Counts["documents"])
	assert.Len(t, run.Errors, 1)
}

func TestGet_Missing(t *testing.T) {
	j, _ := openTestJournal(t)
	run, err := j.Get(99)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestList_NewestFirst(t *testing.T) {
	j, _ := openTestJournal(t)
	for i := 0; i < 5; i++ {
		_, err := j.Record(Run{Status: "ok"})
		require.NoError(t, err)
	}

	runs, err := j.List(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, int64(5), runs[0].Sequence)
	assert.Equal(t, int64(3), runs[2].Sequence)
}

func TestLast(t *testing.T) {
	j, _ := openTestJournal(t)

	last, err := j.Last()
	require.NoError(t, err)
	assert.Nil(t, last)

	_, err = j.Record(Run{Status: "ok"})
	require.NoError(t, err)
	_, err = j.Record(Run{Status: "failed"})
	require.NoError(t, err)

	last, err = j.Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "failed", last.Status)
}

func TestSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir)
	require.NoError(t, err)
	_, err = j.Record(Run{Status: "ok"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j2, err := Open(dir)
	require.NoError(t, err)
	defer j2.Close()

	seq, err := j2.Record(Run{Status: "ok"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	runs, err := j2.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
