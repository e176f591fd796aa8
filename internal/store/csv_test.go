package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/pkg/models"
)

func newTestCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	s, err := NewCSVStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleEntry(comment string) models.Entry {
	return models.Entry{
		Timestamp:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Attentiveness: 7.5,
		Comment:       comment,
		EyeContact:    8,
		Posture:       6,
		FocusDuration: 45,
	}
}

func TestCSVStore_CreateJob(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "session1"))

	ok, err := s.HasJob(ctx, "session1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasJob(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCSVStore_CreateJobDuplicate(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "session1"))
	assert.ErrorIs(t, s.CreateJob(ctx, "session1"), ErrAlreadyExists)
}

func TestCSVStore_CreateJobWritesHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.CreateJob(context.Background(), "session1"))

	data, err := os.ReadFile(filepath.Join(dir, "session1.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,attentiveness_rating,comment,eye_contact_score,posture_score,focus_duration\n",
		string(data))
}

func TestCSVStore_AppendToMissingJob(t *testing.T) {
	s := newTestCSVStore(t)
	err := s.AppendEntry(context.Background(), "ghost", sampleEntry("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVStore_ReadMissingJob(t *testing.T) {
	s := newTestCSVStore(t)
	_, err := s.ReadEntries(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVStore_ReadEmptyJob(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, "session1"))

	entries, err := s.ReadEntries(ctx, "session1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVStore_AppendAndReadBack(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, "session1"))

	first := sampleEntry("first batch")
	second := sampleEntry("second batch")
	second.Timestamp = first.Timestamp.Add(time.Minute)
	second.Attentiveness = 3.25

	require.NoError(t, s.AppendEntry(ctx, "session1", first))
	require.NoError(t, s.AppendEntry(ctx, "session1", second))

	entries, err := s.ReadEntries(ctx, "session1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, first, entries[0], "entries must come back in append order")
	assert.Equal(t, second, entries[1])
}

func TestCSVStore_CommentWithCommasAndNewlines(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, "session1"))

	entry := sampleEntry("slouching, then upright\nMETRIC: POSTURE_SCORE: 6\n\"quoted\"")
	require.NoError(t, s.AppendEntry(ctx, "session1", entry))

	entries, err := s.ReadEntries(ctx, "session1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.Comment, entries[0].Comment)
}

func TestCSVStore_RejectsTraversalJobIDs(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", `a\b`, ".."} {
		assert.ErrorIs(t, s.CreateJob(ctx, id), ErrInvalidJobID, "job id %q must be rejected", id)
	}
}

func TestCSVStore_ConcurrentAppends(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, "session1"))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AppendEntry(ctx, "session1", sampleEntry("row")))
		}()
	}
	wg.Wait()

	entries, err := s.ReadEntries(ctx, "session1")
	require.NoError(t, err)
	assert.Len(t, entries, n, "per-job locking must keep rows intact")
}

func TestCSVStore_Ping(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStore(dir)
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, s.Ping(context.Background()))
}
