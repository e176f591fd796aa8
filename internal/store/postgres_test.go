package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/pkg/models"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("classpulse_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, store.RunMigrations(connStr, migrationsDir()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func pgEntry(att float64, focus int, comment string) models.Entry {
	return models.Entry{
		Timestamp:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Attentiveness: att,
		Comment:       comment,
		EyeContact:    8,
		Posture:       6,
		FocusDuration: focus,
	}
}

func TestPostgresStore_CreateJob(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "session1"))

	ok, err := s.HasJob(ctx, "session1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasJob(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.CreateJob(ctx, "session1"), store.ErrAlreadyExists)
}

func TestPostgresStore_AppendToMissingJob(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))

	err := s.AppendEntry(context.Background(), "ghost", pgEntry(7, 30, "x"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_AppendAndReadBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "session1"))

	first := pgEntry(7, 30, "first batch, with a comma")
	second := pgEntry(4.5, 45, "second batch")
	second.Timestamp = first.Timestamp.Add(time.Minute)

	require.NoError(t, s.AppendEntry(ctx, "session1", first))
	require.NoError(t, s.AppendEntry(ctx, "session1", second))

	entries, err := s.ReadEntries(ctx, "session1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Timestamp.Equal(first.Timestamp))
	assert.Equal(t, first.Attentiveness, entries[0].Attentiveness)
	assert.Equal(t, first.Comment, entries[0].Comment)
	assert.Equal(t, first.FocusDuration, entries[0].FocusDuration)

	assert.Equal(t, second.Comment, entries[1].Comment, "entries come back in append order")
}

func TestPostgresStore_ReadMissingJob(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))

	_, err := s.ReadEntries(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_ReadEmptyJob(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "session1"))

	entries, err := s.ReadEntries(ctx, "session1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPostgresStore_Ping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	assert.NoError(t, s.Ping(context.Background()))
}
