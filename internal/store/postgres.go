package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/classpulse/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5. It is the
// backend of choice when several capture clients share one server and the
// log directory no longer cuts it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateJob(ctx context.Context, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id) VALUES ($1)`, jobID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasJob(ctx context.Context, jobID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM jobs WHERE id = $1`, jobID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has job: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) AppendEntry(ctx context.Context, jobID string, entry models.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO entries (job_id, ts, attentiveness_rating, comment, eye_contact_score, posture_score, focus_duration)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		jobID, entry.Timestamp.UTC(), entry.Attentiveness, entry.Comment,
		entry.EyeContact, entry.Posture, entry.FocusDuration)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ReadEntries(ctx context.Context, jobID string) ([]models.Entry, error) {
	exists, err := s.HasJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT ts, attentiveness_rating, comment, eye_contact_score, posture_score, focus_duration
		 FROM entries WHERE job_id = $1 ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.Timestamp, &e.Attentiveness, &e.Comment,
			&e.EyeContact, &e.Posture, &e.FocusDuration); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isForeignKeyError checks if a pgx error is a foreign key violation, which
// for entries means the referenced job was never created.
func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
