package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/classpulse/classpulse/pkg/models"
)

// csvHeader is the exact column layout of a job log, one row per processed
// batch. Changing the order or names breaks every existing log file.
var csvHeader = []string{
	"timestamp",
	"attentiveness_rating",
	"comment",
	"eye_contact_score",
	"posture_score",
	"focus_duration",
}

// CSVStore implements Store with one append-only CSV file per job under a
// log directory. It is the default backend and matches the on-disk layout
// the capture tooling expects.
type CSVStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-job file lock
}

// NewCSVStore creates the log directory if needed and returns a CSVStore.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &CSVStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Ping verifies the log directory is still accessible.
func (s *CSVStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat log directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *CSVStore) CreateJob(_ context.Context, jobID string) error {
	path, err := s.path(jobID)
	if err != nil {
		return err
	}

	lock := s.jobLock(jobID)
	lock.Lock()
	defer lock.Unlock()

	// O_EXCL makes creation race-free across processes as well.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("creating job log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) HasJob(_ context.Context, jobID string) (bool, error) {
	path, err := s.path(jobID)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("stat job log: %w", err)
	}
	return true, nil
}

func (s *CSVStore) AppendEntry(_ context.Context, jobID string, entry models.Entry) error {
	path, err := s.path(jobID)
	if err != nil {
		return err
	}

	lock := s.jobLock(jobID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("opening job log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		strconv.FormatFloat(entry.Attentiveness, 'g', -1, 64),
		entry.Comment,
		strconv.FormatFloat(entry.EyeContact, 'g', -1, 64),
		strconv.FormatFloat(entry.Posture, 'g', -1, 64),
		strconv.Itoa(entry.FocusDuration),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing entry: %w", err)
	}
	return nil
}

func (s *CSVStore) ReadEntries(_ context.Context, jobID string) ([]models.Entry, error) {
	path, err := s.path(jobID)
	if err != nil {
		return nil, err
	}

	lock := s.jobLock(jobID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening job log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	entries := []models.Entry{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("job %s: reading row: %w", jobID, err)
		}
		entry, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", jobID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRow(row []string) (models.Entry, error) {
	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return models.Entry{}, fmt.Errorf("parsing timestamp %q: %w", row[0], err)
	}
	attentiveness, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return models.Entry{}, fmt.Errorf("parsing attentiveness %q: %w", row[1], err)
	}
	eyeContact, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return models.Entry{}, fmt.Errorf("parsing eye contact %q: %w", row[3], err)
	}
	posture, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return models.Entry{}, fmt.Errorf("parsing posture %q: %w", row[4], err)
	}
	focus, err := strconv.Atoi(row[5])
	if err != nil {
		return models.Entry{}, fmt.Errorf("parsing focus duration %q: %w", row[5], err)
	}

	return models.Entry{
		Timestamp:     ts,
		Attentiveness: attentiveness,
		Comment:       row[2],
		EyeContact:    eyeContact,
		Posture:       posture,
		FocusDuration: focus,
	}, nil
}

// path maps a job id to its log file, rejecting ids that could escape the
// log directory.
func (s *CSVStore) path(jobID string) (string, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || strings.Contains(jobID, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobID, jobID)
	}
	return filepath.Join(s.dir, jobID+".csv"), nil
}

func (s *CSVStore) jobLock(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[jobID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[jobID] = lock
	}
	return lock
}

// Compile-time check that CSVStore implements Store.
var _ Store = (*CSVStore)(nil)
