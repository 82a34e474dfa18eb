package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/labonzique/comcast-asrs-handler/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
)

// Store is the SQLite ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.asrs/data/ledger.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".asrs", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// LedgerStore returns a LedgerStore interface backed by this store.
func (s *Store) LedgerStore() driven.LedgerStore {
	return &ledgerStore{store: s}
}

// migrate applies every up migration newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Ledger Store ====================

// ledgerStore implements driven.LedgerStore.
type ledgerStore struct {
	store *Store
}

var _ driven.LedgerStore = (*ledgerStore)(nil)

// CreateRun records a new run.
func (l *ledgerStore) CreateRun(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, started_at, finished_at, records, uploaded, failures, output_path, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Status), run.StartedAt.UTC(), nullTime(run.FinishedAt),
		run.Records, run.Uploaded, run.Failures, run.OutputPath, run.LastError)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// UpdateRun replaces a run's counters and status.
func (l *ledgerStore) UpdateRun(ctx context.Context, run domain.Run) error {
	res, err := l.store.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ?, records = ?, uploaded = ?,
			failures = ?, output_path = ?, last_error = ?
		WHERE id = ?
	`, string(run.Status), nullTime(run.FinishedAt), run.Records, run.Uploaded,
		run.Failures, run.OutputPath, run.LastError, run.ID)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (l *ledgerStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := l.store.db.QueryRowContext(ctx, `
		SELECT id, status, started_at, finished_at, records, uploaded, failures, output_path, last_error
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (l *ledgerStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT id, status, started_at, finished_at, records, uploaded, failures, output_path, last_error
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// MarkUploaded remembers an uploaded group key. A repeated key replaces
// the earlier entry.
func (l *ledgerStore) MarkUploaded(ctx context.Context, entry domain.UploadEntry) error {
	if entry.GroupKey == "" {
		return fmt.Errorf("%w: group key is required", domain.ErrInvalidInput)
	}
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO uploads (group_key, row_id, run_id, attachments, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(group_key) DO UPDATE SET
			row_id = excluded.row_id,
			run_id = excluded.run_id,
			attachments = excluded.attachments,
			uploaded_at = excluded.uploaded_at
	`, entry.GroupKey, entry.RowID, entry.RunID, entry.Attachments, entry.UploadedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}

// IsUploaded reports whether a group key has been uploaded.
func (l *ledgerStore) IsUploaded(ctx context.Context, groupKey string) (bool, error) {
	var exists int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM uploads WHERE group_key = ?", groupKey).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying upload: %w", err)
	}
	return true, nil
}

// ListUploads returns the uploads performed by a run, oldest first.
func (l *ledgerStore) ListUploads(ctx context.Context, runID string) ([]domain.UploadEntry, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT group_key, row_id, run_id, attachments, uploaded_at
		FROM uploads WHERE run_id = ? ORDER BY uploaded_at, rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying uploads: %w", err)
	}
	defer rows.Close()

	var entries []domain.UploadEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.UploadEntry
		if err := rows.Scan(&e.GroupKey, &e.RowID, &e.RunID, &e.Attachments, &e.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploads: %w", err)
	}
	return entries, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var status string
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &status, &run.StartedAt, &finishedAt,
		&run.Records, &run.Uploaded, &run.Failures, &run.OutputPath, &run.LastError)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = domain.RunStatus(status)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
