package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"suimu/internal/boundary"
	"suimu/internal/csvimport"
	"suimu/internal/logging"
)

// Entry is one journaled invocation.
type Entry struct {
	ID        int64
	RequestID string
	Command   string
	CSVPath   string
	OK        bool
	Kind      string
	Message   string
	Records   int
	Rows      int
	Skipped   int
	StartedAt time.Time
	Duration  time.Duration
}

// Store manages the invocation journal backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open creates or connects to the journal at path and applies migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers from concurrent invocations.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path, logger: logging.NewComponentLogger(logger, "history")}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record journals inv and its skipped rows in one transaction.
func (s *Store) Record(ctx context.Context, inv boundary.Invocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO invocations (
            request_id, command, csv_path, ok, error_kind, message,
            record_count, row_count, skipped_count, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.Command,
		inv.CSVPath,
		boolToInt(inv.OK),
		nullableString(string(inv.Kind)),
		nullableString(inv.Message),
		inv.Records,
		inv.Rows,
		len(inv.Skipped),
		inv.Started.UTC().Format(timeLayout),
		float64(inv.Duration)/float64(time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, row := range inv.Skipped {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skipped_rows (invocation_id, line, kind, reason) VALUES (?, ?, ?, ?)`,
			id, row.Line, string(row.Kind), row.Reason,
		); err != nil {
			return fmt.Errorf("insert skipped row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invocation: %w", err)
	}
	return nil
}

// ObserveInvocation implements boundary.Observer. Journal failures are
// logged and never reach the caller.
func (s *Store) ObserveInvocation(ctx context.Context, inv boundary.Invocation) {
	if err := s.Record(context.WithoutCancel(ctx), inv); err != nil {
		logging.WarnWithContext(s.logger, "history record failed", "history_record_failed",
			logging.String("request_id", inv.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check disk space and permissions on "+s.path),
			logging.String(logging.FieldImpact, "invocation missing from suimu history"),
		)
	}
}

// List returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM invocations ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get returns the newest entry with the given request id, or nil when absent.
// Callers may supply their own request ids, so a retry journals a second
// entry under the same id.
func (s *Store) Get(ctx context.Context, requestID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM invocations WHERE request_id = ? ORDER BY id DESC LIMIT 1`,
		requestID,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invocation: %w", err)
	}
	return &entry, nil
}

// SkippedRows returns the rows skipped by the newest invocation with
// requestID, in file order.
func (s *Store) SkippedRows(ctx context.Context, requestID string) ([]csvimport.SkippedRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line, kind, reason FROM skipped_rows
         WHERE invocation_id = (
             SELECT id FROM invocations WHERE request_id = ? ORDER BY id DESC LIMIT 1
         )
         ORDER BY line`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("query skipped rows: %w", err)
	}
	defer rows.Close()

	var out []csvimport.SkippedRow
	for rows.Next() {
		var (
			row  csvimport.SkippedRow
			kind string
		)
		if err := rows.Scan(&row.Line, &kind, &row.Reason); err != nil {
			return nil, err
		}
		row.Kind = csvimport.Kind(kind)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Count returns the number of journaled invocations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM invocations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invocations: %w", err)
	}
	return n, nil
}

// Prune deletes invocations started before cutoff along with their
// skipped rows.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invocations WHERE started_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune invocations: %w", err)
	}
	return res.RowsAffected()
}

// timeLayout is fixed width so started_at sorts and compares as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = "id, request_id, command, csv_path, ok, error_kind, message, record_count, row_count, skipped_count, started_at, duration_ms"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry      Entry
		ok         int
		kind       sql.NullString
		message    sql.NullString
		startedRaw string
		durationMS float64
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RequestID,
		&entry.Command,
		&entry.CSVPath,
		&ok,
		&kind,
		&message,
		&entry.Records,
		&entry.Rows,
		&entry.Skipped,
		&startedRaw,
		&durationMS,
	); err != nil {
		return Entry{}, err
	}
	entry.OK = ok != 0
	entry.Kind = kind.String
	entry.Message = message.String
	if started, err := time.Parse(timeLayout, startedRaw); err == nil {
		entry.StartedAt = started
	}
	entry.Duration = time.Duration(durationMS * float64(time.Millisecond))
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
