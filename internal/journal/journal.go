// Package journal keeps a local, append-only record of review
// decisions in SQLite. It is an audit sidecar: the server remains the
// source of truth for pending proposals, and nothing here is ever
// consulted to decide what is still pending.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// Kind classifies a journal entry.
type Kind string

const (
	KindApplied         Kind = "applied"
	KindRejected        Kind = "rejected"
	KindApplyFailed     Kind = "apply_failed"
	KindClusterApproved Kind = "cluster_approved"
	KindModeChanged     Kind = "mode_changed"
)

// DefaultActor marks entries produced by the local reviewer.
const DefaultActor = "reviewer"

// DefaultRecentLimit caps Recent when the caller passes no limit.
const DefaultRecentLimit = 50

// Entry is one recorded decision.
type Entry struct {
	ID          string    `json:"id"`
	RecordedAt  time.Time `json:"recorded_at"`
	WorkspaceID string    `json:"workspace_id"`
	Kind        Kind      `json:"kind"`
	EventID     string    `json:"event_id,omitempty"`
	ClusterKey  string    `json:"cluster_key,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Actor       string    `json:"actor"`
}

// Journal is a SQLite-backed decision log.
type Journal struct {
	dbPath string
	db     *sql.DB
	mu     sync.Mutex
}

// Open opens (creating if necessary) the journal database at dbPath and
// runs pending migrations.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	// WAL mode so a reader (journal listing) never blocks the recorder.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	j := &Journal{dbPath: dbPath, db: db}
	if err := j.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return j, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) migrate() error {
	var version int
	err := j.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet, run initial migration
		version = 0
	}

	if version < 1 {
		if _, err := j.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Record appends one entry. A missing id, timestamp or actor is filled
// in; timestamps are normalized to UTC so they sort correctly.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	e.RecordedAt = e.RecordedAt.UTC()
	if e.Actor == "" {
		e.Actor = DefaultActor
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO decisions (
			id, recorded_at, workspace_id, kind, event_id, cluster_key, detail, actor
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.RecordedAt, e.WorkspaceID, string(e.Kind),
		nullableText(e.EventID), nullableText(e.ClusterKey), nullableText(e.Detail),
		e.Actor,
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

// Recent returns entries newest first, optionally filtered to one
// workspace. A non-positive limit selects DefaultRecentLimit.
func (j *Journal) Recent(ctx context.Context, workspaceID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT id, recorded_at, workspace_id, kind, event_id, cluster_key, detail, actor
		FROM decisions
	`
	args := []any{}
	if workspaceID != "" {
		query += " WHERE workspace_id = ?"
		args = append(args, workspaceID)
	}
	query += " ORDER BY recorded_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}
	return entries, nil
}

// Summarize returns per-kind entry counts, optionally filtered to one
// workspace.
func (j *Journal) Summarize(ctx context.Context, workspaceID string) (map[Kind]int, error) {
	query := "SELECT kind, COUNT(*) FROM decisions"
	args := []any{}
	if workspaceID != "" {
		query += " WHERE workspace_id = ?"
		args = append(args, workspaceID)
	}
	query += " GROUP BY kind"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarizing decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		counts[Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}
	return counts, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var kind string
	var eventID, clusterKey, detail sql.NullString

	err := rows.Scan(&e.ID, &e.RecordedAt, &e.WorkspaceID, &kind,
		&eventID, &clusterKey, &detail, &e.Actor)
	if err != nil {
		return Entry{}, err
	}

	e.Kind = Kind(kind)
	if eventID.Valid {
		e.EventID = eventID.String
	}
	if clusterKey.Valid {
		e.ClusterKey = clusterKey.String
	}
	if detail.Valid {
		e.Detail = detail.String
	}
	return e, nil
}

func nullableText(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
