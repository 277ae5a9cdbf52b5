// Package journal provides a SQLite-backed audit log of processed
// commands.
//
// The journal records what the dispatcher did, in processing order, for
// the trace CLI command and for tests. It is diagnostic only: the store
// never reads it back, so restarts still start from an empty state and
// the no-persistence contract of the state store holds.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one journaled command.
type Entry struct {
	// Seq is the command's original queue index.
	Seq int
	// Kind is the classified kind name.
	Kind string
	// Event is the event name for kinds that carry one, else empty.
	Event string
	// Payload is the canonical JSON of the raw payload, or a type
	// descriptor when the payload is not JSON-serializable (functions,
	// handler references).
	Payload string
	// Retained reports whether the entry survived in the visible queue.
	Retained bool
}

// Journal is an append-only command log.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at path. Use ":memory:" for
// an ephemeral journal in tests.
//
// The database is configured with WAL mode, a busy timeout, and a
// single connection - the journal has exactly one writer, the
// dispatcher.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one entry. Seq is the primary key; re-recording the
// same seq is silently ignored, so a re-entrant dispatch path can never
// duplicate rows.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO commands (seq, kind, event, payload, retained)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, e.Seq, e.Kind, e.Event, e.Payload, boolToInt(e.Retained))
	if err != nil {
		return fmt.Errorf("record command %d: %w", e.Seq, err)
	}
	return nil
}

// Read returns all entries in seq order.
func (j *Journal) Read(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, kind, event, payload, retained
		FROM commands
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var retained int
		if err := rows.Scan(&e.Seq, &e.Kind, &e.Event, &e.Payload, &retained); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Retained = retained != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
