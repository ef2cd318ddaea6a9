// Package journal records every request the dispatcher hands to the
// engine, after the fact, for later inspection. It is a debugging aid:
// a write that fails, or a buffer that fills, never holds up request
// serving or becomes a request's own error.
package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one journaled request.
type Entry struct {
	ID            string
	PayloadSummary string
	DispatchedAt  time.Time
}

// Journal appends Entry records to a SQL table through a buffered
// channel. Record never blocks the caller: once the buffer is full the
// oldest queued entry is dropped to make room for the newest, since a
// gap in the journal is preferable to stalling dispatch.
type Journal struct {
	db      *sql.DB
	entries chan Entry
	done    chan struct{}
}

// Config selects the backing database. Driver is either "sqlite3" or
// "mysql"; DSN is passed straight to sql.Open. BufferSize bounds how
// many entries may be queued before the oldest-drop policy kicks in; a
// non-positive value defaults to 256.
type Config struct {
	Driver     string
	DSN        string
	BufferSize int
}

// DefaultConfig opens a journal.db SQLite file in the current
// directory, the zero-configuration path for local use.
func DefaultConfig() Config {
	return Config{Driver: "sqlite3", DSN: "journal.db", BufferSize: 256}
}

// Open creates (or attaches to) the journal table and starts the
// background writer goroutine.
func Open(cfg Config) (*Journal, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite3" && cfg.DSN == ":memory:" {
		// A SQLite :memory: database lives on one connection; handing
		// out a second would see an empty, unrelated database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: ping %s: %w", cfg.Driver, err)
	}

	if _, err := db.Exec(createTableSQL(cfg.Driver)); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create table: %w", err)
	}

	j := &Journal{
		db:      db,
		entries: make(chan Entry, cfg.BufferSize),
		done:    make(chan struct{}),
	}
	go j.writeLoop()
	return j, nil
}

func createTableSQL(driver string) string {
	if driver == "mysql" {
		return `CREATE TABLE IF NOT EXISTS journal_entries (
			id VARCHAR(64) NOT NULL,
			payload_summary TEXT NOT NULL,
			dispatched_at DATETIME NOT NULL
		)`
	}
	return `CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT NOT NULL,
		payload_summary TEXT NOT NULL,
		dispatched_at DATETIME NOT NULL
	)`
}

// Record implements dispatch.Journal. It enqueues entry for the writer
// goroutine, dropping the oldest queued entry first if the buffer is
// full, and never blocks or returns an error to the caller.
func (j *Journal) Record(id, payloadSummary string, dispatchedAt time.Time) {
	entry := Entry{ID: id, PayloadSummary: payloadSummary, DispatchedAt: dispatchedAt}
	select {
	case j.entries <- entry:
		return
	default:
	}

	select {
	case <-j.entries:
	default:
	}
	select {
	case j.entries <- entry:
	default:
		slog.Warn("journal: dropped entry, buffer still full after eviction", "id", id)
	}
}

func (j *Journal) writeLoop() {
	defer close(j.done)
	for entry := range j.entries {
		_, err := j.db.Exec(
			`INSERT INTO journal_entries (id, payload_summary, dispatched_at) VALUES (?, ?, ?)`,
			entry.ID, entry.PayloadSummary, entry.DispatchedAt,
		)
		if err != nil {
			slog.Warn("journal: write failed", "id", entry.ID, "error", err)
		}
	}
}

// Close stops accepting new entries, waits for the writer goroutine to
// drain whatever is already queued, and closes the database handle.
func (j *Journal) Close() error {
	close(j.entries)
	<-j.done
	return j.db.Close()
}
