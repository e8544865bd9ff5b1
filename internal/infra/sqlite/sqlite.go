// Package sqlite archives finished runs. This is a report sink, not
// engine persistence: the ledger and cache stay memory-resident for the
// lifetime of a run, and only the final snapshot is written out.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo

	"github.com/reckon-ledger/reckon/internal/domain"
	"github.com/reckon-ledger/reckon/internal/ledger"
)

// DB wraps the report archive database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path and applies the
// schema migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, stmt := range migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

// migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			finished_at TEXT NOT NULL DEFAULT (datetime('now')),
			processed   INTEGER NOT NULL DEFAULT 0,
			discarded   INTEGER NOT NULL DEFAULT 0,
			accounts    INTEGER NOT NULL DEFAULT 0
		)`,

		// Amounts are stored as their exact 4-decimal text rendering,
		// never as REAL.
		`CREATE TABLE IF NOT EXISTS account_snapshots (
			run_id    TEXT NOT NULL,
			client    INTEGER NOT NULL,
			available TEXT NOT NULL,
			held      TEXT NOT NULL,
			total     TEXT NOT NULL,
			locked    INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, client)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_client ON account_snapshots(client)`,
	}
}

// SaveRun archives one finished run and its final account rows in a
// single transaction.
func (d *DB) SaveRun(runID string, processed, discarded int64, accounts []ledger.Account) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, finished_at, processed, discarded, accounts) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), processed, discarded, len(accounts),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO account_snapshots (run_id, client, available, held, total, locked) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, acct := range accounts {
		locked := 0
		if acct.Locked {
			locked = 1
		}
		_, err = stmt.Exec(runID, int64(acct.Client),
			domain.FormatAmount(acct.Available),
			domain.FormatAmount(acct.Held),
			domain.FormatAmount(acct.Total),
			locked)
		if err != nil {
			return fmt.Errorf("insert snapshot for client %d: %w", acct.Client, err)
		}
	}

	return tx.Commit()
}

// ─── Queries ────────────────────────────────────────────────────────────────

// RunRecord is one archived run.
type RunRecord struct {
	ID         string
	FinishedAt string
	Processed  int64
	Discarded  int64
	Accounts   int64
}

// Runs returns archived runs, most recent first.
func (d *DB) Runs(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(
		`SELECT id, finished_at, processed, discarded, accounts FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.FinishedAt, &r.Processed, &r.Discarded, &r.Accounts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SnapshotRow is one archived account row.
type SnapshotRow struct {
	Client    int64
	Available string
	Held      string
	Total     string
	Locked    bool
}

// Snapshot returns the archived account rows for a run.
func (d *DB) Snapshot(runID string) ([]SnapshotRow, error) {
	rows, err := d.db.Query(
		`SELECT client, available, held, total, locked FROM account_snapshots WHERE run_id = ? ORDER BY client`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		var locked int
		if err := rows.Scan(&s.Client, &s.Available, &s.Held, &s.Total, &locked); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Locked = locked != 0
		out = append(out, s)
	}
	return out, rows.Err()
}
