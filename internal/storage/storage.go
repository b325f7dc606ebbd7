// Package storage keeps a bounded history of telemetry cycles in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// DefaultKeep is how many entries are retained when no limit is configured.
const DefaultKeep = 1000

const schemaHistory = `
CREATE TABLE IF NOT EXISTS history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    recorded_at INTEGER NOT NULL,
    plant TEXT NOT NULL,
    temp_c REAL NOT NULL,
    rh_pct REAL NOT NULL,
    moisture_pct REAL NOT NULL,
    lux REAL NOT NULL,
    status TEXT NOT NULL
);
`

// Entry is one completed telemetry cycle.
type Entry struct {
	ID           string    `json:"id"`
	RecordedAt   time.Time `json:"recorded_at"`
	Plant        string    `json:"plant"`
	TemperatureC float64   `json:"temp"`
	HumidityPct  float64   `json:"rh"`
	MoisturePct  float64   `json:"moisture"`
	Lux          float64   `json:"light"`
	Status       string    `json:"status"`
}

// History is a SQLite-backed store holding the newest Keep entries.
type History struct {
	db     *sql.DB
	keep   int
	logger zerolog.Logger
}

// Open opens or creates the database at path. keep <= 0 means DefaultKeep.
func Open(path string, keep int, logger zerolog.Logger) (*History, error) {
	if keep <= 0 {
		keep = DefaultKeep
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// one writer: the telemetry loop
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaHistory); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &History{
		db:     db,
		keep:   keep,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// Record inserts e and prunes entries beyond the retention limit.
// An empty ID or zero RecordedAt is filled in.
func (h *History) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO history (id, recorded_at, plant, temp_c, rh_pct, moisture_pct, lux, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.RecordedAt.UTC().UnixMilli(),
		e.Plant,
		e.TemperatureC,
		e.HumidityPct,
		e.MoisturePct,
		e.Lux,
		e.Status,
	); err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM history
		WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)
	`, h.keep)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		h.logger.Debug().Int64("pruned", n).Msg("history pruned")
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, recorded_at, plant, temp_c, rh_pct, moisture_pct, lux, status
		FROM history ORDER BY seq DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &ms, &e.Plant, &e.TemperatureC, &e.HumidityPct, &e.MoisturePct, &e.Lux, &e.Status); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.RecordedAt = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries.
func (h *History) Count(ctx context.Context) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n)
	return n, err
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
