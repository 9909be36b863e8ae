// Package sqlite provides a SQLite-backed snapshot backend for the store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"encoding/json/v2"

	_ "modernc.org/sqlite"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/lang"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Keys in the store_meta table.
const (
	metaActiveLanguage       = "active_language"
	metaLastCompletionUpdate = "last_completion_update"
)

// Backend persists snapshots in a SQLite database, one JSON document row
// per game.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a SQLite snapshot backend at the given path. It configures
// WAL mode, sets pragmas, and runs schema migration.
func Open(path string, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.SnapshotIO(fmt.Sprintf("failed to open sqlite database at %s", path), err)
	}

	// Set connection pool to 1 writer (SQLite limitation).
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.SnapshotIO(fmt.Sprintf("failed to exec pragma %q", pragma), err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.SnapshotIO("failed to exec schema", err)
	}

	logger.Info("SQLite database opened", "path", path)
	return &Backend{db: db, logger: logger}, nil
}

// Load reads every game row plus the meta table into a snapshot. A fresh
// database yields an empty snapshot.
func (b *Backend) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	rows, err := b.db.QueryContext(ctx, `SELECT id, doc FROM games`)
	if err != nil {
		return nil, errors.SnapshotIO("failed to query games", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			doc string
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, errors.SnapshotIO("failed to scan game row", err)
		}

		var g domain.Game
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, errors.SnapshotParse(fmt.Sprintf("failed to decode game %d", id), err)
		}
		snap.Games[g.ID] = &g
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SnapshotIO("failed to iterate game rows", err)
	}

	if err := b.loadMeta(ctx, snap); err != nil {
		return nil, err
	}

	b.logger.Debug("Snapshot loaded from sqlite", "games", len(snap.Games))
	return snap, nil
}

func (b *Backend) loadMeta(ctx context.Context, snap *domain.Snapshot) error {
	rows, err := b.db.QueryContext(ctx, `SELECT key, value FROM store_meta`)
	if err != nil {
		return errors.SnapshotIO("failed to query store metadata", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return errors.SnapshotIO("failed to scan metadata row", err)
		}

		switch key {
		case metaActiveLanguage:
			snap.ActiveLanguage = lang.Code(value)
		case metaLastCompletionUpdate:
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return errors.SnapshotParse(fmt.Sprintf("failed to parse metadata %s=%q", key, value), err)
			}
			snap.LastCompletionUpdate = ts
		}
	}
	if err := rows.Err(); err != nil {
		return errors.SnapshotIO("failed to iterate metadata rows", err)
	}
	return nil
}

// Save replaces the stored snapshot inside one transaction, so a failed
// save rolls back to the previous snapshot untouched.
func (b *Backend) Save(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.SnapshotIO("failed to begin snapshot transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
		return errors.SnapshotIO("failed to clear games", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO games (id, doc) VALUES (?, ?)`)
	if err != nil {
		return errors.SnapshotIO("failed to prepare game insert", err)
	}
	defer stmt.Close()

	for id, g := range snap.Games {
		data, err := json.Marshal(g)
		if err != nil {
			return errors.SnapshotIO(fmt.Sprintf("failed to encode game %d", id), err)
		}
		if _, err := stmt.ExecContext(ctx, id, string(data)); err != nil {
			return errors.SnapshotIO(fmt.Sprintf("failed to insert game %d", id), err)
		}
	}

	if err := b.saveMeta(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.SnapshotIO("failed to commit snapshot", err)
	}

	b.logger.Debug("Snapshot committed", "games", len(snap.Games))
	return nil
}

func (b *Backend) saveMeta(ctx context.Context, tx *sql.Tx, snap *domain.Snapshot) error {
	const upsert = `INSERT INTO store_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	meta := map[string]string{
		metaActiveLanguage:       string(snap.ActiveLanguage),
		metaLastCompletionUpdate: strconv.FormatInt(snap.LastCompletionUpdate, 10),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, upsert, key, value); err != nil {
			return errors.SnapshotIO(fmt.Sprintf("failed to upsert metadata %s", key), err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	b.logger.Info("Closing sqlite database")
	return b.db.Close()
}

var _ store.Backend = (*Backend)(nil)
