package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"encoding/json/v2"

	"github.com/dgraph-io/badger/v4"

	"github.com/gameshelfapp/gameshelf-server/internal/domain"
	"github.com/gameshelfapp/gameshelf-server/internal/errors"
	"github.com/gameshelfapp/gameshelf-server/internal/lang"
)

// Key layout for the badger backend. Each game lives under its own key so
// saves can batch-write and prune removed ids without rewriting a single
// blob.
const (
	gamePrefix = "game:"
	metaKey    = "store:meta"
)

// storeMeta carries the snapshot's store-wide state under its own key.
type storeMeta struct {
	ActiveLanguage       lang.Code `json:"active_language"`
	LastCompletionUpdate int64     `json:"last_completion_update"`
}

// BadgerBackend persists snapshots in a BadgerDB database.
type BadgerBackend struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens the badger database at path, creating it if needed.
func OpenBadger(path string, logger *slog.Logger) (*BadgerBackend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.SnapshotIO(fmt.Sprintf("failed to open badger database at %s", path), err)
	}

	logger.Info("Badger database opened", "path", path)
	return &BadgerBackend{db: db, logger: logger}, nil
}

// Load reads every game key plus the metadata key into a snapshot. A
// fresh database yields an empty snapshot.
func (b *BadgerBackend) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(gamePrefix)); it.ValidForPrefix([]byte(gamePrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var g domain.Game
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &g)
			})
			if err != nil {
				return errors.SnapshotParse(fmt.Sprintf("failed to decode key %s", it.Item().Key()), err)
			}
			snap.Games[g.ID] = &g
		}

		item, err := txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return errors.SnapshotIO("failed to read store metadata", err)
		}

		var meta storeMeta
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
		if err != nil {
			return errors.SnapshotParse("failed to decode store metadata", err)
		}
		snap.ActiveLanguage = meta.ActiveLanguage
		snap.LastCompletionUpdate = meta.LastCompletionUpdate
		return nil
	})
	if err != nil {
		var appErr *errors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.SnapshotIO("failed to load snapshot", err)
	}

	b.logger.Debug("Snapshot loaded from badger", "games", len(snap.Games))
	return snap, nil
}

// Save writes the snapshot as one batch: every game key, the metadata
// key, and deletions for ids no longer present. The batch commits
// atomically, so a failed save leaves the previous snapshot intact.
func (b *BadgerBackend) Save(ctx context.Context, snap *domain.Snapshot) error {
	stale, err := b.staleKeys(snap)
	if err != nil {
		return err
	}

	batch := b.db.NewWriteBatch()
	defer batch.Cancel()

	for id, g := range snap.Games {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(g)
		if err != nil {
			return errors.SnapshotIO(fmt.Sprintf("failed to encode game %d", id), err)
		}
		if err := batch.Set(gameKey(id), data); err != nil {
			return errors.SnapshotIO(fmt.Sprintf("failed to batch game %d", id), err)
		}
	}

	meta := storeMeta{
		ActiveLanguage:       snap.ActiveLanguage,
		LastCompletionUpdate: snap.LastCompletionUpdate,
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return errors.SnapshotIO("failed to encode store metadata", err)
	}
	if err := batch.Set([]byte(metaKey), data); err != nil {
		return errors.SnapshotIO("failed to batch store metadata", err)
	}

	for _, key := range stale {
		if err := batch.Delete(key); err != nil {
			return errors.SnapshotIO("failed to batch stale key deletion", err)
		}
	}

	if err := batch.Flush(); err != nil {
		return errors.SnapshotIO("failed to flush snapshot batch", err)
	}

	b.logger.Debug("Snapshot batch flushed", "games", len(snap.Games), "pruned", len(stale))
	return nil
}

// Close closes the underlying database.
func (b *BadgerBackend) Close() error {
	b.logger.Info("Closing badger database")
	return b.db.Close()
}

// staleKeys returns the on-disk game keys that are absent from snap, plus
// any unparseable key under the game prefix.
func (b *BadgerBackend) staleKeys(snap *domain.Snapshot) ([][]byte, error) {
	var stale [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(gamePrefix)); it.ValidForPrefix([]byte(gamePrefix)); it.Next() {
			key := it.Item().KeyCopy(nil)
			id, err := strconv.ParseInt(string(key[len(gamePrefix):]), 10, 64)
			if err != nil {
				stale = append(stale, key)
				continue
			}
			if _, ok := snap.Games[id]; !ok {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.SnapshotIO("failed to scan existing snapshot keys", err)
	}
	return stale, nil
}

func gameKey(id int64) []byte {
	return strconv.AppendInt([]byte(gamePrefix), id, 10)
}

var _ Backend = (*BadgerBackend)(nil)
