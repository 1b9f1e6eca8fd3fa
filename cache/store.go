package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Dosada05/scorebridge/models"
	"go.etcd.io/bbolt"
)

const SnapshotsBucket = "tournament_snapshots"

// Snapshot is the last good fetch of a watched tournament.
type Snapshot struct {
	Key     string                    `json:"key"`
	OwnerID int                       `json:"owner_id"`
	SavedAt time.Time                 `json:"saved_at"`
	Context *models.TournamentContext `json:"context"`
}

type Store interface {
	Get(key string) (*Snapshot, bool, error)
	Put(snapshot *Snapshot) error
	Delete(key string) error
	ForEach(fn func(snapshot *Snapshot) error) error
	Close() error
}

// BoltStore persists snapshots in a single BoltDB file.
type BoltStore struct {
	db     *bbolt.DB
	logger *slog.Logger
}

func NewBoltStore(dbPath string, logger *slog.Logger) (*BoltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(SnapshotsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

func (s *BoltStore) Get(key string) (*Snapshot, bool, error) {
	var snapshot *Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SnapshotsBucket))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		snapshot = &Snapshot{}
		return json.Unmarshal(data, snapshot)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	return snapshot, snapshot != nil, nil
}

func (s *BoltStore) Put(snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", snapshot.Key, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SnapshotsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", SnapshotsBucket)
		}
		return bucket.Put([]byte(snapshot.Key), data)
	})
}

func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SnapshotsBucket))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// ForEach skips entries that no longer decode instead of failing the whole scan.
func (s *BoltStore) ForEach(fn func(snapshot *Snapshot) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(SnapshotsBucket))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var snapshot Snapshot
			if err := json.Unmarshal(v, &snapshot); err != nil {
				s.logger.Warn("skipping unreadable snapshot", slog.String("key", string(k)), slog.Any("error", err))
				return nil
			}
			return fn(&snapshot)
		})
	})
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
