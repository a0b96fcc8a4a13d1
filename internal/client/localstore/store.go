// Package localstore persists per-device preferences: the dashboard layout,
// genre choices, D-Days, to-dos and the theme. Values are JSON under fixed
// keys in a LevelDB database.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seckatie/moohub/internal/core"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Storage keys.
const (
	KeyDashboard    = "moohub-dashboard-config"
	KeyMusicGenre   = "moohub-music-genre"
	KeyYouTubeGenre = "moohub-youtube-genre"
	KeyDDays        = "moohub-ddays"
	KeyTodos        = "moohub-todos"
	KeyTodosReset   = "moohub-todos-last-reset"
	KeyTheme        = "moohub-theme"
)

type Store struct {
	db  *leveldb.DB
	now func() time.Time
}

// Open opens (or creates) the database in dir, recovering it if the
// manifest is corrupted.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil && lerrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", dir, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// New opens a store over an arbitrary storage, e.g. storage.NewMemStorage().
func New(stor storage.Storage) (*Store, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// get decodes the value under key into v. It reports false when the key is
// missing.
func (s *Store) get(key string, v any) (bool, error) {
	raw, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.db.Put([]byte(key), raw, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// putBatch writes several keys atomically.
func (s *Store) putBatch(values map[string]any) error {
	batch := new(leveldb.Batch)
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		batch.Put([]byte(key), raw)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

func (s *Store) today() string {
	return s.now().UTC().Format(core.DayBucketLayout)
}
