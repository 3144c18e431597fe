// Package store persists undo histories across editor runs.
//
// Each record is keyed by a file's canonical path and carries an xxhash of
// the content the history was recorded against. A history is only handed
// back when the file on disk still hashes the same, since its offsets are
// meaningless for any other text.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"

	"github.com/koru-editor/koru/internal/engine/undo"
	"github.com/koru-editor/koru/internal/logging"
)

var undoBucket = []byte("undo")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("store is closed")

// Bolt is an undo store backed by a bbolt database file.
type Bolt struct {
	db     *bbolt.DB
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Bolt store.
type Option func(*Bolt)

// WithLogger sets the store's logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bolt) {
		b.logger = l
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bolt) {
		b.now = now
	}
}

type record struct {
	Hash     uint64        `json:"hash"`
	Saved    time.Time     `json:"saved"`
	Snapshot undo.Snapshot `json:"snapshot"`
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Bolt, error) {
	b := &Bolt{logger: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open undo store %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(undoBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init undo store %s: %w", path, err)
	}

	b.db = db
	b.logger.Debugf("undo store opened at %s", path)
	return b, nil
}

// Hash returns the content hash records are checked against.
func Hash(content string) uint64 {
	return xxhash.Sum64String(content)
}

// SaveUndo stores snap for the file at path whose current text is content.
func (b *Bolt) SaveUndo(path, content string, snap undo.Snapshot) error {
	if b.db == nil {
		return ErrClosed
	}
	data, err := json.Marshal(record{Hash: Hash(content), Saved: b.now(), Snapshot: snap})
	if err != nil {
		return fmt.Errorf("encode undo for %s: %w", path, err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(undoBucket).Put([]byte(path), data)
	})
}

// LoadUndo returns the stored history for path. The boolean is false when
// nothing is stored or the stored history belongs to different content.
func (b *Bolt) LoadUndo(path, content string) (undo.Snapshot, bool, error) {
	if b.db == nil {
		return undo.Snapshot{}, false, ErrClosed
	}

	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(undoBucket).Get([]byte(path)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || data == nil {
		return undo.Snapshot{}, false, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return undo.Snapshot{}, false, fmt.Errorf("decode undo for %s: %w", path, err)
	}
	if rec.Hash != Hash(content) {
		b.logger.Debugf("undo for %s is stale (saved %s)", path, rec.Saved.Format(time.RFC3339))
		return undo.Snapshot{}, false, nil
	}
	return rec.Snapshot, true, nil
}

// Delete forgets the history for path.
func (b *Bolt) Delete(path string) error {
	if b.db == nil {
		return ErrClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(undoBucket).Delete([]byte(path))
	})
}

// Paths returns every path with a stored history, in key order.
func (b *Bolt) Paths() ([]string, error) {
	if b.db == nil {
		return nil, ErrClosed
	}
	var paths []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(undoBucket).ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	return paths, err
}

// Close closes the database.
func (b *Bolt) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
