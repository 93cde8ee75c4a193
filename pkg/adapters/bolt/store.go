// Package bolt implements core.StatusStore on top of an embedded bbolt
// database. Each mutation runs in its own write transaction, so concurrent
// requests from the review server are serialized by the database instead of
// racing on a whole-file rewrite.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/introspection"
	bbolt "go.etcd.io/bbolt"

	"github.com/aretw0/ahkcurate/pkg/core"
)

var (
	bucketStatuses  = []byte("statuses")
	bucketQualities = []byte("qualities")
)

// Store is a bbolt-backed review status store.
type Store struct {
	Path   string
	db     *bbolt.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open status db %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketStatuses, bucketQualities} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return &Store{Path: path, db: db, logger: logger}, nil
}

// Status implements core.StatusStore.
func (s *Store) Status(ctx context.Context, id string) (core.Status, error) {
	st := core.StatusPending
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketStatuses).Get([]byte(id)); len(v) > 0 {
			st = core.Status(v)
		}
		return nil
	})
	return st, err
}

// SetStatus implements core.StatusStore.
func (s *Store) SetStatus(ctx context.Context, id string, st core.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketStatuses).Put([]byte(id), []byte(st))
	})
}

// Quality implements core.StatusStore.
func (s *Store) Quality(ctx context.Context, id string) (core.QualityInfo, bool, error) {
	var (
		q     core.QualityInfo
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketQualities).Get([]byte(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &q)
	})
	if err != nil {
		return core.QualityInfo{}, false, fmt.Errorf("failed to decode quality for %s: %w", id, err)
	}
	return q, found, nil
}

// SetQuality implements core.StatusStore.
func (s *Store) SetQuality(ctx context.Context, id string, q core.QualityInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketQualities).Put([]byte(id), data)
	})
}

// Snapshot implements core.StatusStore.
func (s *Store) Snapshot(ctx context.Context) (core.Snapshot, error) {
	snap := core.NewSnapshot()
	err := s.db.View(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketStatuses).ForEach(func(k, v []byte) error {
			snap.Statuses[string(k)] = core.Status(v)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketQualities).ForEach(func(k, v []byte) error {
			var q core.QualityInfo
			if err := json.Unmarshal(v, &q); err != nil {
				s.logger.Warn("skipping undecodable quality", "id", string(k), "error", err)
				return nil
			}
			snap.Qualities[string(k)] = q
			return nil
		})
	})
	return snap, err
}

// Import writes every entry of snap in a single transaction.
func (s *Store) Import(ctx context.Context, snap core.Snapshot) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		sb := tx.Bucket(bucketStatuses)
		for id, st := range snap.Statuses {
			if err := sb.Put([]byte(id), []byte(st)); err != nil {
				return err
			}
		}
		qb := tx.Bucket(bucketQualities)
		for id, q := range snap.Qualities {
			data, err := json.Marshal(q)
			if err != nil {
				return err
			}
			if err := qb.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Empty reports whether the store holds no review state yet.
func (s *Store) Empty() (bool, error) {
	empty := true
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketStatuses, bucketQualities} {
			if k, _ := tx.Bucket(name).Cursor().First(); k != nil {
				empty = false
			}
		}
		return nil
	})
	return empty, err
}

// Close implements core.StatusStore.
func (s *Store) Close() error {
	return s.db.Close()
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path      string `json:"path"`
	Statuses  int    `json:"statuses"`
	Qualities int    `json:"qualities"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	st := StoreState{Path: s.Path}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		st.Statuses = tx.Bucket(bucketStatuses).Stats().KeyN
		st.Qualities = tx.Bucket(bucketQualities).Stats().KeyN
		return nil
	})
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "bolt-store"
}

var (
	_ core.StatusStore             = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
