package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// statusFile is the on-disk layout of the review status file.
type statusFile struct {
	Statuses  map[string]core.Status      `json:"statuses"`
	Qualities map[string]core.QualityInfo `json:"qualities"`
	Updated   time.Time                   `json:"updated"`
}

// StatusStore persists review state in a single JSON file. Every mutation
// rewrites the file atomically while holding the store lock, so concurrent
// requests in one process never lose each other's writes.
type StatusStore struct {
	Path   string
	logger *slog.Logger

	mu    sync.RWMutex
	state statusFile
	saves int
}

// NewStatusStore opens (or lazily creates) the status file at path.
// A missing or corrupted file starts as an empty store.
func NewStatusStore(path string, logger *slog.Logger) (*StatusStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StatusStore{
		Path:   path,
		logger: logger,
		state: statusFile{
			Statuses:  make(map[string]core.Status),
			Qualities: make(map[string]core.QualityInfo),
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StatusStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read status file: %w", err)
	}

	var loaded statusFile
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("status file corrupted, starting fresh", "path", s.Path, "error", err)
		return nil
	}
	if loaded.Statuses != nil {
		s.state.Statuses = loaded.Statuses
	}
	if loaded.Qualities != nil {
		s.state.Qualities = loaded.Qualities
	}
	s.state.Updated = loaded.Updated
	return nil
}

// save must be called with the write lock held.
func (s *StatusStore) save() error {
	s.state.Updated = time.Now()
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	if err := WriteFileAtomic(s.Path, data, 0644); err != nil {
		return err
	}
	s.saves++
	return nil
}

// Status implements core.StatusStore.
func (s *StatusStore) Status(ctx context.Context, id string) (core.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.state.Statuses[id]; ok && st != "" {
		return st, nil
	}
	return core.StatusPending, nil
}

// SetStatus implements core.StatusStore.
func (s *StatusStore) SetStatus(ctx context.Context, id string, st core.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Statuses[id] = st
	return s.save()
}

// Quality implements core.StatusStore.
func (s *StatusStore) Quality(ctx context.Context, id string) (core.QualityInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.state.Qualities[id]
	return q, ok, nil
}

// SetQuality implements core.StatusStore.
func (s *StatusStore) SetQuality(ctx context.Context, id string, q core.QualityInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Qualities[id] = q
	return s.save()
}

// Snapshot implements core.StatusStore.
func (s *StatusStore) Snapshot(ctx context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := core.NewSnapshot()
	for k, v := range s.state.Statuses {
		snap.Statuses[k] = v
	}
	for k, v := range s.state.Qualities {
		snap.Qualities[k] = v
	}
	return snap, nil
}

// Close implements core.StatusStore. Every mutation is already on disk.
func (s *StatusStore) Close() error {
	return nil
}

var _ core.StatusStore = (*StatusStore)(nil)
