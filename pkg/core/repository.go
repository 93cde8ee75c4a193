package core

import "context"

// StatusStore defines the contract for persisting review state.
// Adhering to this interface keeps the review service independent of the
// underlying storage (embedded KV, JSON file, memory).
type StatusStore interface {
	// Status returns the recorded status of a script, or StatusPending.
	Status(ctx context.Context, id string) (Status, error)

	// SetStatus records a review decision.
	SetStatus(ctx context.Context, id string, status Status) error

	// Quality returns the recorded lint quality and whether one exists.
	Quality(ctx context.Context, id string) (QualityInfo, bool, error)

	// SetQuality records the result of a lint run.
	SetQuality(ctx context.Context, id string, q QualityInfo) error

	// Snapshot returns every recorded status and quality.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Close releases the underlying storage.
	Close() error
}

// Snapshot is a point-in-time copy of all review state.
type Snapshot struct {
	Statuses  map[string]Status      `json:"statuses"`
	Qualities map[string]QualityInfo `json:"qualities"`
}

// NewSnapshot returns an empty snapshot with allocated maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		Statuses:  make(map[string]Status),
		Qualities: make(map[string]QualityInfo),
	}
}

// StatusOf returns the status for id, defaulting to pending.
func (s Snapshot) StatusOf(id string) Status {
	if st, ok := s.Statuses[id]; ok && st != "" {
		return st
	}
	return StatusPending
}

// QualityOf returns the quality record for id, defaulting to unknown.
func (s Snapshot) QualityOf(id string) QualityInfo {
	if q, ok := s.Qualities[id]; ok {
		return q
	}
	return QualityInfo{Quality: QualityUnknown}
}
