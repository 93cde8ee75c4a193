package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path      string    `json:"path"`
	Statuses  int       `json:"statuses"`
	Qualities int       `json:"qualities"`
	Saves     int       `json:"saves"`
	Updated   time.Time `json:"updated"`
}

// State implements introspection.Introspectable.
func (s *StatusStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:      s.Path,
		Statuses:  len(s.state.Statuses),
		Qualities: len(s.state.Qualities),
		Saves:     s.saves,
		Updated:   s.state.Updated,
	}
}

// ComponentType implements introspection.Component.
func (s *StatusStore) ComponentType() string {
	return "json-store"
}

var _ introspection.Introspectable = (*StatusStore)(nil)
var _ introspection.Component = (*StatusStore)(nil)
