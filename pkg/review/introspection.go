package review

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	ScriptsDir string `json:"scripts_dir"`
	Scripts    int    `json:"scripts"`
	Core       any    `json:"core"`
	Linter     bool   `json:"linter"`
	Fixer      bool   `json:"fixer"`
	Runner     bool   `json:"runner"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	return ServiceState{
		ScriptsDir: s.catalog.Root(),
		Scripts:    s.catalog.Len(),
		Core:       s.core.State(),
		Linter:     s.linter != nil,
		Fixer:      s.fixer != nil,
		Runner:     s.runner != nil,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "review"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
