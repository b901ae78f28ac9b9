package jvmtarget

import (
	"git.home.luguber.info/inful/buildlayout/internal/config"
	"git.home.luguber.info/inful/buildlayout/internal/util/sets"
)

// Selector assigns a CompilerTarget to project names. It is read-only after
// construction and safe for concurrent use.
type Selector struct {
	legacy  sets.Set[string]
	version string
	levels  Levels
}

// NewSelector builds a selector for the given allow-list. Names are matched
// exactly and case-sensitively.
func NewSelector(version string, legacy []string, levels Levels) *Selector {
	return &Selector{
		legacy:  sets.New(legacy...),
		version: version,
		levels:  levels,
	}
}

// FromConfig builds a selector from the allow_list and compiler blocks.
func FromConfig(cfg *config.Config) *Selector {
	return NewSelector(cfg.AllowList.Version, cfg.AllowList.Legacy, Levels{
		Legacy:  cfg.Compiler.LegacyTarget,
		Current: cfg.Compiler.CurrentTarget,
	})
}

// Select returns Legacy iff name is on the allow-list, otherwise Current.
func (s *Selector) Select(name string) CompilerTarget {
	if s.legacy.Has(name) {
		return Legacy
	}
	return Current
}

// JVMTarget returns the JVM level string selected for name.
func (s *Selector) JVMTarget(name string) string {
	return s.levels.For(s.Select(name))
}

// Version identifies the allow-list revision decisions were made against.
func (s *Selector) Version() string { return s.version }

// Levels returns the JVM level mapping.
func (s *Selector) Levels() Levels { return s.levels }

// AllowList returns the legacy names in sorted order.
func (s *Selector) AllowList() []string { return sets.Sorted(s.legacy) }
