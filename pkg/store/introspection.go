package store

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes         int        `json:"notes"`
	Tasks         int        `json:"tasks"`
	MindMaps      int        `json:"mind_maps"`
	LockEnabled   bool       `json:"lock_enabled"`
	Subscribers   int        `json:"subscribers"`
	Dispatched    uint64     `json:"dispatched"`
	Saves         uint64     `json:"saves"`
	SaveFailures  uint64     `json:"save_failures"`
	LastSave      *time.Time `json:"last_save,omitempty"`
	LastSaveError string     `json:"last_save_error,omitempty"`
	Persistent    bool       `json:"persistent"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	st := StoreState{
		Notes:       len(s.state.Notes),
		Tasks:       len(s.state.Tasks),
		MindMaps:    len(s.state.MindMaps),
		LockEnabled: s.state.Settings.LockEnabled,
		Subscribers: len(s.listeners),
		Dispatched:  s.dispatched,
		Persistent:  s.repo != nil,
	}
	s.mu.Unlock()

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	st.Saves = s.saves
	st.SaveFailures = s.saveFailures
	st.LastSave = s.lastSave
	st.LastSaveError = s.lastSaveErr
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
