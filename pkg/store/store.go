// Package store owns the application state tree.
//
// Every change goes through Dispatch, which runs the pure reducer, publishes
// the new snapshot to subscribers and hands it to the repository. Persistence
// failures never reach the caller: they are logged and counted, and the
// in-memory state stays authoritative.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/notenest/pkg/core"
)

// Listener receives every new state snapshot.
type Listener func(core.AppState)

// Store is the single owner of the state tree.
type Store struct {
	mu        sync.Mutex
	persistMu sync.Mutex
	statsMu   sync.Mutex

	state  core.AppState
	env    Env
	repo   core.Repository
	logger *slog.Logger

	listeners map[int]Listener
	nextID    int

	dispatched   uint64
	saves        uint64
	saveFailures uint64
	lastSave     *time.Time
	lastSaveErr  string
}

// Option configures a Store.
type Option func(*Store)

// WithRepository sets where snapshots are persisted.
func WithRepository(repo core.Repository) Option {
	return func(s *Store) { s.repo = repo }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithEnv sets the reducer environment (clock and id generator).
func WithEnv(env Env) Option {
	return func(s *Store) { s.env = env }
}

// WithClock is shorthand for WithEnv(NewEnv(clock)).
func WithClock(clock core.Clock) Option {
	return WithEnv(NewEnv(clock))
}

// New creates a store holding initial.
func New(initial core.AppState, opts ...Option) *Store {
	s := &Store{
		state:     initial.Normalize(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.env = s.env.normalize()
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Snapshot returns the current state tree.
func (s *Store) Snapshot() core.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Env returns the reducer environment, so callers can mint ids from the same
// generator as the reducer.
func (s *Store) Env() Env { return s.env }

// Repository returns the configured repository (nil when in-memory only).
func (s *Store) Repository() core.Repository { return s.repo }

// Subscribe registers fn for every subsequent snapshot and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Dispatch applies action and returns the resulting snapshot. Actions that
// change nothing are neither persisted nor published.
func (s *Store) Dispatch(ctx context.Context, action Action) core.AppState {
	if action == nil {
		return s.Snapshot()
	}

	s.mu.Lock()
	next, changed := reduce(s.state, action, s.env)
	if !changed {
		s.mu.Unlock()
		return next
	}
	s.state = next
	s.dispatched++
	listeners := s.snapshotListeners()
	// Hand over to the persist lock before releasing the state lock so
	// snapshots reach the repository in dispatch order.
	s.persistMu.Lock()
	s.mu.Unlock()

	if _, ok := core.ChangeReason(ctx); !ok {
		ctx = core.WithChangeReason(ctx, Describe(action))
	}
	s.persist(ctx, next)
	s.persistMu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Load replaces the state with the repository's, or with the default state
// when nothing has been persisted. Nothing is written back.
func (s *Store) Load(ctx context.Context) (bool, error) {
	state := core.DefaultState()
	found := false
	if s.repo != nil {
		loaded, ok, err := s.repo.Load(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to load state: %w", err)
		}
		state, found = loaded, ok
	}

	state = state.Normalize()
	s.mu.Lock()
	s.state = state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return found, nil
}

// Restore replaces the whole tree with state and persists it.
func (s *Store) Restore(ctx context.Context, state core.AppState) core.AppState {
	if _, ok := core.ChangeReason(ctx); !ok {
		ctx = core.WithChangeReason(ctx, FormatChangeReason(CommitTypeChore, "backup", "restore backup", ""))
	}
	return s.Dispatch(ctx, SetState{State: state})
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (s *Store) persist(ctx context.Context, state core.AppState) {
	if s.repo == nil {
		return
	}

	err := s.repo.Save(ctx, state)

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if err != nil {
		s.saveFailures++
		s.lastSaveErr = err.Error()
		s.logger.Error("failed to persist state", "error", err)
		return
	}
	now := time.Now()
	s.saves++
	s.lastSave = &now
	s.lastSaveErr = ""
}
