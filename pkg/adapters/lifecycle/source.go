// Package lifecycle bridges repository change notifications into the
// lifecycle event model, optionally reloading a store on every change.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/store"
)

// Change is emitted for every external change of the persisted state.
type Change struct {
	core.Event
	Reloaded bool
	Err      error
}

// String implements lifecycle.Event.
func (c Change) String() string {
	switch {
	case c.Err != nil:
		return fmt.Sprintf("%s (reload failed: %v)", c.Event, c.Err)
	case c.Reloaded:
		return fmt.Sprintf("%s (reloaded)", c.Event)
	}
	return c.Event.String()
}

// Option configures a source.
type Option func(*stateSource)

// WithReload runs fn before each change is forwarded.
func WithReload(fn func(ctx context.Context) error) Option {
	return func(s *stateSource) { s.reload = fn }
}

// ReloadStore reloads st from its repository on every change. Deletions are
// forwarded without a reload so the in-memory state survives them.
func ReloadStore(st *store.Store) Option {
	return WithReload(func(ctx context.Context) error {
		_, err := st.Load(ctx)
		return err
	})
}

type stateSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	reload func(ctx context.Context) error
}

// NewSource creates a lifecycle.Source that emits a Change per repository event.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &stateSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *stateSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *stateSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				change := s.apply(ctx, e)
				select {
				case s.out <- change:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *stateSource) apply(ctx context.Context, e core.Event) Change {
	change := Change{Event: e}
	if s.reload == nil || e.Type == core.EventDelete {
		return change
	}
	if err := s.reload(ctx); err != nil {
		change.Err = err
		return change
	}
	change.Reloaded = true
	return change
}
