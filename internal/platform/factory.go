package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/store"
)

// Open prepares the data directory and returns a store loaded from it.
//
//	st, err := notenest.Open("./notes", notenest.WithAutoInit(true))
func Open(ctx context.Context, uri string, opts ...Option) (*store.Store, error) {
	o := buildOptions(opts)

	repo, err := initialize(uri, o)
	if err != nil {
		return nil, err
	}

	storeOpts := []store.Option{store.WithRepository(repo)}
	if o.logger != nil {
		storeOpts = append(storeOpts, store.WithLogger(o.logger))
	}
	if o.clock != nil {
		storeOpts = append(storeOpts, store.WithClock(o.clock))
	}

	st := store.New(core.DefaultState(), storeOpts...)
	if _, err := st.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return st, nil
}
