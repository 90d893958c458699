package core

import (
	"context"
	"fmt"
)

// Repository defines the contract for loading and saving the whole state tree.
// Adhering to this interface keeps the store independent of the underlying
// key-value mechanism (a file, an embedded database, a browser bridge, etc).
type Repository interface {
	// Load returns the persisted state. The boolean is false when nothing
	// has been persisted yet; the returned state is then DefaultState().
	Load(ctx context.Context) (AppState, bool, error)

	// Save replaces the persisted state wholesale.
	Save(ctx context.Context, state AppState) error

	// Initialize ensures the underlying storage is ready (directories, versioning).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by repositories that can report external changes
// to the persisted state (another process saving, a restore from disk).
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

type contextKey string

// ChangeReasonKey is the context key carrying a human readable reason for a
// Save (used as the commit message by versioned repositories).
const ChangeReasonKey contextKey = "change_reason"

// WithChangeReason returns ctx annotated with reason.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, ChangeReasonKey, reason)
}

// ChangeReason extracts the reason stored by WithChangeReason.
func ChangeReason(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ChangeReasonKey).(string)
	return v, ok && v != ""
}

// EventType represents the type of change observed on the persisted state.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of the persisted state.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
