package notenest

import (
	"context"
	"log/slog"

	"github.com/aretw0/notenest/internal/platform"
	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/git"
	"github.com/aretw0/notenest/pkg/store"
)

// --- Types ---

// State is the whole application state tree.
type State = core.AppState

// Store owns the state tree and persists it after every change.
type Store = store.Store

// Action is a state transition understood by the store.
type Action = store.Action

// --- Configuration ---

// Option defines a functional option for configuring NoteNest.
type Option = platform.Option

// WithAutoInit creates the data directory (and git repository) when missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables git snapshots of the state blob.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the store and the repository.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock injects the clock driving timestamps and ids.
func WithClock(clock core.Clock) Option {
	return platform.WithClock(clock)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir sets the hidden directory name (default ".notenest").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithKey sets the storage key of the state blob (default "noteNestState").
func WithKey(key string) Option {
	return platform.WithKey(key)
}

// WithReadOnly refuses every write; changes live in memory only.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox used under `go run` / `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithConfigFile controls whether notenest.yaml is read.
func WithConfigFile(enabled bool) Option {
	return platform.WithConfigFile(enabled)
}

// WithSerializer registers an export/import serializer (fs.Serializer) for ext.
func WithSerializer(ext string, s any) Option {
	return platform.WithSerializer(ext, s)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// Open prepares the data directory at path and returns a loaded store.
func Open(ctx context.Context, path string, opts ...Option) (*store.Store, error) {
	return platform.Open(ctx, path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Operations ---

// Backup exports the current state to path (JSON, or YAML by extension).
func Backup(ctx context.Context, st *store.Store, path string) error {
	return platform.Backup(ctx, st, path)
}

// Restore replaces the state with the backup at path.
func Restore(ctx context.Context, st *store.Store, path string) (State, error) {
	return platform.Restore(ctx, st, path)
}

// History lists the git snapshots of the state blob, newest first.
func History(ctx context.Context, st *store.Store, limit int) ([]git.Entry, error) {
	return platform.History(ctx, st, limit)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data directory based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards from startDir for a data directory marker.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat     = store.CommitTypeFeat
	CommitTypeFix      = store.CommitTypeFix
	CommitTypeDocs     = store.CommitTypeDocs
	CommitTypeRefactor = store.CommitTypeRefactor
	CommitTypeChore    = store.CommitTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return store.FormatChangeReason(ctype, scope, subject, body)
}

// AppendFooter appends the NoteNest footer to an arbitrary message.
func AppendFooter(msg string) string {
	return store.AppendFooter(msg)
}

// WithChangeReason annotates ctx so the next persisted change uses reason
// as its commit message.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return core.WithChangeReason(ctx, reason)
}
