package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/git"
	"github.com/aretw0/notenest/pkg/schema"
)

const (
	// DefaultSystemDir holds the lock file and marks a data directory.
	DefaultSystemDir = ".notenest"
	// DefaultKey is the storage key of the state blob.
	DefaultKey = "noteNestState"
)

// Repository implements core.Repository as one JSON blob in a directory,
// optionally snapshotted with git after every save.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	serializers   map[string]Serializer
	readOnly      bool
	watcherActive bool
	lastDigest    [sha256.Size]byte
	lastSave      *time.Time
	lastLoad      *time.Time
	lastReconcile *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	AutoInit     bool
	Gitless      bool
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".notenest"
	Key          string      // blob name without extension, e.g. "noteNestState"
	ErrorHandler func(error) // receives watcher failures
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Key == "" {
		config.Key = DefaultKey
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:        config.Path,
		git:         git.NewClient(config.Path, filepath.Join(config.SystemDir, "git.lock"), config.Logger),
		config:      config,
		serializers: DefaultSerializers(),
		readOnly:    config.ReadOnly,
	}
}

// RegisterSerializer adds or replaces the serializer used for ext in
// Export and Import.
func (r *Repository) RegisterSerializer(ext string, s Serializer) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[strings.ToLower(ext)] = s
}

// StatePath is the location of the state blob.
func (r *Repository) StatePath() string {
	return filepath.Join(r.Path, r.config.Key+".json")
}

// IsReadOnly reports whether writes are refused.
func (r *Repository) IsReadOnly() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readOnly
}

// Gitless reports whether saves skip version control.
func (r *Repository) Gitless() bool { return r.config.Gitless }

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", r.Path)
		}
	}
	if r.readOnly {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(r.Path, r.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if r.config.Gitless {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod && wasNewRepo {
		if err := r.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(fmt.Sprintf("chore: configure %s ignore", r.config.SystemDir)); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	entry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == entry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(entry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads the state blob. A missing blob is not an error: the default
// state is returned with found=false.
func (r *Repository) Load(ctx context.Context) (core.AppState, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.AppState{}, false, err
	}

	data, err := os.ReadFile(r.StatePath())
	if errors.Is(err, os.ErrNotExist) {
		return core.DefaultState(), false, nil
	}
	if err != nil {
		return core.AppState{}, false, fmt.Errorf("failed to read state: %w", err)
	}

	state, err := schema.DecodeJSON(data)
	if err != nil {
		return core.AppState{}, false, fmt.Errorf("failed to decode %s: %w", r.StatePath(), err)
	}

	r.mu.Lock()
	r.lastDigest = sha256.Sum256(data)
	now := time.Now()
	r.lastLoad = &now
	r.mu.Unlock()

	return state, true, nil
}

// Save replaces the state blob and, unless gitless, commits it using the
// change reason carried by ctx.
//
// Workflow:
//  1. Refuse in read-only mode.
//  2. Serialize compact JSON and write atomically.
//  3. (If git enabled) 'git add' and 'git commit' under the lock.
func (r *Repository) Save(ctx context.Context, state core.AppState) error {
	if r.IsReadOnly() {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := NewJSONSerializer(false).Encode(state)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// Record the digest before the rename lands so our own write never
	// surfaces as an external change.
	r.mu.Lock()
	r.lastDigest = sha256.Sum256(data)
	r.mu.Unlock()

	if err := writeFileAtomic(r.StatePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	r.mu.Lock()
	now := time.Now()
	r.lastSave = &now
	r.mu.Unlock()

	if r.config.Gitless {
		return nil
	}

	unlock, err := r.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	filename := filepath.Base(r.StatePath())
	if err := r.git.Add(filename); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}

	msg := "update " + r.config.Key
	if reason, ok := core.ChangeReason(ctx); ok {
		msg = reason
	}
	if err := r.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// History lists the commits that touched the state blob, newest first.
func (r *Repository) History(ctx context.Context, limit int) ([]git.Entry, error) {
	if r.config.Gitless {
		return nil, fmt.Errorf("history is unavailable in gitless mode")
	}
	return r.git.Log(filepath.Base(r.StatePath()), limit)
}

// changedSince reports whether the blob on disk differs from the last one
// this repository read or wrote.
func (r *Repository) changedSince() (bool, error) {
	data, err := os.ReadFile(r.StatePath())
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(data)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return sum != r.lastDigest, nil
}

// acknowledge records the blob currently on disk as known.
func (r *Repository) acknowledge() {
	data, err := os.ReadFile(r.StatePath())
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastDigest = sha256.Sum256(data)
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
