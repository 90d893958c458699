package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/notenest/pkg/adapters/fs"
	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/git"
	"github.com/aretw0/notenest/pkg/store"
)

// Init prepares a data directory and returns its repository.
// The uri argument is adapter-specific (a directory path for "fs").
func Init(uri string, opts ...Option) (core.Repository, error) {
	return initialize(uri, buildOptions(opts))
}

func initialize(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	var err error
	switch o.adapter {
	case "fs":
		repo, err = initFS(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS resolves the data path and builds the filesystem repository.
func initFS(path string, o *options) (*fs.Repository, error) {
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}
	tempDir, _ := o.config["temp_dir"].(bool)

	// Read-only access is inherently safe and uses the real path.
	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolvedPath := ResolveDataPath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			o.logger.Debug("dev sandbox bypassed", "path", resolvedPath, "read_only", isReadOnly)
		} else {
			o.logger.Debug("dev sandbox enabled", "path", resolvedPath)
		}
	}

	useFile := true
	if val, ok := o.config["config_file"].(bool); ok {
		useFile = val
	}
	if useFile {
		cfg, err := LoadConfig(resolvedPath)
		if err != nil {
			return nil, err
		}
		cfg.apply(o)
		isReadOnly, _ = o.config["read_only"].(bool)
	}

	autoInit, _ := o.config["auto_init"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	key, _ := o.config["key"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	if systemDir == "" {
		systemDir = fs.DefaultSystemDir
	}

	gitless, explicit := o.config["gitless"].(bool)
	if !explicit {
		gitless = detectGitless(resolvedPath, systemDir, autoInit)
		if gitless && o.logger != nil {
			o.logger.Debug("auto-detected gitless mode", "reason", ".git missing")
		}
	}

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	repo := fs.NewRepository(fs.Config{
		Path:         resolvedPath,
		AutoInit:     autoInit,
		Gitless:      gitless,
		MustExist:    mustExist || (!autoInit && !useTemp),
		ReadOnly:     isReadOnly,
		Logger:       o.logger,
		SystemDir:    systemDir,
		Key:          key,
		ErrorHandler: errorHandler,
	})

	for ext, s := range o.serializers {
		serializer, ok := s.(fs.Serializer)
		if !ok {
			return nil, fmt.Errorf("serializer for %s must implement fs.Serializer", ext)
		}
		repo.RegisterSerializer(ext, serializer)
	}
	return repo, nil
}

// detectGitless picks the versioning mode for a directory nobody configured:
// an existing .git means versioned; an existing system dir without .git means
// a gitless directory; a fresh directory is versioned when git is available.
func detectGitless(path, systemDir string, autoInit bool) bool {
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return false
	}
	if !autoInit {
		return true
	}
	if _, err := os.Stat(filepath.Join(path, systemDir)); err == nil {
		return true
	}
	return !git.IsInstalled()
}

type exporter interface {
	Export(ctx context.Context, state core.AppState, path string) error
	Import(ctx context.Context, path string) (core.AppState, error)
}

type historian interface {
	History(ctx context.Context, limit int) ([]git.Entry, error)
}

// backupCodec returns the repository itself when it can export, otherwise a
// detached filesystem codec.
func backupCodec(st *store.Store) exporter {
	if e, ok := st.Repository().(exporter); ok {
		return e
	}
	return fs.NewRepository(fs.Config{Gitless: true, ReadOnly: true})
}

// Backup exports the current state of st to path.
func Backup(ctx context.Context, st *store.Store, path string) error {
	return backupCodec(st).Export(ctx, st.Snapshot(), path)
}

// Restore imports path and replaces the state of st with it. On any import
// error the state is left untouched.
func Restore(ctx context.Context, st *store.Store, path string) (core.AppState, error) {
	state, err := backupCodec(st).Import(ctx, path)
	if err != nil {
		return core.AppState{}, err
	}
	return st.Restore(ctx, state), nil
}

// History lists the versioned snapshots of the state blob, newest first.
func History(ctx context.Context, st *store.Store, limit int) ([]git.Entry, error) {
	h, ok := st.Repository().(historian)
	if !ok {
		return nil, fmt.Errorf("repository does not keep history")
	}
	return h.History(ctx, limit)
}
