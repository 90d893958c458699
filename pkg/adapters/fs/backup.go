package fs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/schema"
)

const (
	// BackupFileName is the default export file name.
	BackupFileName = "notenest_backup.json"
	// BackupPattern matches exports, including timestamped and YAML ones.
	BackupPattern = "**/notenest_backup*.{json,yaml,yml}"
)

// Backup describes an export found on disk.
type Backup struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Export writes state to path in the format chosen by its extension
// (pretty JSON by default).
func (r *Repository) Export(ctx context.Context, state core.AppState, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		path += ".json"
	}

	var buf bytes.Buffer
	if err := r.ExportTo(&buf, state, filepath.Ext(path)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	r.config.Logger.Debug("state exported", "path", path, "bytes", buf.Len())
	return nil
}

// ExportTo writes state to w using the serializer registered for ext.
func (r *Repository) ExportTo(w io.Writer, state core.AppState, ext string) error {
	s, err := r.serializer(ext)
	if err != nil {
		return err
	}
	data, err := s.Encode(state)
	if err != nil {
		return fmt.Errorf("failed to serialize backup: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Import reads a backup from path. The file must carry notes, tasks and
// settings; a missing mindMaps list is back-filled. Nothing is persisted:
// the caller restores the returned state through the store.
func (r *Repository) Import(ctx context.Context, path string) (core.AppState, error) {
	if err := ctx.Err(); err != nil {
		return core.AppState{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.AppState{}, fmt.Errorf("failed to read backup: %w", err)
	}
	return r.ImportFrom(bytes.NewReader(data), filepath.Ext(path))
}

// ImportFrom reads a backup in the format registered for ext.
func (r *Repository) ImportFrom(rd io.Reader, ext string) (core.AppState, error) {
	s, err := r.serializer(ext)
	if err != nil {
		return core.AppState{}, err
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return core.AppState{}, err
	}
	doc, err := s.Decode(data)
	if err != nil {
		return core.AppState{}, fmt.Errorf("%w: %v", schema.ErrInvalidBackup, err)
	}
	return schema.DecodeBackup(doc)
}

func (r *Repository) serializer(ext string) (Serializer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return serializerFor(r.serializers, "x"+ext)
}

// FindBackups lists files under root matching pattern (BackupPattern when
// empty), newest first.
func FindBackups(root, pattern string) ([]Backup, error) {
	if pattern == "" {
		pattern = BackupPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("failed to search backups: %w", err)
	}

	backups := make([]Backup, 0, len(matches))
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Path:    filepath.Join(root, filepath.FromSlash(m)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Path < backups[j].Path
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// TimestampedBackupName returns BackupFileName with t inserted before the
// extension, so repeated exports do not overwrite each other.
func TimestampedBackupName(t time.Time) string {
	return fmt.Sprintf("notenest_backup_%s.json", t.UTC().Format("20060102T150405Z"))
}
