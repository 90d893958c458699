// Package git snapshots the data directory with the git binary.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLockTimeout bounds how long Lock waits for another process.
const DefaultLockTimeout = 10 * time.Second

// ErrLockTimeout is returned when the lock file could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for git lock")

// Client wraps git command execution with a file-based lock for process safety.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration
	lockPath    string
}

// NewClient creates a git client for workDir. lockPath is relative to workDir.
func NewClient(workDir, lockPath string, logger *slog.Logger) *Client {
	if lockPath == "" {
		lockPath = ".notenest.lock"
	}
	return &Client{
		WorkDir:     workDir,
		Logger:      logger,
		LockTimeout: DefaultLockTimeout,
		lockPath:    lockPath,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires the lock file, polling until LockTimeout elapses.
// The returned function releases it.
func (c *Client) Lock() (func(), error) {
	full := filepath.Join(c.WorkDir, c.lockPath)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("failed to prepare lock dir: %w", err)
	}

	deadline := time.Now().Add(c.LockTimeout)
	for {
		f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() { _ = os.Remove(full) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if c.LockTimeout > 0 && time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, full)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run executes a raw git command in the working directory.
// It does not take the lock; callers serialise through Lock.
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return strings.TrimSpace(output), nil
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo() bool {
	out, err := c.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Init creates a repository. Re-running it is harmless.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add stages files.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(append([]string{"add"}, files...)...)
	return err
}

// Commit records the staged changes. A clean index is not an error.
func (c *Client) Commit(msg string) error {
	clean, err := c.nothingStaged()
	if err != nil {
		return err
	}
	if clean {
		if c.Logger != nil {
			c.Logger.Debug("nothing to commit", "dir", c.WorkDir)
		}
		return nil
	}
	_, err = c.Run("commit", "-m", msg)
	return err
}

func (c *Client) nothingStaged() (bool, error) {
	out, err := c.Run("diff", "--cached", "--name-only")
	if err != nil {
		// No HEAD yet: let commit decide.
		return false, nil
	}
	return out == "", nil
}

// Status returns the porcelain status of the repo.
func (c *Client) Status() (string, error) {
	return c.Run("status", "--porcelain")
}

// Entry is one commit touching a path.
type Entry struct {
	Hash    string
	When    time.Time
	Subject string
}

// Log returns up to limit commits touching path, newest first.
func (c *Client) Log(path string, limit int) ([]Entry, error) {
	args := []string{"log", "--format=%H%x1f%ct%x1f%s"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	args = append(args, "--", path)

	out, err := c.Run(args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

func parseLog(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\x1f", 3)
		if len(parts) != 3 {
			continue
		}
		var secs int64
		if _, err := fmt.Sscanf(parts[1], "%d", &secs); err != nil {
			continue
		}
		entries = append(entries, Entry{
			Hash:    parts[0],
			When:    time.Unix(secs, 0),
			Subject: parts[2],
		})
	}
	return entries
}
