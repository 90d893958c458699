package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, filepath.Join(".notenest", "git.lock"), nil)

	unlock, err := client.Lock()
	require.NoError(t, err)

	lockPath := filepath.Join(tmpDir, ".notenest", "git.lock")
	assert.FileExists(t, lockPath)

	t.Run("contention times out", func(t *testing.T) {
		other := NewClient(tmpDir, filepath.Join(".notenest", "git.lock"), nil)
		other.LockTimeout = 30 * time.Millisecond
		_, err := other.Lock()
		assert.ErrorIs(t, err, ErrLockTimeout)
	})

	unlock()
	assert.NoFileExists(t, lockPath)
}

func TestParseLog(t *testing.T) {
	out := "abc\x1f1700000000\x1ffeat(tasks): add \"Buy milk\"\nbroken line\ndef\x1f1700000100\x1fchore(settings): update settings"
	entries := parseLog(out)

	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].Hash)
	assert.Equal(t, int64(1700000000), entries[0].When.Unix())
	assert.Equal(t, `feat(tasks): add "Buy milk"`, entries[0].Subject)
	assert.Equal(t, "chore(settings): update settings", entries[1].Subject)
}

func TestClient_InitCommitLog(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	require.NoError(t, client.Init())
	assert.DirExists(t, filepath.Join(tmpDir, ".git"))
	assert.True(t, client.IsRepo())

	_, err := client.Run("config", "user.email", "test@example.com")
	require.NoError(t, err)
	_, err = client.Run("config", "user.name", "Test")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "noteNestState.json"), []byte("{}"), 0644))
	require.NoError(t, client.Add("noteNestState.json"))
	require.NoError(t, client.Commit("chore: first"))

	// Nothing staged: no error, no new commit.
	require.NoError(t, client.Commit("chore: empty"))

	entries, err := client.Log("noteNestState.json", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chore: first", entries[0].Subject)

	status, err := client.Status()
	require.NoError(t, err)
	assert.Empty(t, status)
}
