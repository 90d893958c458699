package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notenest/pkg/core"
)

// resetFlags restores every flag of cmd and its children to its default,
// since the command tree and its flag variables are package globals.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// cli runs notenest against a gitless data directory.
type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv(PINEnv, "")
	return &cli{t: t, dir: filepath.Join(t.TempDir(), "data")}
}

func (c *cli) runWithInput(stdin string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--dir", c.dir, "--nover"}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) run(args ...string) string {
	c.t.Helper()
	out, err := c.runWithInput("", args...)
	require.NoError(c.t, err, "notenest %s", strings.Join(args, " "))
	return out
}

func (c *cli) state() core.AppState {
	c.t.Helper()
	data, err := os.ReadFile(filepath.Join(c.dir, "noteNestState.json"))
	require.NoError(c.t, err)
	var state core.AppState
	require.NoError(c.t, json.Unmarshal(data, &state))
	return state
}

func TestNoteCommands(t *testing.T) {
	c := newCLI(t)

	id := strings.TrimSpace(c.run("note", "add", "--title", "Groceries", "--content", "<p>milk &amp; eggs</p>", "--folder", "home"))
	require.True(t, strings.HasPrefix(id, core.PrefixNote+"_"), id)

	list := c.run("note", "list")
	assert.Contains(t, list, "Groceries")

	c.run("note", "edit", id, "--title", "Shopping")
	show := c.run("note", "show", id)
	assert.Contains(t, show, "# Shopping")
	assert.Contains(t, show, "folder: home")

	note, ok := c.state().FindNote(id)
	require.True(t, ok)
	assert.Equal(t, "<p>milk &amp; eggs</p>", note.Content, "content untouched by a title edit")

	t.Run("Search", func(t *testing.T) {
		assert.Contains(t, c.run("note", "list", "--search", "shop"), "Shopping")
		assert.NotContains(t, c.run("note", "list", "--search", "nothing"), "Shopping")
		assert.Contains(t, c.run("note", "list", "--search", "hpng", "--fuzzy"), "Shopping")
	})

	t.Run("DeclinedDeleteKeepsNote", func(t *testing.T) {
		_, err := c.runWithInput("n\n", "note", "delete", id)
		require.NoError(t, err)
		_, ok := c.state().FindNote(id)
		assert.True(t, ok)
	})

	c.run("note", "delete", id, "--yes")
	assert.Empty(t, c.state().Notes)

	_, err := c.runWithInput("", "note", "show", id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNoteAttachments(t *testing.T) {
	c := newCLI(t)
	id := strings.TrimSpace(c.run("note", "add", "--title", "Sketch"))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	file := filepath.Join(t.TempDir(), "sketch.png")
	require.NoError(t, os.WriteFile(file, png, 0644))

	attID := strings.TrimSpace(c.run("note", "attach", id, file))
	note, _ := c.state().FindNote(id)
	require.Len(t, note.Attachments, 1)
	assert.Equal(t, attID, note.Attachments[0].ID)
	assert.Equal(t, core.AttachmentImage, note.Attachments[0].Type)
	assert.True(t, strings.HasPrefix(note.Attachments[0].Data, "data:image/png;base64,"))

	c.run("note", "detach", id, attID)
	note, _ = c.state().FindNote(id)
	assert.Empty(t, note.Attachments)

	_, err := c.runWithInput("", "note", "detach", id, attID)
	assert.ErrorContains(t, err, "not found")
}

func TestTaskCommands(t *testing.T) {
	c := newCLI(t)

	id := strings.TrimSpace(c.run("task", "add", "Buy", "milk"))
	other := strings.TrimSpace(c.run("task", "add", "Call", "mom"))
	require.NotEqual(t, id, other)

	assert.Contains(t, c.run("task", "done", id), "[x] Buy milk")
	subID := strings.TrimSpace(c.run("task", "subtask", other, "find", "number"))
	c.run("task", "subtask-done", other, subID)

	out := c.run("task", "list", "--filter", "active", "--json")
	var active []core.Task
	require.NoError(t, json.Unmarshal([]byte(out), &active))
	require.Len(t, active, 1)
	assert.Equal(t, other, active[0].ID)
	require.Len(t, active[0].Subtasks, 1)
	assert.True(t, active[0].Subtasks[0].Completed)

	list := c.run("task", "list")
	assert.Less(t, strings.Index(list, "Call mom"), strings.Index(list, "Buy milk"), "active tasks first")

	c.run("task", "remind", other, "--at", "2026-10-20 09:30", "--high")
	task, _ := c.state().FindTask(other)
	require.NotNil(t, task.Reminder)
	assert.True(t, task.HighPriorityReminder)

	c.run("task", "remind", other, "--at", "none")
	task, _ = c.state().FindTask(other)
	assert.Nil(t, task.Reminder)
	assert.False(t, task.HighPriorityReminder)

	c.run("task", "undo", id)
	task, _ = c.state().FindTask(id)
	assert.False(t, task.Completed)

	c.run("task", "delete", id, "-y")
	assert.Len(t, c.state().Tasks, 1)

	_, err := c.runWithInput("", "task", "list", "--filter", "later")
	assert.ErrorContains(t, err, "unknown filter")
}

func TestMindMapCommands(t *testing.T) {
	c := newCLI(t)

	id := strings.TrimSpace(c.run("map", "create", "Plan"))
	m, ok := c.state().FindMindMap(id)
	require.True(t, ok)
	require.Len(t, m.Nodes, 1)
	assert.Equal(t, "Plan", m.Title)

	child := strings.TrimSpace(c.run("map", "add-node", id, "--text", "Research"))
	grandchild := strings.TrimSpace(c.run("map", "add-node", id, child))
	c.run("map", "rename-node", id, grandchild, "Read", "papers")
	c.run("map", "move-node", id, child, "300", "-40")

	m, _ = c.state().FindMindMap(id)
	require.Len(t, m.Nodes, 3)
	assert.Equal(t, "Research", m.Nodes[child].Text)
	assert.Equal(t, "Read papers", m.Nodes[grandchild].Text)
	assert.Equal(t, core.Point{X: 300, Y: -40}, m.Nodes[child].Position)
	require.NotNil(t, m.Nodes[grandchild].ParentID)
	assert.Equal(t, child, *m.Nodes[grandchild].ParentID)

	c.run("map", "move-node", id, grandchild, "-120.5", "-7")
	m, _ = c.state().FindMindMap(id)
	assert.Equal(t, core.Point{X: -120.5, Y: -7}, m.Nodes[grandchild].Position)

	show := c.run("map", "show", id)
	assert.Contains(t, show, "- Central Idea")
	assert.Contains(t, show, "    - Read papers")

	assert.Equal(t, "offset 400,300 zoom 1\n", c.run("map", "center", id))

	_, err := c.runWithInput("", "map", "delete-node", id, m.RootID, "--yes")
	assert.ErrorContains(t, err, "root node cannot be deleted")

	assert.Contains(t, c.run("map", "delete-node", id, child, "--yes"), "deleted 2 node(s)")
	m, _ = c.state().FindMindMap(id)
	assert.Len(t, m.Nodes, 1)

	assert.Equal(t, "ok\n", c.run("map", "validate"))

	untitled := strings.TrimSpace(c.run("map", "create"))
	m, _ = c.state().FindMindMap(untitled)
	assert.Equal(t, DefaultMapTitle, m.Title)

	c.run("map", "delete", id, "--yes")
	assert.Len(t, c.state().MindMaps, 1)
}

func TestSettingsAndLock(t *testing.T) {
	c := newCLI(t)

	c.run("settings", "set", "theme=dark", "accent=Purple", "font=lg", "halloween=true")
	s := c.state().Settings
	assert.Equal(t, core.ThemeDark, s.Theme)
	assert.Equal(t, core.AccentPurple, s.AccentColor)
	assert.Equal(t, core.FontLarge, s.FontSize)
	assert.True(t, s.HalloweenKeyboard)

	_, err := c.runWithInput("", "settings", "set", "accent=orange")
	assert.ErrorContains(t, err, "unknown accent")
	_, err = c.runWithInput("", "settings", "set", "colour=red")
	assert.ErrorContains(t, err, "unknown setting")
	_, err = c.runWithInput("", "settings", "set", "pin=12")
	assert.ErrorContains(t, err, "4 to 6 digits")

	c.run("settings", "set", "pin=56-78", "lock=true")
	s = c.state().Settings
	require.NotNil(t, s.LockPIN)
	assert.Equal(t, "5678", *s.LockPIN)
	assert.True(t, s.LockEnabled)

	t.Run("WrongPIN", func(t *testing.T) {
		_, err := c.runWithInput("0000\n", "task", "list")
		assert.ErrorIs(t, err, errLocked)
		_, err = c.runWithInput("", "task", "list", "--pin", "56789")
		assert.ErrorIs(t, err, errLocked)
	})

	t.Run("PINFromInput", func(t *testing.T) {
		out, err := c.runWithInput("5678\n", "unlock")
		require.NoError(t, err)
		assert.Equal(t, "unlocked\n", out)
	})

	t.Run("PINFromEnv", func(t *testing.T) {
		t.Setenv(PINEnv, "5678")
		_, err := c.runWithInput("", "task", "list")
		assert.NoError(t, err)
	})

	c.run("--pin", "5678", "settings", "set", "lock=false")
	assert.Equal(t, "lock is disabled\n", c.run("unlock"))
}

func TestBackupAndRestore(t *testing.T) {
	c := newCLI(t)
	c.run("task", "add", "Keep", "me")

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	c.run("backup", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "text: Keep me")

	c.run("task", "add", "Drop", "me")
	require.Len(t, c.state().Tasks, 2)

	assert.Contains(t, c.run("restore", path, "--yes"), "restored 0 notes, 1 tasks, 0 mind maps")
	tasks := c.state().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Keep me", tasks[0].Text)

	t.Run("InvalidBackupChangesNothing", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"notes": 3}`), 0644))
		_, err := c.runWithInput("", "restore", bad, "--yes")
		assert.ErrorContains(t, err, "nothing changed")
		assert.Len(t, c.state().Tasks, 1)
	})

	t.Run("DefaultPathAndListing", func(t *testing.T) {
		out := c.run("backup", "--timestamp")
		assert.Contains(t, out, filepath.Join(c.dir, "notenest_backup_"))
		assert.Contains(t, c.run("backups"), "notenest_backup_")
	})
}

func TestInitWritesConfig(t *testing.T) {
	c := newCLI(t)

	c.run("init", "--config", "--backup-dir", "exports", "--backup-format", "yaml")
	data, err := os.ReadFile(filepath.Join(c.dir, "notenest.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "versioning: false")
	assert.Contains(t, string(data), "format: yaml")

	out := c.run("backup")
	assert.Contains(t, out, filepath.Join(c.dir, "exports", "notenest_backup.yaml"))

	_, err = c.runWithInput("", "init", "--config")
	assert.ErrorContains(t, err, "already exists")
}

func TestStatusAndVersion(t *testing.T) {
	c := newCLI(t)
	c.run("note", "add", "--title", "One")

	status := c.run("status")
	assert.Contains(t, status, "notes")
	assert.Contains(t, status, "versioned  false")

	var report struct {
		Store struct {
			Notes int `json:"notes"`
		} `json:"store"`
		Repository struct {
			Gitless bool `json:"gitless"`
		} `json:"repository"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.run("status", "--json")), &report))
	assert.Equal(t, 1, report.Store.Notes)
	assert.True(t, report.Repository.Gitless)

	assert.Contains(t, c.run("status", "--diagram"), "Repository")
	assert.True(t, strings.HasPrefix(c.run("version"), "notenest version "))

	_, err := c.runWithInput("", "history")
	assert.ErrorContains(t, err, "gitless")
}

func TestParseReminder(t *testing.T) {
	r, err := parseReminder("none")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = parseReminder("2026-10-19T08:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int64(1792398600000), *r)

	_, err = parseReminder("tomorrow")
	assert.Error(t, err)
}

func TestAttachmentType(t *testing.T) {
	tests := []struct {
		explicit string
		mime     string
		want     core.AttachmentType
		wantErr  bool
	}{
		{mime: "image/png", want: core.AttachmentImage},
		{mime: "audio/wave", want: core.AttachmentAudio},
		{mime: "video/webm", want: core.AttachmentAudio},
		{explicit: "doodle", mime: "image/png", want: core.AttachmentDoodle},
		{explicit: "video", wantErr: true},
		{mime: "text/plain; charset=utf-8", wantErr: true},
	}
	for _, tt := range tests {
		got, err := attachmentType(tt.explicit, tt.mime)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.explicit, tt.mime)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", excerpt("<h1>Hello</h1><p>world</p>", 40))
	assert.Equal(t, "abc...", excerpt("abcdef", 3))
	assert.Equal(t, "", excerpt("", 10))
}
