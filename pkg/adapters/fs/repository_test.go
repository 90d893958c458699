package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notenest/pkg/adapters/fs"
	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/git"
)

// setupRepo creates a gitless repository under a fresh temp dir.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	dataPath := filepath.Join(t.TempDir(), "data")
	cfg := fs.Config{
		Path:     dataPath,
		AutoInit: true,
		Gitless:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewRepository(cfg), dataPath
}

func sampleState() core.AppState {
	state := core.DefaultState()
	state.Notes = []core.Note{{
		ID:          "note_1700000000000",
		Title:       "Groceries",
		Content:     "<p>milk & <b>eggs</b></p>",
		Attachments: []core.Attachment{{ID: "att_1", Type: core.AttachmentImage, Data: "data:image/png;base64,AAAA"}},
		CreatedAt:   1700000000000,
		ModifiedAt:  1700000000500,
	}}
	state.Tasks = []core.Task{{
		ID:         "task_1700000001000",
		Text:       "Buy milk",
		Subtasks:   []core.Subtask{{ID: "sub_1", Text: "Check fridge", Completed: true}},
		CreatedAt:  1700000001000,
		ModifiedAt: 1700000001000,
	}}
	state.MindMaps = []core.MindMap{{
		ID:    "map_1700000002000",
		Title: "Plan",
		Nodes: map[string]core.MindMapNode{
			"root":   {ID: "root", Text: "Plan", Position: core.Point{X: 400, Y: 300}},
			"node_1": {ID: "node_1", Text: "Research", Position: core.Point{X: 550.5, Y: 300}, ParentID: core.StringPtr("root")},
		},
		RootID:     "root",
		CreatedAt:  1700000002000,
		ModifiedAt: 1700000002000,
	}}
	state.Settings.Theme = core.ThemeDark
	state.Settings.AccentColor = core.AccentPurple
	return state
}

func TestInitialize(t *testing.T) {
	t.Run("creates data and system directories", func(t *testing.T) {
		repo, path := setupRepo(t)

		require.NoError(t, repo.Initialize(context.Background()))
		assert.DirExists(t, path)
		assert.DirExists(t, filepath.Join(path, fs.DefaultSystemDir))
	})

	t.Run("fails if MustExist and missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.MustExist = true
			c.AutoInit = false
		})

		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("read-only does not touch the disk", func(t *testing.T) {
		repo, path := setupRepo(t, func(c *fs.Config) { c.ReadOnly = true })

		require.NoError(t, repo.Initialize(context.Background()))
		assert.NoDirExists(t, path)
	})

	t.Run("versioned init ignores the system dir", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		repo, path := setupRepo(t, func(c *fs.Config) { c.Gitless = false })
		configureGitUser(t, path)

		require.NoError(t, repo.Initialize(context.Background()))
		assert.DirExists(t, filepath.Join(path, ".git"))

		ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), fs.DefaultSystemDir+"/")
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing blob yields defaults", func(t *testing.T) {
		repo, _ := setupRepo(t)
		require.NoError(t, repo.Initialize(context.Background()))

		state, found, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, core.DefaultState(), state)
	})

	t.Run("legacy blob is migrated", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, repo.Initialize(context.Background()))
		legacy := `{"notes":[],"tasks":[],"settings":{"theme":"dark","accentColor":"blue","fontSize":"lg","highPriorityReminders":false,"lockEnabled":false,"lockPin":"1234","halloweenKeyboard":false}}`
		require.NoError(t, os.WriteFile(filepath.Join(path, "noteNestState.json"), []byte(legacy), 0644))

		state, found, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.True(t, found)
		assert.NotNil(t, state.MindMaps)
		assert.Empty(t, state.MindMaps)
		assert.Equal(t, core.ThemeDark, state.Settings.Theme)
		assert.Equal(t, core.SchemaVersion, state.Version)
	})

	t.Run("corrupt blob is an error", func(t *testing.T) {
		repo, path := setupRepo(t)
		require.NoError(t, repo.Initialize(context.Background()))
		require.NoError(t, os.WriteFile(filepath.Join(path, "noteNestState.json"), []byte("{not json"), 0644))

		_, _, err := repo.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		repo, _ := setupRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := repo.Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	want := sampleState()
	require.NoError(t, repo.Save(ctx, want))
	assert.FileExists(t, filepath.Join(path, "noteNestState.json"))

	got, found, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(repo.StatePath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<b>eggs</b>", "markup must not be HTML-escaped")
}

func TestSave_ReadOnly(t *testing.T) {
	repo, _ := setupRepo(t, func(c *fs.Config) { c.ReadOnly = true })

	err := repo.Save(context.Background(), core.DefaultState())
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.True(t, repo.IsReadOnly())
}

func TestSave_CommitsWithReason(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	repo, path := setupRepo(t, func(c *fs.Config) { c.Gitless = false })
	configureGitUser(t, path)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	require.NoError(t, repo.Save(core.WithChangeReason(ctx, `feat(tasks): add "Buy milk"`), sampleState()))
	require.NoError(t, repo.Save(ctx, core.DefaultState()))

	history, err := repo.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "update noteNestState", history[0].Subject)
	assert.Equal(t, `feat(tasks): add "Buy milk"`, history[1].Subject)
}

func TestHistory_Gitless(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.History(context.Background(), 5)
	assert.Error(t, err)
}

func TestRepositoryState(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Save(ctx, core.DefaultState()))

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, filepath.Join(path, "noteNestState.json"), state.StatePath)
	assert.True(t, state.Gitless)
	assert.Equal(t, []string{".json", ".yaml", ".yml"}, state.Serializers)
	assert.NotNil(t, state.LastSave)
	assert.Nil(t, state.LastLoad)
	assert.Equal(t, "repository", repo.ComponentType())
}

// configureGitUser pre-creates the repository so commits have an identity.
func configureGitUser(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
	client := git.NewClient(path, "", nil)
	require.NoError(t, client.Init())
	_, err := client.Run("config", "user.email", "test@example.com")
	require.NoError(t, err)
	_, err = client.Run("config", "user.name", "Test")
	require.NoError(t, err)
}
