package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notenest/pkg/core"
)

const legacyBlob = `{
  "notes": [{"id": "note_1700000000000", "title": "Hello", "content": "<p>hi</p>", "attachments": [], "createdAt": 1700000000000, "modifiedAt": 1700000000001}],
  "tasks": [],
  "settings": {"theme": "dark", "accentColor": "green", "fontSize": "lg", "highPriorityReminders": false, "lockEnabled": true, "lockPin": "4321"}
}`

func TestDecodeJSON_LegacyBackfill(t *testing.T) {
	state, err := DecodeJSON([]byte(legacyBlob))
	require.NoError(t, err)

	assert.NotNil(t, state.MindMaps)
	assert.Empty(t, state.MindMaps)
	assert.Equal(t, core.SchemaVersion, state.Version)

	require.Len(t, state.Notes, 1)
	assert.Equal(t, int64(1700000000001), state.Notes[0].ModifiedAt)
	assert.Nil(t, state.Notes[0].Folder)

	assert.Equal(t, core.ThemeDark, state.Settings.Theme)
	assert.Equal(t, core.AccentGreen, state.Settings.AccentColor)
	assert.True(t, state.Settings.LockEnabled)
	assert.Equal(t, "4321", *state.Settings.LockPIN)
	assert.False(t, state.Settings.HalloweenKeyboard, "absent settings keep their defaults")
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"notes": [`))
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	doc := map[string]any{"notes": []any{}, "mindMaps": nil}
	applied := Migrate(doc)
	assert.Equal(t, []string{"backfill mind maps"}, applied)
	assert.Equal(t, []any{}, doc["mindMaps"])
	assert.Equal(t, 1, doc["version"])

	assert.Empty(t, Migrate(doc), "migrations run once")
}

func TestMigrate_KeepsExistingMaps(t *testing.T) {
	maps := []any{map[string]any{"id": "map_1"}}
	doc := map[string]any{"mindMaps": maps}
	Migrate(doc)
	assert.Equal(t, maps, doc["mindMaps"])
}

func TestVersion(t *testing.T) {
	assert.Equal(t, 0, Version(map[string]any{}))
	assert.Equal(t, 1, Version(map[string]any{"version": 1}))
	assert.Equal(t, 1, Version(map[string]any{"version": float64(1)}))

	doc, err := ParseJSON([]byte(`{"version": 1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, Version(doc))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		missing string
	}{
		{"complete", map[string]any{"notes": []any{}, "tasks": []any{}, "settings": map[string]any{}}, ""},
		{"no settings", map[string]any{"notes": []any{}, "tasks": []any{}}, "settings"},
		{"null tasks", map[string]any{"notes": []any{}, "tasks": nil, "settings": map[string]any{}}, "tasks"},
		{"empty", map[string]any{}, "notes, settings, tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			if tt.missing == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBackup)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestDecodeBackup_YAML(t *testing.T) {
	src := `
notes: []
tasks:
  - id: task_1700000000000
    text: Buy milk
    completed: false
    subtasks: []
    reminder: null
    highPriorityReminder: false
    createdAt: 1700000000000
    modifiedAt: 1700000000000
settings:
  theme: light
  accentColor: blue
  fontSize: sm
`
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))

	state, err := DecodeBackup(doc)
	require.NoError(t, err)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Buy milk", state.Tasks[0].Text)
	assert.Equal(t, int64(1700000000000), state.Tasks[0].CreatedAt)
	assert.Nil(t, state.Tasks[0].Reminder)
	assert.Equal(t, core.AccentBlue, state.Settings.AccentColor)
	assert.Empty(t, state.MindMaps)
}

func TestDecodeBackup_Rejects(t *testing.T) {
	_, err := DecodeBackup(nil)
	assert.ErrorIs(t, err, ErrInvalidBackup)

	_, err = DecodeBackup(map[string]any{"notes": []any{}})
	assert.ErrorIs(t, err, ErrInvalidBackup)
}
