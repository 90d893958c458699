package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/mindmap"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock(ms int64) *stepClock { return &stepClock{t: time.UnixMilli(ms)} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type bogusAction struct{}

func (bogusAction) Type() ActionType { return "BOGUS" }

func TestReduce_AddTask(t *testing.T) {
	env := NewEnv(newStepClock(1700000000000))

	state := Reduce(core.DefaultState(), AddTask{Text: "Buy milk"}, env)

	require.Len(t, state.Tasks, 1)
	task := state.Tasks[0]
	assert.Equal(t, "task_1700000000000", task.ID)
	assert.Equal(t, "Buy milk", task.Text)
	assert.False(t, task.Completed)
	assert.NotNil(t, task.Subtasks)
	assert.Empty(t, task.Subtasks)
	assert.Nil(t, task.Reminder)
	assert.False(t, task.HighPriorityReminder)
	assert.Equal(t, int64(1700000000000), task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.ModifiedAt)
}

func TestReduce_BuyMilkScenario(t *testing.T) {
	clock := newStepClock(1700000000000)
	env := NewEnv(clock)

	state := Reduce(core.DefaultState(), AddTask{Text: "Buy milk"}, env)
	task := state.Tasks[0]

	clock.Advance(time.Second)
	state = Reduce(state, UpdateTask{Task: task.Toggle(core.Millis(clock))}, env)
	require.Len(t, state.Tasks, 1)
	assert.True(t, state.Tasks[0].Completed)
	assert.Equal(t, int64(1700000001000), state.Tasks[0].ModifiedAt)

	state = Reduce(state, DeleteTask{ID: task.ID}, env)
	assert.Empty(t, state.Tasks)
}

func TestReduce_IDsUniqueWithinMillisecond(t *testing.T) {
	env := NewEnv(newStepClock(1700000000000))

	state := core.DefaultState()
	for i := 0; i < 5; i++ {
		state = Reduce(state, AddTask{Text: "t"}, env)
		state = Reduce(state, CreateMindMap{Title: "m"}, env)
	}

	seen := make(map[string]bool)
	for _, task := range state.Tasks {
		require.False(t, seen[task.ID], task.ID)
		seen[task.ID] = true
	}
	for _, m := range state.MindMaps {
		require.False(t, seen[m.ID], m.ID)
		seen[m.ID] = true
		require.False(t, seen[m.RootID], m.RootID)
		seen[m.RootID] = true
	}
	assert.Len(t, seen, 15)
}

func TestReduce_SaveNoteUpsertPreservesOrder(t *testing.T) {
	env := NewEnv(newStepClock(1))
	a := core.Note{ID: "note_1", Title: "A"}
	b := core.Note{ID: "note_2", Title: "B"}
	c := core.Note{ID: "note_3", Title: "C"}

	state := core.DefaultState()
	for _, n := range []core.Note{a, b, c} {
		state = Reduce(state, SaveNote{Note: n}, env)
	}

	b.Title = "B2"
	next := Reduce(state, SaveNote{Note: b}, env)

	require.Len(t, next.Notes, 3)
	assert.Equal(t, []string{"A", "B2", "C"}, []string{next.Notes[0].Title, next.Notes[1].Title, next.Notes[2].Title})
	assert.Equal(t, "B", state.Notes[1].Title, "input state must not be mutated")
}

func TestReduce_DeleteMissingIsNoop(t *testing.T) {
	env := NewEnv(newStepClock(1))
	state := Reduce(core.DefaultState(), AddTask{Text: "keep"}, env)

	for _, a := range []Action{DeleteNote{ID: "x"}, DeleteTask{ID: "x"}, DeleteMindMap{ID: "x"}, UpdateTask{Task: core.Task{ID: "x"}}} {
		next, changed := reduce(state, a, env)
		assert.False(t, changed, a.Type())
		assert.Equal(t, state, next, a.Type())
	}
}

func TestReduce_UnknownAction(t *testing.T) {
	state := core.DefaultState()
	next, changed := reduce(state, bogusAction{}, NewEnv(nil))
	assert.False(t, changed)
	assert.Equal(t, state, next)
}

func TestReduce_PlanScenario(t *testing.T) {
	clock := newStepClock(1700000000000)
	env := NewEnv(clock)

	state := Reduce(core.DefaultState(), CreateMindMap{ID: "map_1700000000000", Title: "Plan", Now: 1700000000000}, env)
	require.Len(t, state.MindMaps, 1)

	m := state.MindMaps[0]
	assert.Equal(t, "node_1700000000000", m.RootID)
	require.Len(t, m.Nodes, 1)
	root, _ := m.Root()
	assert.Equal(t, "Central Idea", root.Text)
	assert.Equal(t, core.Point{}, root.Position)
	assert.Nil(t, root.ParentID)

	e := mindmap.NewEditor(m, mindmap.WithIDs(env.IDs))
	child, err := e.AddChild()
	require.NoError(t, err)
	assert.Equal(t, core.Point{X: 150, Y: 50}, child.Position)
	require.NoError(t, e.CommitEdit("Budget"))

	clock.Advance(5 * time.Second)
	state = Reduce(state, UpdateMindMap{MindMap: e.Result()}, env)

	saved := state.MindMaps[0]
	assert.Len(t, saved.Nodes, 2)
	assert.Equal(t, "Budget", saved.Nodes[child.ID].Text)
	assert.Equal(t, root.ID, *saved.Nodes[child.ID].ParentID)
	assert.Equal(t, int64(1700000005000), saved.ModifiedAt)
	assert.Equal(t, int64(1700000000000), saved.CreatedAt)
	assert.NoError(t, mindmap.Validate(saved))
}

func TestReduce_CreateMindMapDefaults(t *testing.T) {
	env := NewEnv(newStepClock(42))
	state := Reduce(core.DefaultState(), CreateMindMap{Title: "Ideas"}, env)

	m := state.MindMaps[0]
	assert.Equal(t, "map_42", m.ID)
	assert.Equal(t, "node_42", m.RootID)
	assert.Equal(t, int64(42), m.CreatedAt)
}

func TestReduce_CreateMindMapExplicitThenImplicit(t *testing.T) {
	env := NewEnv(newStepClock(1700000000000))

	state := Reduce(core.DefaultState(), CreateMindMap{Title: "A", Now: 1700000000000}, env)
	state = Reduce(state, CreateMindMap{Title: "B"}, env)
	state = Reduce(state, CreateMindMap{ID: "map_fixed", Title: "C"}, env)

	require.Len(t, state.MindMaps, 3)
	ids := make(map[string]bool)
	roots := make(map[string]bool)
	for _, m := range state.MindMaps {
		ids[m.ID] = true
		roots[m.RootID] = true
	}
	assert.Len(t, ids, 3)
	assert.Len(t, roots, 3)
	assert.Equal(t, "map_1700000000001", state.MindMaps[1].ID)

	t.Run("ExistingIDIsNoop", func(t *testing.T) {
		next, changed := reduce(state, CreateMindMap{ID: "map_fixed", Title: "again"}, env)
		assert.False(t, changed)
		require.Len(t, next.MindMaps, 3)
		assert.Equal(t, "C", next.MindMaps[2].Title)
	})
}

func TestReduce_UpdateSettingsAndSetState(t *testing.T) {
	env := NewEnv(nil)

	s := core.DefaultSettings()
	s.Theme = core.ThemeDark
	s.LockEnabled = true
	state := Reduce(core.DefaultState(), UpdateSettings{Settings: s}, env)
	assert.Equal(t, s, state.Settings)

	replaced := Reduce(state, SetState{State: core.AppState{Settings: core.DefaultSettings()}}, env)
	assert.NotNil(t, replaced.Notes)
	assert.NotNil(t, replaced.MindMaps)
	assert.Equal(t, core.ThemeLight, replaced.Settings.Theme)
	assert.Equal(t, core.SchemaVersion, replaced.Version)
}

func TestReduce_DeleteMindMap(t *testing.T) {
	env := NewEnv(newStepClock(10))
	state := Reduce(core.DefaultState(), CreateMindMap{Title: "A"}, env)
	state = Reduce(state, CreateMindMap{Title: "B"}, env)

	next := Reduce(state, DeleteMindMap{ID: state.MindMaps[0].ID}, env)
	require.Len(t, next.MindMaps, 1)
	assert.Equal(t, "B", next.MindMaps[0].Title)
	assert.Len(t, state.MindMaps, 2)
}

func TestDescribe(t *testing.T) {
	msg := Describe(AddTask{Text: "Buy milk"})
	assert.Equal(t, "feat(tasks): add \"Buy milk\"\n\nPowered-by: NoteNest", msg)

	assert.Contains(t, Describe(bogusAction{}), "apply BOGUS")
	assert.Equal(t, "custom\n\nPowered-by: NoteNest", AppendFooter("custom"))
	assert.Equal(t, msg, AppendFooter(msg))
}
