package store

import "github.com/aretw0/notenest/pkg/core"

// ActionType tags an Action.
type ActionType string

const (
	ActionSetState       ActionType = "SET_STATE"
	ActionSaveNote       ActionType = "SAVE_NOTE"
	ActionDeleteNote     ActionType = "DELETE_NOTE"
	ActionAddTask        ActionType = "ADD_TASK"
	ActionUpdateTask     ActionType = "UPDATE_TASK"
	ActionDeleteTask     ActionType = "DELETE_TASK"
	ActionUpdateSettings ActionType = "UPDATE_SETTINGS"
	ActionCreateMindMap  ActionType = "CREATE_MIND_MAP"
	ActionUpdateMindMap  ActionType = "UPDATE_MIND_MAP"
	ActionDeleteMindMap  ActionType = "DELETE_MIND_MAP"
)

// Action is a request to transition the state tree.
// Actions the reducer does not recognise leave the state untouched.
type Action interface {
	Type() ActionType
}

// SetState replaces the whole tree (initial load, restore).
type SetState struct{ State core.AppState }

// SaveNote upserts a note by id.
type SaveNote struct{ Note core.Note }

// DeleteNote removes a note by id.
type DeleteNote struct{ ID string }

// AddTask appends a fresh task with the given text.
type AddTask struct{ Text string }

// UpdateTask replaces the task with the same id.
type UpdateTask struct{ Task core.Task }

// DeleteTask removes a task by id.
type DeleteTask struct{ ID string }

// UpdateSettings replaces the settings wholesale.
type UpdateSettings struct{ Settings core.Settings }

// CreateMindMap appends a map holding a single root node.
// Empty ID and zero Now are filled from the reducer environment.
type CreateMindMap struct {
	ID    string
	Title string
	Now   int64
}

// UpdateMindMap replaces the map with the same id.
type UpdateMindMap struct{ MindMap core.MindMap }

// DeleteMindMap removes a map by id.
type DeleteMindMap struct{ ID string }

func (SetState) Type() ActionType       { return ActionSetState }
func (SaveNote) Type() ActionType       { return ActionSaveNote }
func (DeleteNote) Type() ActionType     { return ActionDeleteNote }
func (AddTask) Type() ActionType        { return ActionAddTask }
func (UpdateTask) Type() ActionType     { return ActionUpdateTask }
func (DeleteTask) Type() ActionType     { return ActionDeleteTask }
func (UpdateSettings) Type() ActionType { return ActionUpdateSettings }
func (CreateMindMap) Type() ActionType  { return ActionCreateMindMap }
func (UpdateMindMap) Type() ActionType  { return ActionUpdateMindMap }
func (DeleteMindMap) Type() ActionType  { return ActionDeleteMindMap }
