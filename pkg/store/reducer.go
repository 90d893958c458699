package store

import (
	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/mindmap"
)

// Env carries the only impure inputs of the reducer.
type Env struct {
	Clock core.Clock
	IDs   *core.IDGenerator
}

// NewEnv returns an Env driven by clock (the system clock if nil).
func NewEnv(clock core.Clock) Env {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return Env{Clock: clock, IDs: core.NewIDGenerator(clock)}
}

func (e Env) normalize() Env {
	if e.Clock == nil {
		e.Clock = core.SystemClock{}
	}
	if e.IDs == nil {
		e.IDs = core.NewIDGenerator(e.Clock)
	}
	return e
}

// Reduce returns the state that results from applying action to state.
// The input state is never mutated; untouched collections are shared.
func Reduce(state core.AppState, action Action, env Env) core.AppState {
	next, _ := reduce(state, action, env)
	return next
}

// reduce also reports whether the action changed anything.
func reduce(state core.AppState, action Action, env Env) (core.AppState, bool) {
	env = env.normalize()

	switch a := action.(type) {
	case SetState:
		next := a.State.Normalize()
		if next.Version == 0 {
			next.Version = core.SchemaVersion
		}
		return next, true

	case SaveNote:
		state.Notes = upsert(state.Notes, a.Note, func(n core.Note) string { return n.ID })
		return state, true

	case DeleteNote:
		notes, ok := remove(state.Notes, a.ID, func(n core.Note) string { return n.ID })
		if !ok {
			return state, false
		}
		state.Notes = notes
		return state, true

	case AddTask:
		stamp := env.IDs.Stamp()
		task := core.Task{
			ID:                   core.FormatID(core.PrefixTask, stamp),
			Text:                 a.Text,
			Completed:            false,
			Subtasks:             []core.Subtask{},
			Reminder:             nil,
			HighPriorityReminder: false,
			CreatedAt:            stamp,
			ModifiedAt:           stamp,
		}
		state.Tasks = appendCopy(state.Tasks, task)
		return state, true

	case UpdateTask:
		tasks, ok := replace(state.Tasks, a.Task, func(t core.Task) string { return t.ID })
		if !ok {
			return state, false
		}
		state.Tasks = tasks
		return state, true

	case DeleteTask:
		tasks, ok := remove(state.Tasks, a.ID, func(t core.Task) string { return t.ID })
		if !ok {
			return state, false
		}
		state.Tasks = tasks
		return state, true

	case UpdateSettings:
		state.Settings = a.Settings
		return state, true

	case CreateMindMap:
		now := a.Now
		if now == 0 {
			now = env.IDs.Stamp()
		} else {
			env.IDs.Observe(now)
		}
		id := a.ID
		if id == "" {
			id = core.FormatID(core.PrefixMindMap, now)
		}
		if _, exists := state.FindMindMap(id); exists {
			return state, false
		}
		state.MindMaps = appendCopy(state.MindMaps, mindmap.New(id, a.Title, now))
		return state, true

	case UpdateMindMap:
		m := a.MindMap.Clone()
		m.ModifiedAt = core.Millis(env.Clock)
		maps, ok := replace(state.MindMaps, m, func(m core.MindMap) string { return m.ID })
		if !ok {
			return state, false
		}
		state.MindMaps = maps
		return state, true

	case DeleteMindMap:
		maps, ok := remove(state.MindMaps, a.ID, func(m core.MindMap) string { return m.ID })
		if !ok {
			return state, false
		}
		state.MindMaps = maps
		return state, true
	}

	return state, false
}

func appendCopy[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// upsert replaces the element with item's key in place, or appends it.
func upsert[T any](items []T, item T, key func(T) string) []T {
	if out, ok := replace(items, item, key); ok {
		return out
	}
	return appendCopy(items, item)
}

func replace[T any](items []T, item T, key func(T) string) ([]T, bool) {
	k := key(item)
	for i := range items {
		if key(items[i]) == k {
			out := make([]T, len(items))
			copy(out, items)
			out[i] = item
			return out, true
		}
	}
	return items, false
}

func remove[T any](items []T, id string, key func(T) string) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) != id {
			out = append(out, it)
		}
	}
	if len(out) == len(items) {
		return items, false
	}
	return out, true
}
