package core

// SchemaVersion is the version written by this build. Older blobs are
// upgraded by the schema package before they reach the store.
const SchemaVersion = 1

// AppState is the aggregate root and the unit of persistence: it is loaded
// wholesale at startup and written wholesale after every mutation.
type AppState struct {
	Version  int       `json:"version,omitempty" yaml:"version,omitempty"`
	Notes    []Note    `json:"notes" yaml:"notes"`
	Tasks    []Task    `json:"tasks" yaml:"tasks"`
	MindMaps []MindMap `json:"mindMaps" yaml:"mindMaps"`
	Settings Settings  `json:"settings" yaml:"settings"`
}

// DefaultState returns the state used when nothing has been persisted yet.
func DefaultState() AppState {
	return AppState{
		Version:  SchemaVersion,
		Notes:    []Note{},
		Tasks:    []Task{},
		MindMaps: []MindMap{},
		Settings: DefaultSettings(),
	}
}

// Normalize replaces nil collections with empty ones so the blob never
// carries null where a list is expected.
func (s AppState) Normalize() AppState {
	if s.Notes == nil {
		s.Notes = []Note{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.MindMaps == nil {
		s.MindMaps = []MindMap{}
	}
	return s
}

// FindNote returns the note with the given id.
func (s AppState) FindNote(id string) (Note, bool) {
	for _, n := range s.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}

// FindTask returns the task with the given id.
func (s AppState) FindTask(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// FindMindMap returns the mind map with the given id.
func (s AppState) FindMindMap(id string) (MindMap, bool) {
	for _, m := range s.MindMaps {
		if m.ID == id {
			return m, true
		}
	}
	return MindMap{}, false
}
