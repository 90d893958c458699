package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notenest/pkg/core"
)

func notes() []core.Note {
	return []core.Note{
		{ID: "note_1", Title: "Groceries", CreatedAt: 1, ModifiedAt: 30},
		{ID: "note_2", Title: "meeting notes", CreatedAt: 3, ModifiedAt: 10},
		{ID: "note_3", Title: "Garden plan", CreatedAt: 2, ModifiedAt: 20},
	}
}

func ids(ns []core.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestSearchNotes(t *testing.T) {
	assert.Equal(t, []string{"note_2"}, ids(SearchNotes(notes(), "MEET")))
	assert.Equal(t, []string{"note_1", "note_2", "note_3"}, ids(SearchNotes(notes(), "")))
	assert.Empty(t, SearchNotes(notes(), "zzz"))
}

func TestSearchTasksAndMaps(t *testing.T) {
	tasks := []core.Task{{ID: "task_1", Text: "Buy milk"}, {ID: "task_2", Text: "Call mum"}}
	found := SearchTasks(tasks, "milk")
	require.Len(t, found, 1)
	assert.Equal(t, "task_1", found[0].ID)

	maps := []core.MindMap{{ID: "map_1", Title: "Plan"}, {ID: "map_2", Title: "Roadmap"}}
	assert.Len(t, SearchMindMaps(maps, "PLAN"), 1)
	assert.Len(t, SearchMindMaps(maps, "a"), 2)
}

func TestSortNotes(t *testing.T) {
	tests := []struct {
		order NoteOrder
		want  []string
	}{
		{ByModified, []string{"note_1", "note_3", "note_2"}},
		{ByCreated, []string{"note_2", "note_3", "note_1"}},
		{ByTitle, []string{"note_3", "note_1", "note_2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			in := notes()
			assert.Equal(t, tt.want, ids(SortNotes(in, tt.order)))
			assert.Equal(t, "note_1", in[0].ID, "input must not be reordered")
		})
	}
}

func TestParseNoteOrder(t *testing.T) {
	assert.Equal(t, ByTitle, ParseNoteOrder("title"))
	assert.Equal(t, ByCreated, ParseNoteOrder("createdAt"))
	assert.Equal(t, ByModified, ParseNoteOrder("whatever"))
	assert.Equal(t, ByCreated, ParseNoteOrder("created"))
	assert.Equal(t, ByModified, ParseNoteOrder("modified"))
}

func TestSortMindMaps(t *testing.T) {
	maps := []core.MindMap{{ID: "a", ModifiedAt: 1}, {ID: "b", ModifiedAt: 3}, {ID: "c", ModifiedAt: 2}}
	sorted := SortMindMaps(maps)
	assert.Equal(t, "b", sorted[0].ID)
	assert.Equal(t, "c", sorted[1].ID)
	assert.Equal(t, "a", sorted[2].ID)
}

func TestSplitTasks(t *testing.T) {
	tasks := []core.Task{{ID: "1"}, {ID: "2", Completed: true}, {ID: "3"}}
	active, done := SplitTasks(tasks)
	require.Len(t, active, 2)
	require.Len(t, done, 1)
	assert.Equal(t, "3", active[1].ID)
	assert.Equal(t, "2", done[0].ID)

	active, done = SplitTasks(nil)
	assert.NotNil(t, active)
	assert.NotNil(t, done)
}

func TestFuzzyNotes(t *testing.T) {
	got := FuzzyNotes(notes(), "grc")
	require.NotEmpty(t, got)
	assert.Equal(t, "note_1", got[0].ID)

	assert.Empty(t, FuzzyNotes(notes(), "xyz"))
	assert.Len(t, FuzzyNotes(notes(), ""), 3)
}
