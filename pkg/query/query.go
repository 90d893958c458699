// Package query provides the read-side views of the state tree: search,
// ordering and the task split used by the list screens.
package query

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/aretw0/notenest/pkg/core"
)

// NoteOrder selects how notes are ordered.
type NoteOrder string

const (
	ByModified NoteOrder = "modifiedAt"
	ByCreated  NoteOrder = "createdAt"
	ByTitle    NoteOrder = "title"
)

// ParseNoteOrder maps a user supplied name to a NoteOrder (ByModified when unknown).
// The short forms "created" and "modified" are accepted.
func ParseNoteOrder(s string) NoteOrder {
	switch s {
	case string(ByCreated), "created":
		return ByCreated
	case string(ByTitle):
		return ByTitle
	}
	return ByModified
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// SearchNotes returns notes whose title contains term, ignoring case.
// An empty term matches everything.
func SearchNotes(notes []core.Note, term string) []core.Note {
	out := make([]core.Note, 0, len(notes))
	for _, n := range notes {
		if contains(n.Title, term) {
			out = append(out, n)
		}
	}
	return out
}

// SearchTasks returns tasks whose text contains term, ignoring case.
func SearchTasks(tasks []core.Task, term string) []core.Task {
	out := make([]core.Task, 0, len(tasks))
	for _, t := range tasks {
		if contains(t.Text, term) {
			out = append(out, t)
		}
	}
	return out
}

// SearchMindMaps returns maps whose title contains term, ignoring case.
func SearchMindMaps(maps []core.MindMap, term string) []core.MindMap {
	out := make([]core.MindMap, 0, len(maps))
	for _, m := range maps {
		if contains(m.Title, term) {
			out = append(out, m)
		}
	}
	return out
}

// SortNotes returns a sorted copy: timestamps newest first, titles A to Z.
func SortNotes(notes []core.Note, order NoteOrder) []core.Note {
	out := append([]core.Note(nil), notes...)
	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case ByCreated:
			return out[i].CreatedAt > out[j].CreatedAt
		case ByTitle:
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		}
		return out[i].ModifiedAt > out[j].ModifiedAt
	})
	return out
}

// SortMindMaps returns a copy ordered by modification time, newest first.
func SortMindMaps(maps []core.MindMap) []core.MindMap {
	out := append([]core.MindMap(nil), maps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ModifiedAt > out[j].ModifiedAt
	})
	return out
}

// SplitTasks partitions tasks into active and completed, keeping order.
func SplitTasks(tasks []core.Task) (active, completed []core.Task) {
	active = []core.Task{}
	completed = []core.Task{}
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}
	return active, completed
}

// noteTitles adapts notes to fuzzy.Source.
type noteTitles []core.Note

func (n noteTitles) String(i int) string { return n[i].Title }
func (n noteTitles) Len() int            { return len(n) }

// FuzzyNotes ranks notes by fuzzy match of pattern against their titles,
// best match first. Notes that do not match are dropped.
func FuzzyNotes(notes []core.Note, pattern string) []core.Note {
	if pattern == "" {
		return append([]core.Note(nil), notes...)
	}
	matches := fuzzy.FindFrom(pattern, noteTitles(notes))
	out := make([]core.Note, 0, len(matches))
	for _, m := range matches {
		out = append(out, notes[m.Index])
	}
	return out
}
