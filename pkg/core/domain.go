// Package core holds the domain model shared by every notenest component.
//
// All entities are plain serialisable records. Behaviour lives in the store,
// mindmap and lock packages; core only defines shapes, defaults and contracts.
package core

// AttachmentType identifies the payload kind carried by an Attachment.
type AttachmentType string

const (
	AttachmentImage  AttachmentType = "image"
	AttachmentAudio  AttachmentType = "audio"
	AttachmentDoodle AttachmentType = "doodle"
)

// Valid reports whether t is one of the known attachment types.
func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentImage, AttachmentAudio, AttachmentDoodle:
		return true
	}
	return false
}

// Attachment is an encoded payload (usually a base64 data URI) owned by a Note.
type Attachment struct {
	ID   string         `json:"id" yaml:"id"`
	Type AttachmentType `json:"type" yaml:"type"`
	Data string         `json:"data" yaml:"data"`
}

// Note is a titled piece of markup content with optional attachments.
// Its ID is immutable once created.
type Note struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Content     string       `json:"content" yaml:"content"`
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
	Folder      *string      `json:"folder" yaml:"folder"`
	CreatedAt   int64        `json:"createdAt" yaml:"createdAt"`
	ModifiedAt  int64        `json:"modifiedAt" yaml:"modifiedAt"`
}

// WithAttachment returns a copy of n with a appended.
func (n Note) WithAttachment(a Attachment) Note {
	out := make([]Attachment, 0, len(n.Attachments)+1)
	out = append(out, n.Attachments...)
	n.Attachments = append(out, a)
	return n
}

// WithoutAttachment returns a copy of n without the attachment id.
func (n Note) WithoutAttachment(id string) Note {
	out := make([]Attachment, 0, len(n.Attachments))
	for _, a := range n.Attachments {
		if a.ID != id {
			out = append(out, a)
		}
	}
	n.Attachments = out
	return n
}

// Subtask is a checklist entry owned by a Task.
type Subtask struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Task is a to-do item with ordered subtasks.
//
// Reminder and HighPriorityReminder are modelled but never scheduled.
type Task struct {
	ID                   string    `json:"id" yaml:"id"`
	Text                 string    `json:"text" yaml:"text"`
	Completed            bool      `json:"completed" yaml:"completed"`
	Subtasks             []Subtask `json:"subtasks" yaml:"subtasks"`
	Reminder             *int64    `json:"reminder" yaml:"reminder"`
	HighPriorityReminder bool      `json:"highPriorityReminder" yaml:"highPriorityReminder"`
	CreatedAt            int64     `json:"createdAt" yaml:"createdAt"`
	ModifiedAt           int64     `json:"modifiedAt" yaml:"modifiedAt"`
}

// Toggle flips the completion flag and stamps ModifiedAt.
func (t Task) Toggle(now int64) Task {
	t.Completed = !t.Completed
	t.ModifiedAt = now
	return t
}

// WithSubtask returns a copy of t with s appended.
func (t Task) WithSubtask(s Subtask) Task {
	out := make([]Subtask, 0, len(t.Subtasks)+1)
	out = append(out, t.Subtasks...)
	t.Subtasks = append(out, s)
	return t
}

// ToggleSubtask flips the subtask with the given id and stamps ModifiedAt.
// The second return value is false when no subtask matched.
func (t Task) ToggleSubtask(id string, now int64) (Task, bool) {
	found := false
	out := make([]Subtask, len(t.Subtasks))
	for i, s := range t.Subtasks {
		if s.ID == id {
			s.Completed = !s.Completed
			found = true
		}
		out[i] = s
	}
	if !found {
		return t, false
	}
	t.Subtasks = out
	t.ModifiedAt = now
	return t, true
}

// Point is a position in the unbounded logical space of a mind map
// (or a pixel position in screen space, depending on context).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p*f.
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// MindMapNode is a single idea in a mind map.
// ParentID is nil only for the root node.
type MindMapNode struct {
	ID       string  `json:"id" yaml:"id"`
	Text     string  `json:"text" yaml:"text"`
	Position Point   `json:"position" yaml:"position"`
	ParentID *string `json:"parentId" yaml:"parentId"`
}

// IsRoot reports whether the node has no parent.
func (n MindMapNode) IsRoot() bool { return n.ParentID == nil }

// MindMap is a tree of nodes keyed by id. RootID must always be a key of Nodes.
type MindMap struct {
	ID         string                 `json:"id" yaml:"id"`
	Title      string                 `json:"title" yaml:"title"`
	Nodes      map[string]MindMapNode `json:"nodes" yaml:"nodes"`
	RootID     string                 `json:"rootId" yaml:"rootId"`
	CreatedAt  int64                  `json:"createdAt" yaml:"createdAt"`
	ModifiedAt int64                  `json:"modifiedAt" yaml:"modifiedAt"`
}

// Root returns the root node and whether it is present.
func (m MindMap) Root() (MindMapNode, bool) {
	n, ok := m.Nodes[m.RootID]
	return n, ok
}

// Clone returns a copy of m whose Nodes map can be mutated freely.
func (m MindMap) Clone() MindMap {
	nodes := make(map[string]MindMapNode, len(m.Nodes))
	for id, n := range m.Nodes {
		if n.ParentID != nil {
			p := *n.ParentID
			n.ParentID = &p
		}
		nodes[id] = n
	}
	m.Nodes = nodes
	return m
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string { return &s }
