package mindmap

import (
	"errors"
	"math"

	"github.com/aretw0/notenest/pkg/core"
)

// Node hit box in logical units, centred on the node position.
const (
	NodeWidth  = 128.0
	NodeHeight = 40.0
)

// Mode is the pointer interaction state. Panning and dragging are mutually
// exclusive and both return to ModeIdle on pointer-up or pointer-leave.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDragging
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDragging:
		return "dragging"
	}
	return "idle"
}

var ErrNoSelection = errors.New("no node selected")

// Editor is an editing session over a working copy of one mind map. It owns
// the viewport, selection and pointer state; the stored map only changes when
// the caller dispatches Result() to the store.
type Editor struct {
	m        core.MindMap
	view     Viewport
	ids      *core.IDGenerator
	mode     Mode
	selected string
	editing  string

	// panning
	last core.Point
	// dragging
	dragID       string
	anchorScreen core.Point
	anchorNode   core.Point
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithIDs sets the generator used for new node ids.
func WithIDs(g *core.IDGenerator) EditorOption {
	return func(e *Editor) { e.ids = g }
}

// WithViewport sets the initial viewport.
func WithViewport(v Viewport) EditorOption {
	return func(e *Editor) { e.view = v }
}

// NewEditor opens a session on a copy of m with the root selected.
func NewEditor(m core.MindMap, opts ...EditorOption) *Editor {
	e := &Editor{
		m:        m.Clone(),
		view:     NewViewport(),
		selected: m.RootID,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ids == nil {
		e.ids = core.NewIDGenerator(nil)
	}
	e.view = e.view.normalized()
	return e
}

// Map returns the working copy.
func (e *Editor) Map() core.MindMap { return e.m }

// Viewport returns the current viewport.
func (e *Editor) Viewport() Viewport { return e.view }

// Mode returns the current interaction mode.
func (e *Editor) Mode() Mode { return e.mode }

// Selected returns the selected node id ("" when none).
func (e *Editor) Selected() string { return e.selected }

// Editing returns the id of the node in text-edit mode ("" when none).
func (e *Editor) Editing() string { return e.editing }

// Connectors derives the connectors of the working copy.
func (e *Editor) Connectors() []Connector { return Connectors(e.m) }

// SetTitle renames the map.
func (e *Editor) SetTitle(title string) { e.m.Title = title }

// Result returns a copy of the edited map, ready for an update action.
func (e *Editor) Result() core.MindMap { return e.m.Clone() }

// Select makes id the selected node and leaves text-edit mode.
func (e *Editor) Select(id string) error {
	if _, ok := e.m.Nodes[id]; !ok {
		return ErrNodeNotFound
	}
	e.selected = id
	e.editing = ""
	return nil
}

// BeginEdit selects id and enters text-edit mode on it.
func (e *Editor) BeginEdit(id string) error {
	if err := e.Select(id); err != nil {
		return err
	}
	e.editing = id
	return nil
}

// CommitEdit applies text to the node being edited and leaves edit mode.
// Blank text is rejected; the node keeps its previous text.
func (e *Editor) CommitEdit(text string) error {
	id := e.editing
	e.editing = ""
	if id == "" {
		return nil
	}
	m, err := Retext(e.m, id, text)
	if err != nil {
		return err
	}
	e.m = m
	return nil
}

// AddChild creates a child of the selected node, selects it and enters
// text-edit mode on it.
func (e *Editor) AddChild() (core.MindMapNode, error) {
	if e.selected == "" {
		return core.MindMapNode{}, ErrNoSelection
	}
	id := e.ids.Next(core.PrefixNode)
	for _, taken := e.m.Nodes[id]; taken; _, taken = e.m.Nodes[id] {
		id = e.ids.Next(core.PrefixNode)
	}
	m, child, err := AddChild(e.m, e.selected, id)
	if err != nil {
		return core.MindMapNode{}, err
	}
	e.m = m
	e.selected = child.ID
	e.editing = child.ID
	return child, nil
}

// DeleteSelected removes the selected node and its subtree, then selects the
// root. Deleting the root is refused.
func (e *Editor) DeleteSelected() ([]string, error) {
	if e.selected == "" {
		return nil, ErrNoSelection
	}
	m, removed, err := DeleteSubtree(e.m, e.selected)
	if err != nil {
		return nil, err
	}
	e.m = m
	e.selected = e.m.RootID
	e.editing = ""
	return removed, nil
}

// CenterView recentres the root in a width x height screen at zoom 1.
func (e *Editor) CenterView(width, height float64) {
	var pos core.Point
	if root, ok := e.m.Root(); ok {
		pos = root.Position
	}
	e.view = Recenter(pos, width, height)
}

// HitTest returns the node under the screen point p. The selected node is
// drawn on top and wins ties; otherwise the last node in id order wins.
func (e *Editor) HitTest(p core.Point) (string, bool) {
	l := e.view.ToLogical(p)
	hit := ""
	for _, id := range SortedIDs(e.m) {
		n := e.m.Nodes[id]
		if math.Abs(l.X-n.Position.X) <= NodeWidth/2 && math.Abs(l.Y-n.Position.Y) <= NodeHeight/2 {
			hit = id
			if id == e.selected {
				return id, true
			}
		}
	}
	return hit, hit != ""
}

// PointerDown starts a node drag when p is over a node and a pan otherwise.
func (e *Editor) PointerDown(p core.Point) {
	if id, ok := e.HitTest(p); ok {
		e.selected = id
		e.editing = ""
		e.mode = ModeDragging
		e.dragID = id
		e.anchorScreen = p
		e.anchorNode = e.m.Nodes[id].Position
		return
	}
	e.mode = ModePanning
	e.last = p
}

// PointerMove pans by the frame-to-frame delta, or moves the dragged node to
// its anchor plus the total screen displacement scaled to logical space.
func (e *Editor) PointerMove(p core.Point) {
	switch e.mode {
	case ModePanning:
		e.view = e.view.Pan(p.Sub(e.last))
		e.last = p
	case ModeDragging:
		pos := e.anchorNode.Add(e.view.ScreenDelta(p.Sub(e.anchorScreen)))
		if m, err := Move(e.m, e.dragID, pos); err == nil {
			e.m = m
		}
	}
}

// PointerUp ends any pan or drag.
func (e *Editor) PointerUp() {
	e.mode = ModeIdle
	e.dragID = ""
}

// PointerLeave behaves like PointerUp.
func (e *Editor) PointerLeave() { e.PointerUp() }

// Wheel zooms around the pointer.
func (e *Editor) Wheel(p core.Point, deltaY float64) {
	e.view = e.view.ZoomAt(p, deltaY)
}

