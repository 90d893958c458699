// Package mindmap implements the pure node-graph and viewport math behind the
// mind-map canvas. Nothing here renders; a presentation adapter consumes the
// connectors, viewport and editor state.
package mindmap

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aretw0/notenest/pkg/core"
)

const (
	// RootText is the text of the single node of a freshly created map.
	RootText = "Central Idea"
	// ChildText is the default text of a node created by AddChild.
	ChildText = "New Idea"
)

// ChildOffset is the logical displacement of a new child from its parent.
var ChildOffset = core.Point{X: 150, Y: 50}

var (
	ErrRootNode     = errors.New("root node cannot be deleted")
	ErrNodeNotFound = errors.New("node not found")
	ErrEmptyText    = errors.New("node text cannot be empty")
	ErrMissingRoot  = errors.New("root node missing")
	ErrCycle        = errors.New("parent chain does not reach the root")
)

// New returns a map holding exactly one root node whose id is derived from
// stamp, so the same stamp always yields the same root id.
func New(id, title string, stamp int64) core.MindMap {
	rootID := core.FormatID(core.PrefixNode, stamp)
	return core.MindMap{
		ID:    id,
		Title: title,
		Nodes: map[string]core.MindMapNode{
			rootID: {ID: rootID, Text: RootText, Position: core.Point{}, ParentID: nil},
		},
		RootID:     rootID,
		CreatedAt:  stamp,
		ModifiedAt: stamp,
	}
}

// AddChild returns a copy of m with a new "New Idea" node under parentID,
// offset from the parent by ChildOffset.
func AddChild(m core.MindMap, parentID, id string) (core.MindMap, core.MindMapNode, error) {
	parent, ok := m.Nodes[parentID]
	if !ok {
		return m, core.MindMapNode{}, fmt.Errorf("parent %s: %w", parentID, ErrNodeNotFound)
	}
	if _, taken := m.Nodes[id]; taken {
		return m, core.MindMapNode{}, fmt.Errorf("node id %s already in use", id)
	}

	child := core.MindMapNode{
		ID:       id,
		Text:     ChildText,
		Position: parent.Position.Add(ChildOffset),
		ParentID: core.StringPtr(parentID),
	}

	out := m.Clone()
	out.Nodes[id] = child
	return out, child, nil
}

// Subtree returns id followed by every node whose parent chain reaches it,
// in breadth-first order. Unknown ids yield nil.
func Subtree(m core.MindMap, id string) []string {
	if _, ok := m.Nodes[id]; !ok {
		return nil
	}

	children := childIndex(m)
	seen := map[string]bool{id: true}
	queue := []string{id}
	for i := 0; i < len(queue); i++ {
		for _, c := range children[queue[i]] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return queue
}

// DeleteSubtree returns a copy of m without id and all of its descendants.
// The root can never be deleted.
func DeleteSubtree(m core.MindMap, id string) (core.MindMap, []string, error) {
	if id == m.RootID {
		return m, nil, ErrRootNode
	}
	removed := Subtree(m, id)
	if removed == nil {
		return m, nil, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}

	out := m.Clone()
	for _, r := range removed {
		delete(out.Nodes, r)
	}
	return out, removed, nil
}

// Retext replaces a node's text. Blank text is rejected and the previous
// text is kept.
func Retext(m core.MindMap, id, text string) (core.MindMap, error) {
	n, ok := m.Nodes[id]
	if !ok {
		return m, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}
	if strings.TrimSpace(text) == "" {
		return m, ErrEmptyText
	}

	out := m.Clone()
	n.Text = text
	out.Nodes[id] = n
	return out, nil
}

// Move sets a node's logical position. The parent link is untouched.
func Move(m core.MindMap, id string, pos core.Point) (core.MindMap, error) {
	n, ok := m.Nodes[id]
	if !ok {
		return m, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}

	out := m.Clone()
	n.Position = pos
	out.Nodes[id] = n
	return out, nil
}

// Validate checks that the root exists and that every parent chain resolves
// to the root without cycles.
func Validate(m core.MindMap) error {
	root, ok := m.Root()
	if !ok {
		return ErrMissingRoot
	}
	if !root.IsRoot() {
		return fmt.Errorf("root %s has a parent: %w", root.ID, ErrCycle)
	}

	for id := range m.Nodes {
		cur := id
		for steps := 0; cur != m.RootID; steps++ {
			if steps > len(m.Nodes) {
				return fmt.Errorf("node %s: %w", id, ErrCycle)
			}
			n, ok := m.Nodes[cur]
			if !ok || n.ParentID == nil {
				return fmt.Errorf("node %s: %w", id, ErrCycle)
			}
			cur = *n.ParentID
		}
	}
	return nil
}

// SortedIDs returns the node ids in lexical order. Timestamp ids of equal
// width therefore come out in creation order.
func SortedIDs(m core.MindMap) []string {
	ids := make([]string, 0, len(m.Nodes))
	for id := range m.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func childIndex(m core.MindMap) map[string][]string {
	idx := make(map[string][]string)
	for _, id := range SortedIDs(m) {
		n := m.Nodes[id]
		if n.ParentID != nil {
			idx[*n.ParentID] = append(idx[*n.ParentID], id)
		}
	}
	return idx
}

// Bounds returns the top-left and bottom-right corners of the rectangle
// enclosing every node box. An empty map yields two zero points.
func Bounds(m core.MindMap) (topLeft, bottomRight core.Point) {
	first := true
	for _, n := range m.Nodes {
		lo := core.Point{X: n.Position.X - NodeWidth/2, Y: n.Position.Y - NodeHeight/2}
		hi := core.Point{X: n.Position.X + NodeWidth/2, Y: n.Position.Y + NodeHeight/2}
		if first {
			topLeft, bottomRight = lo, hi
			first = false
			continue
		}
		topLeft.X = math.Min(topLeft.X, lo.X)
		topLeft.Y = math.Min(topLeft.Y, lo.Y)
		bottomRight.X = math.Max(bottomRight.X, hi.X)
		bottomRight.Y = math.Max(bottomRight.Y, hi.Y)
	}
	return topLeft, bottomRight
}
