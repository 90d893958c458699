package mindmap

import (
	"fmt"

	"github.com/aretw0/notenest/pkg/core"
)

// Connector is the cubic curve drawn from a parent to one of its children.
// Both control points sit on the horizontal midpoint, the first level with
// the parent and the second level with the child.
type Connector struct {
	ParentID string
	ChildID  string
	Start    core.Point
	C1       core.Point
	C2       core.Point
	End      core.Point
}

// Path renders the connector as an SVG path command.
func (c Connector) Path() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
}

// Connectors derives one connector per non-root node whose parent resolves.
func Connectors(m core.MindMap) []Connector {
	var out []Connector
	for _, id := range SortedIDs(m) {
		n := m.Nodes[id]
		if n.ParentID == nil {
			continue
		}
		parent, ok := m.Nodes[*n.ParentID]
		if !ok {
			continue
		}
		out = append(out, connect(parent, n))
	}
	return out
}

func connect(parent, child core.MindMapNode) Connector {
	s, e := parent.Position, child.Position
	midX := s.X + (e.X-s.X)*0.5
	return Connector{
		ParentID: parent.ID,
		ChildID:  child.ID,
		Start:    s,
		C1:       core.Point{X: midX, Y: s.Y},
		C2:       core.Point{X: midX, Y: e.Y},
		End:      e,
	}
}
