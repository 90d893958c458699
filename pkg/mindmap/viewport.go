package mindmap

import "github.com/aretw0/notenest/pkg/core"

// Zoom limits and step.
const (
	ZoomFactor = 1.1
	MinZoom    = 0.1
	MaxZoom    = 5.0
)

// Viewport maps logical space to screen space: screen = logical*Zoom + Offset.
type Viewport struct {
	Offset core.Point
	Zoom   float64
}

// NewViewport returns the identity viewport.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// scale is the effective zoom. An unset zoom reads as 1.
func (v Viewport) scale() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// normalized returns v with an unset zoom replaced by 1.
func (v Viewport) normalized() Viewport {
	v.Zoom = v.scale()
	return v
}

// ToScreen converts a logical point to screen pixels.
func (v Viewport) ToScreen(p core.Point) core.Point {
	return p.Scale(v.scale()).Add(v.Offset)
}

// ToLogical converts a screen pixel to logical space.
func (v Viewport) ToLogical(s core.Point) core.Point {
	return s.Sub(v.Offset).Scale(1 / v.scale())
}

// ScreenDelta converts a screen-space displacement to a logical one.
func (v Viewport) ScreenDelta(d core.Point) core.Point {
	return d.Scale(1 / v.scale())
}

// Pan shifts the offset by a screen-space delta. Zoom is unaffected.
func (v Viewport) Pan(d core.Point) Viewport {
	v.Offset = v.Offset.Add(d)
	return v
}

// ZoomAt zooms in (deltaY < 0) or out (deltaY > 0) by ZoomFactor, keeping
// the logical point under pointer fixed on screen. deltaY == 0 is a no-op.
func (v Viewport) ZoomAt(pointer core.Point, deltaY float64) Viewport {
	if deltaY == 0 {
		return v
	}
	next := v.scale() / ZoomFactor
	if deltaY < 0 {
		next = v.scale() * ZoomFactor
	}
	return v.ZoomTo(pointer, next)
}

// ZoomTo sets the zoom (clamped to [MinZoom, MaxZoom]) anchored at pointer.
func (v Viewport) ZoomTo(pointer core.Point, zoom float64) Viewport {
	zoom = clamp(zoom, MinZoom, MaxZoom)
	ratio := zoom / v.scale()
	return Viewport{
		Offset: pointer.Sub(pointer.Sub(v.Offset).Scale(ratio)),
		Zoom:   zoom,
	}
}

// Recenter returns the viewport at zoom 1 that puts root in the middle of a
// width x height screen.
func Recenter(root core.Point, width, height float64) Viewport {
	return Viewport{
		Offset: core.Point{X: width/2 - root.X, Y: height/2 - root.Y},
		Zoom:   1,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
