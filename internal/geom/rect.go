package geom

import "math"

// Rect is an axis-aligned bounding box.
type Rect struct {
	XMin, YMin, XMax, YMax float64
}

// NewRect returns the rect spanning both corners in any order.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		XMin: math.Min(x1, x2),
		YMin: math.Min(y1, y2),
		XMax: math.Max(x1, x2),
		YMax: math.Max(y1, y2),
	}
}

func (r Rect) Width() float64  { return r.XMax - r.XMin }
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Center returns the middle of the rect.
func (r Rect) Center() Vec2[float64] {
	return Vec2[float64]{(r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2}
}

// Extend grows the rect to include (x, y).
func (r Rect) Extend(x, y float64) Rect {
	return Rect{
		XMin: math.Min(r.XMin, x),
		YMin: math.Min(r.YMin, y),
		XMax: math.Max(r.XMax, x),
		YMax: math.Max(r.YMax, y),
	}
}

// Union returns the smallest rect covering both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		XMin: math.Min(r.XMin, o.XMin),
		YMin: math.Min(r.YMin, o.YMin),
		XMax: math.Max(r.XMax, o.XMax),
		YMax: math.Max(r.YMax, o.YMax),
	}
}

// Contains reports whether (x, y) is inside the rect or on its border.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Intersects reports whether the two rects overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.XMin <= o.XMax && o.XMin <= r.XMax && r.YMin <= o.YMax && o.YMin <= r.YMax
}

// Pad grows the rect by d on every side.
func (r Rect) Pad(d float64) Rect {
	return Rect{r.XMin - d, r.YMin - d, r.XMax + d, r.YMax + d}
}

// BoundsOf accumulates the bounding box of a point sequence.
// The second result is false when there are no points.
func BoundsOf[P Point](points []P) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	x, y := points[0].XY()
	r := Rect{x, y, x, y}
	for _, p := range points[1:] {
		r = r.Extend(p.XY())
	}
	return r, true
}

// UnionAll merges rects. The second result is false when none are given.
func UnionAll(rects ...Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out, true
}
