package geom

import "iter"

// Polygon is one outer ring plus zero or more holes. Holes are expected to lie
// inside the outer ring and not to overlap each other; this is not checked.
type Polygon[P Point] struct {
	Outer Contour[P]
	Inner []Contour[P]
}

// NewPolygon builds a polygon, marking every ring closed.
func NewPolygon[P Point](outer []P, holes ...[]P) Polygon[P] {
	poly := Polygon[P]{Outer: ClosedContour(outer)}
	for _, h := range holes {
		poly.Inner = append(poly.Inner, ClosedContour(h))
	}
	return poly
}

// IterContours yields the outer ring first, then the holes in order.
func (p Polygon[P]) IterContours() iter.Seq[Contour[P]] {
	return func(yield func(Contour[P]) bool) {
		if !yield(p.Outer) {
			return
		}
		for _, c := range p.Inner {
			if !yield(c) {
				return
			}
		}
	}
}

// IterSegments yields the segments of every ring, outer first.
func (p Polygon[P]) IterSegments() iter.Seq[Segment[P]] {
	return func(yield func(Segment[P]) bool) {
		for c := range p.IterContours() {
			for s := range c.IterSegments() {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// BoundingRect is the bounds of the outer ring; holes cannot extend past it.
func (p Polygon[P]) BoundingRect() (Rect, bool) {
	return p.Outer.BoundingRect()
}

// ContainsPoint applies the even-odd rule over all rings, so a point inside a
// hole is outside the polygon. Points exactly on any ring edge count as
// outside, which keeps shared edges between adjacent tiles from matching twice.
func (p Polygon[P]) ContainsPoint(pt Point) bool {
	x, y := pt.XY()
	inside := false
	for c := range p.IterContours() {
		if onBoundary(c, x, y) {
			return false
		}
		if crossings(c, x, y)%2 == 1 {
			inside = !inside
		}
	}
	return inside
}

// CastPolygon maps every point through f. Ring order, hole order and point
// order are preserved and the input is left untouched.
func CastPolygon[P, Q Point](p Polygon[P], f func(P) Q) Polygon[Q] {
	out := Polygon[Q]{Outer: CastContour(p.Outer, f)}
	if len(p.Inner) > 0 {
		out.Inner = make([]Contour[Q], len(p.Inner))
		for i, c := range p.Inner {
			out.Inner[i] = CastContour(c, f)
		}
	}
	return out
}

// crossings counts edges of the ring crossed by a ray from (x, y) towards +x.
func crossings[P Point](c Contour[P], x, y float64) int {
	n := len(c.Points)
	if n < 3 {
		return 0
	}
	count := 0
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := c.Points[i].XY()
		xj, yj := c.Points[j].XY()
		if (yi > y) != (yj > y) {
			xc := xj + (y-yj)*(xi-xj)/(yi-yj)
			if x < xc {
				count++
			}
		}
	}
	return count
}

func onBoundary[P Point](c Contour[P], x, y float64) bool {
	ring := c
	ring.Closed = true
	for s := range ring.IterSegments() {
		if onSegment(s.A, s.B, x, y) {
			return true
		}
	}
	if len(c.Points) == 1 {
		px, py := c.Points[0].XY()
		return px == x && py == y
	}
	return false
}

func onSegment[P Point](a, b P, x, y float64) bool {
	ax, ay := a.XY()
	bx, by := b.XY()
	cross := (bx-ax)*(y-ay) - (by-ay)*(x-ax)
	if cross != 0 {
		return false
	}
	return x >= min(ax, bx) && x <= max(ax, bx) && y >= min(ay, by) && y <= max(ay, by)
}
