package geom

import (
	"iter"
	"math"
)

// Segment is an ordered pair of consecutive contour points.
type Segment[P Point] struct {
	A, B P
}

// Contour is an ordered point sequence. A closed contour implicitly connects
// its last point back to the first.
type Contour[P Point] struct {
	Points []P
	Closed bool
}

// OpenContour builds a polyline.
func OpenContour[P Point](points []P) Contour[P] {
	return Contour[P]{Points: points}
}

// ClosedContour builds a ring. A trailing point equal to the first is
// dropped, the closing segment is implied.
func ClosedContour[P Point](points []P) Contour[P] {
	if n := len(points); n > 1 {
		fx, fy := points[0].XY()
		lx, ly := points[n-1].XY()
		if fx == lx && fy == ly {
			points = points[:n-1]
		}
	}
	return Contour[P]{Points: points, Closed: true}
}

// IterPoints yields the contour points in order.
func (c Contour[P]) IterPoints() iter.Seq[P] {
	return func(yield func(P) bool) {
		for _, p := range c.Points {
			if !yield(p) {
				return
			}
		}
	}
}

// IterSegments yields consecutive point pairs. Closed contours wrap around
// from the last point to the first.
func (c Contour[P]) IterSegments() iter.Seq[Segment[P]] {
	return func(yield func(Segment[P]) bool) {
		n := len(c.Points)
		if n < 2 {
			return
		}
		for i := 0; i+1 < n; i++ {
			if !yield(Segment[P]{c.Points[i], c.Points[i+1]}) {
				return
			}
		}
		if c.Closed && n > 2 {
			yield(Segment[P]{c.Points[n-1], c.Points[0]})
		}
	}
}

// BoundingRect returns the bounds of the contour points.
func (c Contour[P]) BoundingRect() (Rect, bool) {
	return BoundsOf(c.Points)
}

// DistanceTo is the shortest planar distance from (x, y) to any segment.
// A single-point contour measures to that point, an empty one is infinitely far.
func (c Contour[P]) DistanceTo(x, y float64) float64 {
	best := math.Inf(1)
	if len(c.Points) == 1 {
		px, py := c.Points[0].XY()
		return math.Hypot(px-x, py-y)
	}
	for s := range c.IterSegments() {
		d := segmentDistance(s.A, s.B, x, y)
		if d < best {
			best = d
		}
	}
	return best
}

// CastContour maps every point through f, keeping order and the Closed tag.
func CastContour[P, Q Point](c Contour[P], f func(P) Q) Contour[Q] {
	out := make([]Q, len(c.Points))
	for i, p := range c.Points {
		out[i] = f(p)
	}
	return Contour[Q]{Points: out, Closed: c.Closed}
}

func segmentDistance[P Point](a, b P, x, y float64) float64 {
	ax, ay := a.XY()
	bx, by := b.XY()
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(x-ax, y-ay)
	}
	t := ((x-ax)*dx + (y-ay)*dy) / l2
	t = max(0, min(1, t))
	return math.Hypot(x-(ax+t*dx), y-(ay+t*dy))
}
