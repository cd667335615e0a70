package geom

import (
	"fmt"
	"math"
)

// Kind identifies the arm of the Geometry union.
type Kind uint8

const (
	KindPoint Kind = iota + 1
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindMultiPoint:
		return "MultiPoint"
	case KindLineString:
		return "LineString"
	case KindMultiLineString:
		return "MultiLineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Geometry is a closed union over the six simple-feature kinds. Only types in
// this package implement it.
type Geometry[P Point] interface {
	Kind() Kind
	BoundingRect() (Rect, bool)
	// Contains reports a hit: polygons by area, points and lines when within
	// tolerance of pt.
	Contains(pt Point, tolerance float64) bool
	// Parts is the number of simple pieces (rings count once per polygon).
	Parts() int
	sealed()
}

// PointGeom is a single point geometry.
type PointGeom[P Point] struct {
	Point P
}

// MultiPoint is a set of points.
type MultiPoint[P Point] []P

// MultiLineString is a set of open contours.
type MultiLineString[P Point] []Contour[P]

// MultiPolygon is a set of polygons.
type MultiPolygon[P Point] []Polygon[P]

func (PointGeom[P]) Kind() Kind       { return KindPoint }
func (MultiPoint[P]) Kind() Kind      { return KindMultiPoint }
func (Contour[P]) Kind() Kind         { return KindLineString }
func (MultiLineString[P]) Kind() Kind { return KindMultiLineString }
func (Polygon[P]) Kind() Kind         { return KindPolygon }
func (MultiPolygon[P]) Kind() Kind    { return KindMultiPolygon }

func (PointGeom[P]) sealed()       {}
func (MultiPoint[P]) sealed()      {}
func (Contour[P]) sealed()         {}
func (MultiLineString[P]) sealed() {}
func (Polygon[P]) sealed()         {}
func (MultiPolygon[P]) sealed()    {}

func (g PointGeom[P]) Parts() int       { return 1 }
func (g MultiPoint[P]) Parts() int      { return len(g) }
func (c Contour[P]) Parts() int         { return 1 }
func (g MultiLineString[P]) Parts() int { return len(g) }
func (p Polygon[P]) Parts() int         { return 1 }
func (g MultiPolygon[P]) Parts() int    { return len(g) }

func (g PointGeom[P]) BoundingRect() (Rect, bool) {
	x, y := g.Point.XY()
	return Rect{x, y, x, y}, true
}

func (g MultiPoint[P]) BoundingRect() (Rect, bool) { return BoundsOf([]P(g)) }

func (g MultiLineString[P]) BoundingRect() (Rect, bool) {
	return unionBounds(len(g), func(i int) (Rect, bool) { return g[i].BoundingRect() })
}

func (g MultiPolygon[P]) BoundingRect() (Rect, bool) {
	return unionBounds(len(g), func(i int) (Rect, bool) { return g[i].BoundingRect() })
}

func (g PointGeom[P]) Contains(pt Point, tolerance float64) bool {
	return Distance(g.Point, pt) <= tolerance
}

func (g MultiPoint[P]) Contains(pt Point, tolerance float64) bool {
	for _, p := range g {
		if Distance(p, pt) <= tolerance {
			return true
		}
	}
	return false
}

func (c Contour[P]) Contains(pt Point, tolerance float64) bool {
	x, y := pt.XY()
	return c.DistanceTo(x, y) <= tolerance
}

func (g MultiLineString[P]) Contains(pt Point, tolerance float64) bool {
	for _, c := range g {
		if c.Contains(pt, tolerance) {
			return true
		}
	}
	return false
}

func (p Polygon[P]) Contains(pt Point, _ float64) bool {
	return p.ContainsPoint(pt)
}

func (g MultiPolygon[P]) Contains(pt Point, _ float64) bool {
	for _, p := range g {
		if p.ContainsPoint(pt) {
			return true
		}
	}
	return false
}

// CastGeometry maps every point of g through f, keeping the kind and structure.
func CastGeometry[P, Q Point](g Geometry[P], f func(P) Q) Geometry[Q] {
	switch g := g.(type) {
	case PointGeom[P]:
		return PointGeom[Q]{Point: f(g.Point)}
	case MultiPoint[P]:
		out := make(MultiPoint[Q], len(g))
		for i, p := range g {
			out[i] = f(p)
		}
		return out
	case Contour[P]:
		return CastContour(g, f)
	case MultiLineString[P]:
		out := make(MultiLineString[Q], len(g))
		for i, c := range g {
			out[i] = CastContour(c, f)
		}
		return out
	case Polygon[P]:
		return CastPolygon(g, f)
	case MultiPolygon[P]:
		out := make(MultiPolygon[Q], len(g))
		for i, p := range g {
			out[i] = CastPolygon(p, f)
		}
		return out
	}
	panic(fmt.Sprintf("geom: unexpected geometry %T", g))
}

func unionBounds(n int, at func(int) (Rect, bool)) (Rect, bool) {
	out := Rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	found := false
	for i := 0; i < n; i++ {
		if r, ok := at(i); ok {
			out = out.Union(r)
			found = true
		}
	}
	return out, found
}
