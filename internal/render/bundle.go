// Package render holds drawable primitives and their paint. A Bundle is the
// hand-off between the tile pipeline or a feature layer and a renderer.
package render

import (
	"fmt"
	"iter"
	"sync/atomic"

	"geomap/internal/geom"

	"github.com/cockroachdb/errors"
)

// WorldPoint is a point in map coordinates. Tile geometry always has Z = 0.
type WorldPoint = geom.Vec3[float64]

var (
	// ErrUnknownPrimitive is returned by Update for an id not issued by the bundle.
	ErrUnknownPrimitive = errors.New("unknown primitive id")
	// ErrPaintKind is returned by Update when the paint does not fit the primitive.
	ErrPaintKind = errors.New("paint kind does not match primitive")
)

// PrimitiveID addresses a primitive inside the bundle that issued it. Ids
// carry their bundle, so another bundle rejects them.
type PrimitiveID struct {
	bundle uint32
	n      uint32
}

func (id PrimitiveID) String() string { return fmt.Sprintf("prim#%d.%d", id.bundle, id.n) }

// Primitive is one drawable unit.
type Primitive struct {
	ID    PrimitiveID
	Kind  PrimitiveKind
	Point WorldPoint
	Line  geom.Contour[WorldPoint]
	Area  geom.Polygon[WorldPoint]
	Paint Paint
	// MinResolution is the finest resolution the geometry was prepared for.
	// Renderers may merge vertices closer together than this.
	MinResolution float64
}

// Geometry returns the primitive shape as a geometry union member.
func (p Primitive) Geometry() geom.Geometry[WorldPoint] {
	switch p.Kind {
	case KindPoint:
		return geom.PointGeom[WorldPoint]{Point: p.Point}
	case KindLine:
		return p.Line
	default:
		return p.Area
	}
}

// Bundle is an append-only, ordered list of primitives. Insertion order is
// paint order. A Bundle is not safe for concurrent mutation; owners lock.
type Bundle struct {
	gen   uint32
	prims []Primitive
	clip  *geom.Polygon[WorldPoint]
}

var bundleSeq atomic.Uint32

// NewBundle returns an empty bundle.
func NewBundle() *Bundle { return &Bundle{gen: bundleSeq.Add(1)} }

func (b *Bundle) owns(id PrimitiveID) bool {
	return id.bundle == b.gen && int(id.n) < len(b.prims)
}

func (b *Bundle) push(p Primitive) PrimitiveID {
	p.ID = PrimitiveID{bundle: b.gen, n: uint32(len(b.prims))}
	b.prims = append(b.prims, p)
	return p.ID
}

func copyContour(c geom.Contour[WorldPoint]) geom.Contour[WorldPoint] {
	return geom.CastContour(c, func(p WorldPoint) WorldPoint { return p })
}

// AddPoint appends a point primitive.
func (b *Bundle) AddPoint(p WorldPoint, paint PointPaint, minResolution float64) PrimitiveID {
	return b.push(Primitive{Kind: KindPoint, Point: p, Paint: paint, MinResolution: minResolution})
}

// AddLine appends a line primitive. The points are copied.
func (b *Bundle) AddLine(c geom.Contour[WorldPoint], paint LinePaint, minResolution float64) PrimitiveID {
	return b.push(Primitive{Kind: KindLine, Line: copyContour(c), Paint: paint, MinResolution: minResolution})
}

// AddPolygon appends a polygon primitive. The rings are copied.
func (b *Bundle) AddPolygon(p geom.Polygon[WorldPoint], paint PolygonPaint, minResolution float64) PrimitiveID {
	area := geom.CastPolygon(p, func(p WorldPoint) WorldPoint { return p })
	return b.push(Primitive{Kind: KindPolygon, Area: area, Paint: paint, MinResolution: minResolution})
}

// AddPoints appends one point primitive per point.
func (b *Bundle) AddPoints(ps []WorldPoint, paint PointPaint, minResolution float64) []PrimitiveID {
	ids := make([]PrimitiveID, len(ps))
	for i, p := range ps {
		ids[i] = b.AddPoint(p, paint, minResolution)
	}
	return ids
}

// AddLines appends one line primitive per contour.
func (b *Bundle) AddLines(cs []geom.Contour[WorldPoint], paint LinePaint, minResolution float64) []PrimitiveID {
	ids := make([]PrimitiveID, len(cs))
	for i, c := range cs {
		ids[i] = b.AddLine(c, paint, minResolution)
	}
	return ids
}

// AddPolygons appends one polygon primitive per polygon.
func (b *Bundle) AddPolygons(ps []geom.Polygon[WorldPoint], paint PolygonPaint, minResolution float64) []PrimitiveID {
	ids := make([]PrimitiveID, len(ps))
	for i, p := range ps {
		ids[i] = b.AddPolygon(p, paint, minResolution)
	}
	return ids
}

// ClipArea bounds everything in the bundle to p.
func (b *Bundle) ClipArea(p geom.Polygon[WorldPoint]) {
	clip := geom.CastPolygon(p, func(p WorldPoint) WorldPoint { return p })
	b.clip = &clip
}

// Clip returns the clip polygon, if one was set.
func (b *Bundle) Clip() (geom.Polygon[WorldPoint], bool) {
	if b.clip == nil {
		return geom.Polygon[WorldPoint]{}, false
	}
	return *b.clip, true
}

// Update replaces the paint of every listed primitive. Geometry and order
// are untouched. All ids are checked before anything changes, so on error
// the bundle is left as it was.
func (b *Bundle) Update(ids []PrimitiveID, paint Paint) error {
	if paint == nil {
		return errors.Wrap(ErrPaintKind, "nil paint")
	}
	for _, id := range ids {
		if !b.owns(id) {
			return errors.Wrapf(ErrUnknownPrimitive, "%s", id)
		}
		if k := b.prims[id.n].Kind; k != paint.Kind() {
			return errors.Wrapf(ErrPaintKind, "%s is a %s, got %s paint", id, k, paint.Kind())
		}
	}
	for _, id := range ids {
		b.prims[id.n].Paint = paint
	}
	return nil
}

// Len is the number of primitives.
func (b *Bundle) Len() int { return len(b.prims) }

// Get returns the primitive with the given id.
func (b *Bundle) Get(id PrimitiveID) (Primitive, bool) {
	if !b.owns(id) {
		return Primitive{}, false
	}
	return b.prims[id.n], true
}

// Primitives yields primitives in paint order.
func (b *Bundle) Primitives() iter.Seq[Primitive] {
	return func(yield func(Primitive) bool) {
		for _, p := range b.prims {
			if !yield(p) {
				return
			}
		}
	}
}

// BoundingRect covers every primitive.
func (b *Bundle) BoundingRect() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, p := range b.prims {
		if r, ok := p.Geometry().BoundingRect(); ok {
			rects = append(rects, r)
		}
	}
	return geom.UnionAll(rects...)
}
