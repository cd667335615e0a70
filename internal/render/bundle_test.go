package render

import (
	"testing"

	"geomap/internal/geom"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) geom.Polygon[WorldPoint] {
	return geom.NewPolygon([]WorldPoint{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}})
}

func TestBundleAddKeepsOrder(t *testing.T) {
	b := NewBundle()
	p := b.AddPolygon(square(0, 0, 1, 1), PolygonPaint{Color: White}, 0)
	l := b.AddLine(geom.OpenContour([]WorldPoint{{}, {X: 1, Y: 1}}), LinePaint{Color: Black, Width: 2}, 0)
	pt := b.AddPoint(WorldPoint{X: 3, Y: 4}, PointPaint{Color: Black, Size: 3}, 10)

	require.Equal(t, 3, b.Len())
	var kinds []PrimitiveKind
	var ids []PrimitiveID
	for prim := range b.Primitives() {
		kinds = append(kinds, prim.Kind)
		ids = append(ids, prim.ID)
	}
	assert.Equal(t, []PrimitiveKind{KindPolygon, KindLine, KindPoint}, kinds)
	assert.Equal(t, []PrimitiveID{p, l, pt}, ids)

	got, ok := b.Get(pt)
	require.True(t, ok)
	assert.Equal(t, 10.0, got.MinResolution)
	assert.Equal(t, WorldPoint{X: 3, Y: 4}, got.Point)
}

func TestBundleCopiesGeometry(t *testing.T) {
	poly := square(0, 0, 1, 1)
	b := NewBundle()
	id := b.AddPolygon(poly, PolygonPaint{}, 0)
	poly.Outer.Points[0].X = 99

	got, _ := b.Get(id)
	assert.Equal(t, 0.0, got.Area.Outer.Points[0].X)
}

func TestBundleUpdate(t *testing.T) {
	b := NewBundle()
	a := b.AddPolygon(square(0, 0, 1, 1), PolygonPaint{Color: White}, 0)
	c := b.AddPolygon(square(1, 1, 2, 2), PolygonPaint{Color: White}, 0)
	line := b.AddLine(geom.OpenContour([]WorldPoint{{}, {X: 1}}), LinePaint{Color: White, Width: 1}, 0)

	red := PolygonPaint{Color: RGBA(255, 0, 0, 255)}
	require.NoError(t, b.Update([]PrimitiveID{c}, red))

	pa, _ := b.Get(a)
	pc, _ := b.Get(c)
	assert.Equal(t, PolygonPaint{Color: White}, pa.Paint)
	assert.Equal(t, red, pc.Paint)

	tests := []struct {
		name   string
		ids    []PrimitiveID
		paint  Paint
		target error
	}{
		{"wrong kind", []PrimitiveID{a, line}, red, ErrPaintKind},
		{"unknown id", []PrimitiveID{a, {bundle: b.gen, n: 42}}, red, ErrUnknownPrimitive},
		{"nil paint", []PrimitiveID{a}, nil, ErrPaintKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Update(tt.ids, tt.paint)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			// nothing changed
			pa, _ := b.Get(a)
			assert.Equal(t, PolygonPaint{Color: White}, pa.Paint)
		})
	}
}

func TestBundleRejectsForeignIDs(t *testing.T) {
	a, other := NewBundle(), NewBundle()
	id := a.AddPolygon(square(0, 0, 1, 1), PolygonPaint{Color: White}, 0)
	otherID := other.AddPolygon(square(0, 0, 1, 1), PolygonPaint{Color: White}, 0)
	require.NotEqual(t, id, otherID)

	err := other.Update([]PrimitiveID{id}, PolygonPaint{Color: Black})
	assert.True(t, errors.Is(err, ErrUnknownPrimitive))
	_, ok := other.Get(id)
	assert.False(t, ok)
	_, ok = other.Get(PrimitiveID{})
	assert.False(t, ok)

	p, ok := other.Get(otherID)
	require.True(t, ok)
	assert.Equal(t, PolygonPaint{Color: White}, p.Paint)
}

func TestBundleClip(t *testing.T) {
	b := NewBundle()
	_, ok := b.Clip()
	assert.False(t, ok)

	b.ClipArea(square(0, 0, 10, 10))
	clip, ok := b.Clip()
	require.True(t, ok)
	r, _ := clip.BoundingRect()
	assert.Equal(t, geom.Rect{XMax: 10, YMax: 10}, r)
}

func TestBundleBoundingRect(t *testing.T) {
	b := NewBundle()
	_, ok := b.BoundingRect()
	assert.False(t, ok)

	b.AddPolygon(square(0, 0, 1, 1), PolygonPaint{}, 0)
	b.AddPoint(WorldPoint{X: -5, Y: 7}, PointPaint{}, 0)
	r, ok := b.BoundingRect()
	require.True(t, ok)
	assert.Equal(t, geom.Rect{XMin: -5, YMin: 0, XMax: 1, YMax: 7}, r)
}
