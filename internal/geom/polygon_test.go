package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) []Vec2[float64] {
	return []Vec2[float64]{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func TestPolygonContainsPoint(t *testing.T) {
	donut := NewPolygon(square(0, 0, 10, 10), square(4, 4, 6, 6))

	tests := []struct {
		name string
		pt   Vec2[float64]
		want bool
	}{
		{"inside ring", Vec2[float64]{2, 2}, true},
		{"inside hole", Vec2[float64]{5, 5}, false},
		{"outside", Vec2[float64]{11, 5}, false},
		{"on outer edge", Vec2[float64]{0, 5}, false},
		{"on outer vertex", Vec2[float64]{10, 10}, false},
		{"on hole edge", Vec2[float64]{4, 5}, false},
		{"between hole and outer", Vec2[float64]{8, 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, donut.ContainsPoint(tt.pt))
		})
	}
}

func TestPolygonContainsIntegerPoints(t *testing.T) {
	poly := NewPolygon([]Vec2[int32]{{0, 0}, {4096, 0}, {4096, 4096}, {0, 4096}})
	assert.True(t, poly.ContainsPoint(Vec2[int32]{100, 100}))
	assert.False(t, poly.ContainsPoint(Vec2[int32]{5000, 100}))
	assert.True(t, poly.ContainsPoint(Vec2[float64]{0.5, 0.5}))
}

func TestNewPolygonDropsClosingPoint(t *testing.T) {
	pts := append(square(0, 0, 1, 1), Vec2[float64]{0, 0})
	poly := NewPolygon(pts)
	assert.Len(t, poly.Outer.Points, 4)
	assert.True(t, poly.Outer.Closed)

	var segs int
	for range poly.IterSegments() {
		segs++
	}
	assert.Equal(t, 4, segs)
}

func TestCastPolygonIdentity(t *testing.T) {
	src := NewPolygon(square(0, 0, 10, 10), square(2, 2, 3, 3), square(6, 6, 8, 8))
	out := CastPolygon(src, func(p Vec2[float64]) Vec2[float64] { return p })
	assert.Equal(t, src, out)

	noHoles := NewPolygon(square(0, 0, 1, 1))
	assert.Nil(t, CastPolygon(noHoles, func(p Vec2[float64]) Vec2[float64] { return p }).Inner)
}

func TestCastPolygonPreservesOrder(t *testing.T) {
	src := NewPolygon(square(0, 0, 10, 10), square(2, 2, 3, 3))
	out := CastPolygon(src, func(p Vec2[float64]) Vec3[float64] { return p.To3(7) })
	require.Len(t, out.Inner, 1)
	for i, p := range src.Outer.Points {
		assert.Equal(t, p.X, out.Outer.Points[i].X)
		assert.Equal(t, p.Y, out.Outer.Points[i].Y)
		assert.Equal(t, 7.0, out.Outer.Points[i].Z)
	}
	// input untouched
	assert.Equal(t, Vec2[float64]{2, 2}, src.Inner[0].Points[0])
}

func TestPolygonBoundingRect(t *testing.T) {
	poly := NewPolygon(square(-3, 1, 5, 9), square(0, 2, 1, 3))
	r, ok := poly.BoundingRect()
	require.True(t, ok)
	assert.Equal(t, Rect{-3, 1, 5, 9}, r)

	_, ok = Polygon[Vec2[float64]]{}.BoundingRect()
	assert.False(t, ok)
}
