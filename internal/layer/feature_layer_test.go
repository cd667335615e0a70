package layer

import (
	"sync"
	"testing"

	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/proj"
	"geomap/internal/render"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orange = render.MustParseColor("#ff8800")

func geoSquare(lon, lat, size float64) geom.Geometry[geom.GeoPoint] {
	return geom.NewPolygon([]geom.GeoPoint{
		geom.LatLon(lat, lon),
		geom.LatLon(lat, lon+size),
		geom.LatLon(lat+size, lon+size),
		geom.LatLon(lat+size, lon),
	})
}

func squaresLayer(n int) *FeatureLayer[*GeoFeature] {
	var features []*GeoFeature
	for i := 0; i < n; i++ {
		features = append(features, NewGeoFeature(geoSquare(float64(i)*10, 0, 5), map[string]any{"i": i}))
	}
	return NewFeatureLayer[*GeoFeature](features, SelectableSymbol[*GeoFeature]{Color: orange, LineWidth: 1, PointSize: 2}, proj.EPSG4326)
}

func paints(l *FeatureLayer[*GeoFeature]) ([]render.PrimitiveID, []render.Paint) {
	var ids []render.PrimitiveID
	var ps []render.Paint
	l.View(func(b *render.Bundle) {
		for p := range b.Primitives() {
			ids = append(ids, p.ID)
			ps = append(ps, p.Paint)
		}
	})
	return ids, ps
}

func TestFeatureLayerRender(t *testing.T) {
	l := squaresLayer(3)
	ids, ps := paints(l)
	require.Len(t, ids, 3)
	for _, p := range ps {
		assert.Equal(t, render.PolygonPaint{Color: orange.WithAlpha(UnselectedAlpha)}, p)
	}
	b, ok := l.Bounds()
	require.True(t, ok)
	assert.Equal(t, geom.Rect{XMin: 0, YMin: 0, XMax: 25, YMax: 5}, b)
}

func TestFeatureLayerSelectionSwap(t *testing.T) {
	l := squaresLayer(5)
	idsBefore, before := paints(l)

	changed, err := l.Select(1)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = l.Select(1)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = l.Select(3)
	require.NoError(t, err)
	assert.True(t, changed)

	idsAfter, after := paints(l)
	assert.Equal(t, idsBefore, idsAfter)

	selected := l.PrimitiveIDs(3)
	require.Len(t, selected, 1)
	for i, id := range idsAfter {
		if id == selected[0] {
			assert.Equal(t, render.PolygonPaint{Color: orange.WithAlpha(SelectedAlpha)}, after[i])
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	f1, _ := l.Feature(1)
	f3, _ := l.Feature(3)
	assert.False(t, f1.IsSelected())
	assert.True(t, f3.IsSelected())
	idx, ok := l.Selected()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	changed, err = l.Select(-1)
	require.NoError(t, err)
	assert.True(t, changed)
	_, after = paints(l)
	assert.Equal(t, before, after)
}

func TestFeatureLayerSelectOutOfRange(t *testing.T) {
	l := squaresLayer(2)
	_, err := l.Select(2)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
	assert.True(t, errors.Is(l.UpdateFeatures([]int{5}), errs.ErrConfiguration))
}

// failingSymbol refuses to repaint one feature.
type failingSymbol struct {
	SelectableSymbol[*GeoFeature]
	failOn *GeoFeature
}

func (s *failingSymbol) Update(f *GeoFeature, ids []render.PrimitiveID, b *render.Bundle) error {
	if f == s.failOn {
		return errs.Configurationf("cannot repaint")
	}
	return s.SelectableSymbol.Update(f, ids, b)
}

func TestFeatureLayerSelectFailureKeepsState(t *testing.T) {
	sym := &failingSymbol{SelectableSymbol: SelectableSymbol[*GeoFeature]{Color: orange}}
	features := []*GeoFeature{
		NewGeoFeature(geoSquare(0, 0, 5), nil),
		NewGeoFeature(geoSquare(10, 0, 5), nil),
	}
	l := NewFeatureLayer[*GeoFeature](features, sym, proj.EPSG4326)

	_, err := l.Select(0)
	require.NoError(t, err)

	// deselecting 0 fails: nothing moves
	sym.failOn = features[0]
	changed, err := l.Select(1)
	require.Error(t, err)
	assert.False(t, changed)
	idx, ok := l.Selected()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.True(t, features[0].IsSelected())
	assert.False(t, features[1].IsSelected())

	// selecting 1 fails: 0 is released, nothing is selected
	sym.failOn = features[1]
	changed, err = l.Select(1)
	require.Error(t, err)
	assert.True(t, changed)
	_, ok = l.Selected()
	assert.False(t, ok)
	assert.False(t, features[0].IsSelected())
	assert.False(t, features[1].IsSelected())
}

func TestFeaturesAt(t *testing.T) {
	features := []*GeoFeature{
		NewGeoFeature(geoSquare(0, 0, 10), nil),
		NewGeoFeature(geom.OpenContour([]geom.GeoPoint{geom.LatLon(5, 0), geom.LatLon(5, 10)}), nil),
		NewGeoFeature(geom.PointGeom[geom.GeoPoint]{Point: geom.LatLon(20, 20)}, nil),
	}
	l := NewFeatureLayer[*GeoFeature](features, SelectableSymbol[*GeoFeature]{Color: orange}, proj.EPSG4326)

	tests := []struct {
		name string
		p    geom.Vec2[float64]
		tol  float64
		want []int
	}{
		{"polygon only", geom.Vec2[float64]{X: 2, Y: 2}, 0.1, []int{0}},
		{"line over polygon", geom.Vec2[float64]{X: 2, Y: 5.05}, 0.1, []int{1, 0}},
		{"point within tolerance", geom.Vec2[float64]{X: 20.05, Y: 20}, 0.1, []int{2}},
		{"point out of tolerance", geom.Vec2[float64]{X: 21, Y: 20}, 0.1, nil},
		{"polygon edge is outside", geom.Vec2[float64]{X: 0, Y: 2}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.FeaturesAt(tt.p, tt.tol))
		})
	}

	idx, changed, err := l.SelectAt(geom.Vec2[float64]{X: 2, Y: 2}, 0.1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, idx)

	idx, changed, err = l.SelectAt(geom.Vec2[float64]{X: 50, Y: 50}, 0.1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, -1, idx)
}

func TestUnprojectableFeatureIsSkipped(t *testing.T) {
	features := []*GeoFeature{
		NewGeoFeature(geom.PointGeom[geom.GeoPoint]{Point: geom.LatLon(89, 0)}, nil),
		NewGeoFeature(geom.PointGeom[geom.GeoPoint]{Point: geom.LatLon(10, 0)}, nil),
	}
	l := NewFeatureLayer[*GeoFeature](features, SimplePointSymbol[*GeoFeature]{Color: orange, Size: 3}, proj.EPSG3857)
	assert.Empty(t, l.PrimitiveIDs(0))
	assert.Len(t, l.PrimitiveIDs(1), 1)
	assert.Equal(t, 2, l.Len())
}

func TestSimpleSymbolsIgnoreOtherKinds(t *testing.T) {
	features := []*GeoFeature{
		NewGeoFeature(geoSquare(0, 0, 1), nil),
		NewGeoFeature(geom.OpenContour([]geom.GeoPoint{geom.LatLon(0, 0), geom.LatLon(1, 1)}), nil),
	}
	lines := NewFeatureLayer[*GeoFeature](features, SimpleLineSymbol[*GeoFeature]{Color: orange, Width: 2}, proj.EPSG4326)
	assert.Empty(t, lines.PrimitiveIDs(0))
	assert.Len(t, lines.PrimitiveIDs(1), 1)

	lines.SetSymbol(SimplePolygonSymbol[*GeoFeature]{Fill: orange})
	assert.Len(t, lines.PrimitiveIDs(0), 1)
	assert.Empty(t, lines.PrimitiveIDs(1))
}

func TestConcurrentSelectAndRead(t *testing.T) {
	l := squaresLayer(10)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				paints(l)
				l.FeaturesAt(geom.Vec2[float64]{X: 2, Y: 2}, 0)
			}
		}()
	}
	for i := 0; i < 100; i++ {
		_, err := l.Select(i % 10)
		require.NoError(t, err)
	}
	wg.Wait()

	// Exactly one feature is painted opaque.
	_, ps := paints(l)
	opaque := 0
	for _, p := range ps {
		if p.(render.PolygonPaint).Color.A == SelectedAlpha {
			opaque++
		}
	}
	assert.Equal(t, 1, opaque)
}
