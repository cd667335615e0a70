package vt

import (
	"testing"

	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/metrics"
	"geomap/internal/mvt"
	"geomap/internal/render"
	"geomap/internal/style"
	"geomap/internal/tilescheme"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	orbmvt "github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	red   = render.MustParseColor("#ff0000")
	green = render.MustParseColor("#00ff00")
	blue  = render.MustParseColor("#0000ff")
	bg    = render.MustParseColor("#101010")
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}}
}

func encode(t *testing.T, layers ...*orbmvt.Layer) []byte {
	t.Helper()
	raw, err := orbmvt.Marshal(orbmvt.Layers(layers))
	require.NoError(t, err)
	return raw
}

func layerOf(name string, geoms ...orb.Geometry) *orbmvt.Layer {
	fc := geojson.NewFeatureCollection()
	for i, g := range geoms {
		f := geojson.NewFeature(g)
		f.ID = i + 1
		fc.Append(f)
	}
	return orbmvt.NewLayer(name, fc)
}

func defaultsOnly() *style.VectorTileStyle {
	return &style.VectorTileStyle{
		Background: bg,
		DefaultSymbol: style.Symbol{
			Line:    &style.LineSymbol{StrokeColor: green, Width: 2.5},
			Polygon: &style.PolygonSymbol{FillColor: red},
		},
		Selected: style.Symbol{
			Polygon: &style.PolygonSymbol{FillColor: blue},
		},
	}
}

func decodeContext(st *style.VectorTileStyle) DecodeContext {
	return DecodeContext{
		Index:  tilescheme.Index(0, 0, 0),
		Style:  st,
		Scheme: tilescheme.Web(tilescheme.DefaultWebLevels),
		Bundle: render.NewBundle(),
	}
}

func primitivesOf(b *render.Bundle) []render.Primitive {
	var out []render.Primitive
	for p := range b.Primitives() {
		out = append(out, p)
	}
	return out
}

func TestDefaultPolygonSymbol(t *testing.T) {
	raw := encode(t, layerOf("landuse", square(10, 10, 100)))
	ctx := decodeContext(defaultsOnly())

	out, err := NewProcessor(zaptest.NewLogger(t), nil).Process(raw, ctx)
	require.NoError(t, err)
	assert.Same(t, ctx.Bundle, out.Bundle)

	prims := primitivesOf(out.Bundle)
	require.Len(t, prims, 2)
	assert.Equal(t, out.Background, prims[0].ID)
	assert.Equal(t, render.PolygonPaint{Color: bg}, prims[0].Paint)

	assert.Equal(t, render.KindPolygon, prims[1].Kind)
	assert.Equal(t, render.PolygonPaint{Color: red}, prims[1].Paint)
	assert.Equal(t, []render.PrimitiveID{prims[1].ID}, out.FeatureIDs[0][0])

	clip, ok := out.Bundle.Clip()
	require.True(t, ok)
	assert.Len(t, clip.Outer.Points, 4)
}

func TestTileIndexOutOfRange(t *testing.T) {
	raw := encode(t, layerOf("landuse", square(10, 10, 100)))
	ctx := decodeContext(defaultsOnly())

	for _, idx := range []tilescheme.TileIndex{
		tilescheme.Index(25, 0, 0),
		tilescheme.Index(-1, 0, 0),
		tilescheme.Index(1, 2, 0),
	} {
		_, err := NewProcessor(nil, nil).Process(raw, DecodeContext{Index: idx, Style: ctx.Style, Scheme: ctx.Scheme, Bundle: ctx.Bundle})
		require.Error(t, err, idx)
		assert.True(t, errors.Is(err, errs.ErrConfiguration), idx)
	}
	assert.Zero(t, ctx.Bundle.Len())
}

func TestMissingStyle(t *testing.T) {
	ctx := decodeContext(nil)
	_, err := NewProcessor(nil, nil).Process(nil, ctx)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestDefaultLineSymbol(t *testing.T) {
	raw := encode(t, layerOf("roads", orb.LineString{{0, 0}, {4096, 4096}}))
	out, err := NewProcessor(nil, nil).Process(raw, decodeContext(defaultsOnly()))
	require.NoError(t, err)

	prims := primitivesOf(out.Bundle)
	require.Len(t, prims, 2)
	line := prims[1]
	require.Equal(t, render.KindLine, line.Kind)
	assert.Equal(t, render.LinePaint{Color: green, Width: 2.5, Offset: 0, Cap: render.CapButt}, line.Paint)
	assert.False(t, line.Line.Closed)
	assert.Equal(t, out.LodResolution, line.MinResolution)

	// The tile-local corners land on the tile bbox corners.
	require.Len(t, line.Line.Points, 2)
	o := tilescheme.WebOriginX
	assert.InDelta(t, o, line.Line.Points[0].X, 1e-3)
	assert.InDelta(t, -o, line.Line.Points[0].Y, 1e-3)
	assert.InDelta(t, -o, line.Line.Points[1].X, 1e-3)
	assert.InDelta(t, o, line.Line.Points[1].Y, 1e-3)
	assert.Zero(t, line.Line.Points[1].Z)
}

func TestMalformedTile(t *testing.T) {
	ctx := decodeContext(defaultsOnly())
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	_, err := NewProcessor(nil, m).Process([]byte{0x1a, 0x05, 0x01}, ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDecode))
	assert.Zero(t, ctx.Bundle.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("decode")))
	assert.Zero(t, testutil.ToFloat64(m.TilesDecoded))
}

func TestStyleResolution(t *testing.T) {
	st := defaultsOnly()
	st.Rules = []style.Rule{
		// Matches but has no line symbol: the feature is hidden.
		{Layer: "roads", Properties: map[string]string{"class": "path"}, Symbol: style.Symbol{Polygon: &style.PolygonSymbol{FillColor: blue}}},
		{Layer: "roads", Symbol: style.Symbol{Line: &style.LineSymbol{StrokeColor: blue, Width: 4}}},
	}

	roads := geojson.NewFeatureCollection()
	path := geojson.NewFeature(orb.LineString{{0, 0}, {10, 10}})
	path.Properties["class"] = "path"
	roads.Append(path)
	roads.Append(geojson.NewFeature(orb.LineString{{0, 0}, {20, 20}}))
	pois := layerOf("poi", orb.Point{5, 5})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	out, err := NewProcessor(nil, m).Process(encode(t, orbmvt.NewLayer("roads", roads), pois), decodeContext(st))
	require.NoError(t, err)

	assert.Empty(t, out.FeatureIDs[0][0])
	require.Len(t, out.FeatureIDs[0][1], 1)
	prim, ok := out.Bundle.Get(out.FeatureIDs[0][1][0])
	require.True(t, ok)
	assert.Equal(t, render.LinePaint{Color: blue, Width: 4, Cap: render.CapButt}, prim.Paint)

	// Points are not drawn by the tile pipeline.
	assert.Empty(t, out.FeatureIDs[1][0])
	assert.Equal(t, 2, out.Bundle.Len())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TilesDecoded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PrimitivesEmitted))
}

func TestMultiPolygonEmitsOnePrimitivePerPolygon(t *testing.T) {
	raw := encode(t, layerOf("water", orb.MultiPolygon{square(0, 0, 10), square(100, 100, 10)}))
	out, err := NewProcessor(nil, nil).Process(raw, decodeContext(defaultsOnly()))
	require.NoError(t, err)
	assert.Len(t, out.FeatureIDs[0][0], 2)
}

func TestSelectionUpdatesOnlySelectedFeatures(t *testing.T) {
	var polys []orb.Geometry
	for i := 0; i < 5; i++ {
		polys = append(polys, square(float64(i)*200, 0, 100))
	}
	st := defaultsOnly()
	out, err := NewProcessor(nil, nil).Process(encode(t, layerOf("landuse", polys...)), decodeContext(st))
	require.NoError(t, err)

	before := primitivesOf(out.Bundle)
	ref := func(i int) mvt.FeatureRef { return mvt.FeatureRef{Layer: 0, Feature: i} }

	require.NoError(t, out.SetSelected(st, ref(1), true))
	id1 := out.PrimitiveIDs(ref(1))[0]
	p, _ := out.Bundle.Get(id1)
	assert.Equal(t, render.PolygonPaint{Color: blue}, p.Paint)

	require.NoError(t, out.SetSelected(st, ref(1), false))
	require.NoError(t, out.SetSelected(st, ref(3), true))

	after := primitivesOf(out.Bundle)
	require.Len(t, after, len(before))
	id3 := out.PrimitiveIDs(ref(3))[0]
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Area, after[i].Area)
		if after[i].ID == id3 {
			assert.Equal(t, render.PolygonPaint{Color: blue}, after[i].Paint)
			continue
		}
		assert.Equal(t, before[i].Paint, after[i].Paint)
	}
	assert.False(t, out.Tile.Layers[0].Features[1].Selected)
	assert.True(t, out.Tile.Layers[0].Features[3].Selected)
}

func TestRestyleUnknownFeature(t *testing.T) {
	out, err := NewProcessor(nil, nil).Process(encode(t, layerOf("landuse", square(0, 0, 10))), decodeContext(defaultsOnly()))
	require.NoError(t, err)
	err = Restyle(out, defaultsOnly(), mvt.FeatureRef{Layer: 3})
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestFeatureAt(t *testing.T) {
	raw := encode(t,
		layerOf("landuse", square(0, 0, 2048)),
		layerOf("roads", orb.LineString{{0, 3000}, {4096, 3000}}),
	)
	out, err := NewProcessor(nil, nil).Process(raw, decodeContext(defaultsOnly()))
	require.NoError(t, err)

	world := func(px, py float64) geom.Vec2[float64] {
		scale := out.TileResolution / DefaultExtent
		return geom.Vec2[float64]{X: out.BBox.XMin + px*scale, Y: out.BBox.YMax - py*scale}
	}
	pixel := out.TileResolution / DefaultExtent

	ref, ok := out.FeatureAt(world(1000, 1000), 0)
	require.True(t, ok)
	assert.Equal(t, mvt.FeatureRef{Layer: 0, Feature: 0}, ref)

	ref, ok = out.FeatureAt(world(3000, 3002), 4*pixel)
	require.True(t, ok)
	assert.Equal(t, mvt.FeatureRef{Layer: 1, Feature: 0}, ref)

	_, ok = out.FeatureAt(world(3000, 1000), pixel)
	assert.False(t, ok)

	_, ok = out.FeatureAt(geom.Vec2[float64]{X: 1e9, Y: 0}, pixel)
	assert.False(t, ok)
}

func TestToTileLocal(t *testing.T) {
	bbox := geom.Rect{XMin: 100, YMin: 0, XMax: 200, YMax: 100}
	got := ToTileLocal(geom.Vec2[float64]{X: 125, Y: 25}, bbox, 100, 4096)
	assert.InDelta(t, 1024, got.X, 1e-9)
	assert.InDelta(t, 3072, got.Y, 1e-9)

	got = ToTileLocal(geom.Vec2[float64]{X: 150, Y: 50}, bbox, 100, 0)
	assert.InDelta(t, 2048, got.X, 1e-9)
	assert.InDelta(t, 2048, got.Y, 1e-9)
}
