package proj

import (
	"testing"

	"geomap/internal/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebMercator(t *testing.T) {
	tests := []struct {
		name string
		in   geom.GeoPoint
		want geom.Vec2[float64]
		ok   bool
	}{
		{"origin", geom.LatLon(0, 0), geom.Vec2[float64]{}, true},
		{"east edge", geom.LatLon(0, 180), geom.Vec2[float64]{X: MercatorExtent}, true},
		{"top edge", geom.LatLon(MaxMercatorLat, 0), geom.Vec2[float64]{Y: MercatorExtent}, true},
		{"beyond top", geom.LatLon(86, 0), geom.Vec2[float64]{}, false},
		{"pole", geom.LatLon(-90, 0), geom.Vec2[float64]{}, false},
		{"invalid lon", geom.LatLon(0, 190), geom.Vec2[float64]{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WebMercator().Project(tt.in)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.want.X, got.X, 1)
			assert.InDelta(t, tt.want.Y, got.Y, 1)
		})
	}
}

func TestInvertChainRoundTrip(t *testing.T) {
	projections := map[string]Invertible[geom.GeoPoint, geom.Vec2[float64]]{
		"mercator": WebMercator(),
		"laea":     LambertAzimuthalEqualArea(52, 10, 4321000, 3210000),
		"4326":     EPSG4326.Projection(),
	}
	points := []geom.Vec2[float64]{
		{X: 1113194.9, Y: 6446275.8},
		{X: 4321000, Y: 3210000},
		{X: -500000, Y: 250000},
		{X: 12.5, Y: 41.9},
	}
	for name, p := range projections {
		t.Run(name, func(t *testing.T) {
			roundTrip := Chain[geom.Vec2[float64], geom.GeoPoint, geom.Vec2[float64]](Invert(p), p)
			for _, pt := range points {
				if _, ok := p.Unproject(pt); !ok {
					continue
				}
				got, ok := roundTrip.Project(pt)
				require.True(t, ok)
				assert.InDelta(t, pt.X, got.X, 1e-3)
				assert.InDelta(t, pt.Y, got.Y, 1e-3)
			}
		})
	}
}

func TestChainFailsFast(t *testing.T) {
	calls := 0
	second := Func[geom.Vec2[float64], geom.Vec2[float64]](func(p geom.Vec2[float64]) (geom.Vec2[float64], bool) {
		calls++
		return p, true
	})
	c := Chain[geom.GeoPoint, geom.Vec2[float64], geom.Vec2[float64]](WebMercator(), second)

	_, ok := c.Project(geom.LatLon(89, 0))
	assert.False(t, ok)
	assert.Equal(t, 0, calls)

	_, ok = c.Project(geom.LatLon(10, 10))
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestChainInvertible(t *testing.T) {
	shift := InvertibleFunc[geom.Vec2[float64], geom.Vec2[float64]]{
		Forward: func(p geom.Vec2[float64]) (geom.Vec2[float64], bool) {
			return geom.Vec2[float64]{X: p.X + 10, Y: p.Y}, true
		},
		Inverse: func(p geom.Vec2[float64]) (geom.Vec2[float64], bool) {
			return geom.Vec2[float64]{X: p.X - 10, Y: p.Y}, true
		},
	}
	c := ChainInvertible(WebMercator(), Invertible[geom.Vec2[float64], geom.Vec2[float64]](shift))

	in := geom.LatLon(48.85, 2.35)
	out, ok := c.Project(in)
	require.True(t, ok)
	back, ok := c.Unproject(out)
	require.True(t, ok)
	assert.InDelta(t, in.Lat, back.Lat, 1e-9)
	assert.InDelta(t, in.Lon, back.Lon, 1e-9)
}

func TestInvertTwiceIsOriginal(t *testing.T) {
	p := WebMercator()
	assert.Equal(t, p, Invert(Invert(p)))
}

func TestLAEA(t *testing.T) {
	l := LambertAzimuthalEqualArea(52, 10, 4321000, 3210000)

	centre, ok := l.Project(geom.LatLon(52, 10))
	require.True(t, ok)
	assert.InDelta(t, 4321000, centre.X, 1e-6)
	assert.InDelta(t, 3210000, centre.Y, 1e-6)

	_, ok = l.Project(geom.LatLon(-52, -170))
	assert.False(t, ok, "antipode")

	_, ok = l.Unproject(geom.Vec2[float64]{X: 4321000 + 3*AuthalicRadius, Y: 3210000})
	assert.False(t, ok)
}

func TestParseCrs(t *testing.T) {
	c, err := ParseCrs("laea lat_0=52 lon_0=10 x_0=4321000 y_0=3210000")
	require.NoError(t, err)
	assert.Equal(t, LAEACrs(52, 10, 4321000, 3210000), c)
	assert.Equal(t, "laea lat_0=52 lon_0=10 x_0=4.321e+06 y_0=3.21e+06", c.String())

	c, err = ParseCrs("EPSG:4326")
	require.NoError(t, err)
	assert.Equal(t, EPSG4326, c)

	_, err = ParseCrs("EPSG:2056")
	assert.Error(t, err)
}

func TestGeometry(t *testing.T) {
	line := geom.OpenContour([]geom.GeoPoint{geom.LatLon(0, 0), geom.LatLon(10, 10)})
	got, ok := Geometry[geom.GeoPoint, geom.Vec2[float64]](line, WebMercator())
	require.True(t, ok)
	c, isLine := got.(geom.Contour[geom.Vec2[float64]])
	require.True(t, isLine)
	require.Len(t, c.Points, 2)
	assert.Greater(t, c.Points[1].X, 1e6)
	assert.False(t, c.Closed)

	bad := geom.MultiPoint[geom.GeoPoint]{geom.LatLon(0, 0), geom.LatLon(89, 0)}
	_, ok = Geometry[geom.GeoPoint, geom.Vec2[float64]](bad, WebMercator())
	assert.False(t, ok)
}
