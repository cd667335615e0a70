package proj

import (
	"math"

	"geomap/internal/geom"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxMercatorLat is the latitude at which web mercator reaches the square extent.
const MaxMercatorLat = 85.05112878

// MercatorExtent is half the side of the web mercator square, in meters.
const MercatorExtent = orb.EarthRadius * math.Pi

type webMercator struct{}

// WebMercator projects WGS84 lat/lon to EPSG:3857 meters. Latitudes beyond
// MaxMercatorLat fail instead of being clamped.
func WebMercator() Invertible[geom.GeoPoint, geom.Vec2[float64]] { return webMercator{} }

func (webMercator) Project(p geom.GeoPoint) (geom.Vec2[float64], bool) {
	if !p.Valid() || math.Abs(p.Lat) > MaxMercatorLat {
		return geom.Vec2[float64]{}, false
	}
	m := project.WGS84.ToMercator(orb.Point{p.Lon, p.Lat})
	return geom.Vec2[float64]{X: m[0], Y: m[1]}, true
}

func (webMercator) Unproject(p geom.Vec2[float64]) (geom.GeoPoint, bool) {
	if !finite(p.X) || !finite(p.Y) || math.Abs(p.X) > MercatorExtent*(1+1e-9) {
		return geom.GeoPoint{}, false
	}
	g := project.Mercator.ToWGS84(orb.Point{p.X, p.Y})
	return geom.LatLon(g[1], g[0]), true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
