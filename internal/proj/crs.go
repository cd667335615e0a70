package proj

import (
	"fmt"

	"geomap/internal/errs"
	"geomap/internal/geom"
)

// CrsKind enumerates the supported projection types.
type CrsKind uint8

const (
	KindWebMercator CrsKind = iota
	KindEquirectangular
	KindLAEA
)

// Crs is a coordinate reference system: WGS84 datum plus a projection.
type Crs struct {
	Kind CrsKind
	// LAEA parameters, ignored by other kinds.
	Lat0, Lon0, X0, Y0 float64
}

var (
	// EPSG3857 is web mercator.
	EPSG3857 = Crs{Kind: KindWebMercator}
	// EPSG4326 is plain lon/lat used as planar x/y.
	EPSG4326 = Crs{Kind: KindEquirectangular}
)

// LAEACrs returns a Lambert azimuthal equal-area CRS.
func LAEACrs(lat0, lon0, x0, y0 float64) Crs {
	return Crs{Kind: KindLAEA, Lat0: lat0, Lon0: lon0, X0: x0, Y0: y0}
}

// Projection returns the geographic to planar projection of the CRS.
func (c Crs) Projection() Invertible[geom.GeoPoint, geom.Vec2[float64]] {
	switch c.Kind {
	case KindEquirectangular:
		return equirectangular
	case KindLAEA:
		return LambertAzimuthalEqualArea(c.Lat0, c.Lon0, c.X0, c.Y0)
	default:
		return WebMercator()
	}
}

func (c Crs) String() string {
	switch c.Kind {
	case KindEquirectangular:
		return "EPSG:4326"
	case KindLAEA:
		return fmt.Sprintf("laea lat_0=%g lon_0=%g x_0=%g y_0=%g", c.Lat0, c.Lon0, c.X0, c.Y0)
	default:
		return "EPSG:3857"
	}
}

// ParseCrs accepts "EPSG:3857", "EPSG:4326" or "laea lat_0=.. lon_0=.. x_0=.. y_0=..".
func ParseCrs(s string) (Crs, error) {
	switch s {
	case "", "EPSG:3857", "epsg:3857", "3857":
		return EPSG3857, nil
	case "EPSG:4326", "epsg:4326", "4326":
		return EPSG4326, nil
	}
	var c Crs
	if _, err := fmt.Sscanf(s, "laea lat_0=%g lon_0=%g x_0=%g y_0=%g", &c.Lat0, &c.Lon0, &c.X0, &c.Y0); err != nil {
		return Crs{}, errs.Configuration(err, "unsupported crs %q", s)
	}
	c.Kind = KindLAEA
	return c, nil
}

var equirectangular = InvertibleFunc[geom.GeoPoint, geom.Vec2[float64]]{
	Forward: func(p geom.GeoPoint) (geom.Vec2[float64], bool) {
		if !p.Valid() {
			return geom.Vec2[float64]{}, false
		}
		return geom.Vec2[float64]{X: p.Lon, Y: p.Lat}, true
	},
	Inverse: func(p geom.Vec2[float64]) (geom.GeoPoint, bool) {
		g := geom.LatLon(p.Y, p.X)
		return g, g.Valid()
	},
}
