package proj

import (
	"math"

	"geomap/internal/geom"
)

// AuthalicRadius is the radius of the sphere with the same surface area as
// the WGS84 ellipsoid.
const AuthalicRadius = 6371007.181

// LAEA is the spherical Lambert azimuthal equal-area projection centred at
// (Lat0, Lon0) with false easting X0 and false northing Y0.
type LAEA struct {
	Lat0, Lon0 float64
	X0, Y0     float64
	Radius     float64

	sinLat0, cosLat0 float64
}

// LambertAzimuthalEqualArea builds an LAEA projection on the authalic sphere.
func LambertAzimuthalEqualArea(lat0, lon0, x0, y0 float64) *LAEA {
	phi0 := lat0 * math.Pi / 180
	return &LAEA{
		Lat0: lat0, Lon0: lon0, X0: x0, Y0: y0,
		Radius:  AuthalicRadius,
		sinLat0: math.Sin(phi0),
		cosLat0: math.Cos(phi0),
	}
}

// Project fails at the antipode of the centre, where the projection is undefined.
func (l *LAEA) Project(p geom.GeoPoint) (geom.Vec2[float64], bool) {
	if !p.Valid() {
		return geom.Vec2[float64]{}, false
	}
	phi := p.Lat * math.Pi / 180
	dLam := (p.Lon - l.Lon0) * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	sinDl, cosDl := math.Sincos(dLam)

	denom := 1 + l.sinLat0*sinPhi + l.cosLat0*cosPhi*cosDl
	if denom <= 1e-12 {
		return geom.Vec2[float64]{}, false
	}
	k := math.Sqrt(2 / denom)
	x := l.Radius * k * cosPhi * sinDl
	y := l.Radius * k * (l.cosLat0*sinPhi - l.sinLat0*cosPhi*cosDl)
	return geom.Vec2[float64]{X: x + l.X0, Y: y + l.Y0}, true
}

// Unproject fails for points outside the projected disc of radius 2R.
func (l *LAEA) Unproject(p geom.Vec2[float64]) (geom.GeoPoint, bool) {
	x, y := p.X-l.X0, p.Y-l.Y0
	rho := math.Hypot(x, y)
	if !finite(rho) {
		return geom.GeoPoint{}, false
	}
	if rho == 0 {
		return geom.LatLon(l.Lat0, l.Lon0), true
	}
	s := rho / (2 * l.Radius)
	if s > 1 {
		return geom.GeoPoint{}, false
	}
	c := 2 * math.Asin(s)
	sinC, cosC := math.Sincos(c)

	phi := math.Asin(cosC*l.sinLat0 + y*sinC*l.cosLat0/rho)
	lam := math.Atan2(x*sinC, rho*l.cosLat0*cosC-y*l.sinLat0*sinC)

	lon := l.Lon0 + lam*180/math.Pi
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return geom.LatLon(phi*180/math.Pi, lon), true
}
