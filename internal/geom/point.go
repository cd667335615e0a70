package geom

import "math"

// Number is the coordinate value capability: ordered arithmetic, a zero test
// and conversion to/from float64.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

// ToFloat converts a coordinate value to float64.
func ToFloat[N Number](v N) float64 { return float64(v) }

// FromFloat converts a float64 to N. Integer targets are rounded to nearest.
func FromFloat[N Number](v float64) N {
	half := 0.5
	if N(half) != 0 {
		return N(v)
	}
	return N(math.Round(v))
}

// IsZero reports whether v is the zero value of N.
func IsZero[N Number](v N) bool { return v == 0 }

// Space tags the coordinate space a point lives in.
type Space uint8

const (
	// Cartesian is a projected, planar space (map units, pixels, tile-local units).
	Cartesian Space = iota
	// Geographic is latitude/longitude on the ellipsoid.
	Geographic
)

func (s Space) String() string {
	if s == Geographic {
		return "geographic"
	}
	return "cartesian"
}

// Point is anything the geometry algorithms can read as planar coordinates.
// Geographic points report (lon, lat).
type Point interface {
	XY() (x, y float64)
	Space() Space
}

// Vec2 is a 2D cartesian point.
type Vec2[N Number] struct {
	X, Y N
}

func (p Vec2[N]) XY() (float64, float64) { return float64(p.X), float64(p.Y) }
func (p Vec2[N]) Space() Space           { return Cartesian }

func (p Vec2[N]) Add(o Vec2[N]) Vec2[N] { return Vec2[N]{p.X + o.X, p.Y + o.Y} }
func (p Vec2[N]) Sub(o Vec2[N]) Vec2[N] { return Vec2[N]{p.X - o.X, p.Y - o.Y} }
func (p Vec2[N]) IsZero() bool          { return IsZero(p.X) && IsZero(p.Y) }

// To3 lifts the point into 3D with the given z.
func (p Vec2[N]) To3(z N) Vec3[N] { return Vec3[N]{p.X, p.Y, z} }

// Vec3 is a 3D cartesian point. Planar algorithms ignore Z.
type Vec3[N Number] struct {
	X, Y, Z N
}

func (p Vec3[N]) XY() (float64, float64) { return float64(p.X), float64(p.Y) }
func (p Vec3[N]) Space() Space           { return Cartesian }

func (p Vec3[N]) Add(o Vec3[N]) Vec3[N] { return Vec3[N]{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p Vec3[N]) Sub(o Vec3[N]) Vec3[N] { return Vec3[N]{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }
func (p Vec3[N]) IsZero() bool          { return IsZero(p.X) && IsZero(p.Y) && IsZero(p.Z) }

// To2 drops Z.
func (p Vec3[N]) To2() Vec2[N] { return Vec2[N]{p.X, p.Y} }

// GeoPoint is a point in geographic space, in degrees.
type GeoPoint struct {
	Lat, Lon float64
}

// LatLon builds a GeoPoint.
func LatLon(lat, lon float64) GeoPoint { return GeoPoint{Lat: lat, Lon: lon} }

func (p GeoPoint) XY() (float64, float64) { return p.Lon, p.Lat }
func (p GeoPoint) Space() Space           { return Geographic }

// Valid reports whether the point lies within [-90, 90] x [-180, 180].
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// CastVec2 converts the numeric type of a 2D point.
func CastVec2[N, M Number](p Vec2[N]) Vec2[M] {
	return Vec2[M]{FromFloat[M](float64(p.X)), FromFloat[M](float64(p.Y))}
}

// Distance is the planar distance between two points.
func Distance(a, b Point) float64 {
	ax, ay := a.XY()
	bx, by := b.XY()
	return math.Hypot(bx-ax, by-ay)
}
