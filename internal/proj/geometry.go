package proj

import "geomap/internal/geom"

// Geometry projects every point of g. It fails as a whole when any point
// falls outside the projection's domain.
func Geometry[In, Out geom.Point](g geom.Geometry[In], p Projection[In, Out]) (geom.Geometry[Out], bool) {
	ok := true
	out := geom.CastGeometry(g, func(pt In) Out {
		v, good := p.Project(pt)
		if !good {
			ok = false
		}
		return v
	})
	if !ok {
		return nil, false
	}
	return out, true
}
