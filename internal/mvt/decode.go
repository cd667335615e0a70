package mvt

import (
	"bytes"
	"fmt"

	"geomap/internal/errs"
	"geomap/internal/geom"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Decode parses an MVT payload, gzipped or not. Any structural problem is
// reported as errs.ErrDecode and no partial tile is returned.
func Decode(raw []byte) (tile *Tile, err error) {
	defer func() {
		if r := recover(); r != nil {
			tile, err = nil, errs.Decode(fmt.Errorf("%v", r), "mvt: malformed payload")
		}
	}()

	var layers mvt.Layers
	if bytes.HasPrefix(raw, gzipMagic) {
		layers, err = mvt.UnmarshalGzipped(raw)
	} else {
		layers, err = mvt.Unmarshal(raw)
	}
	if err != nil {
		return nil, errs.Decode(err, "mvt")
	}

	tile = &Tile{Layers: make([]Layer, 0, len(layers))}
	for _, l := range layers {
		layer := Layer{
			Name:     l.Name,
			Version:  l.Version,
			Extent:   l.Extent,
			Features: make([]Feature, 0, len(l.Features)),
		}
		for i, f := range l.Features {
			feat, err := fromGeoJSON(f)
			if err != nil {
				return nil, errs.Decode(err, "mvt: layer %q feature %d", l.Name, i)
			}
			layer.Features = append(layer.Features, feat)
		}
		tile.Layers = append(tile.Layers, layer)
	}
	return tile, nil
}

func fromGeoJSON(f *geojson.Feature) (Feature, error) {
	out := Feature{Properties: map[string]any(f.Properties)}
	if out.Properties == nil {
		out.Properties = map[string]any{}
	}
	if id, ok := f.ID.(float64); ok && id >= 0 {
		out.ID, out.HasID = uint64(id), true
	}
	g, err := fromOrb(f.Geometry)
	if err != nil {
		return Feature{}, err
	}
	out.Geometry = g
	return out, nil
}

func toPoint(p orb.Point) Point {
	return Point{X: geom.FromFloat[int32](p[0]), Y: geom.FromFloat[int32](p[1])}
}

func toPoints(ps []orb.Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = toPoint(p)
	}
	return out
}

func toPolygon(p orb.Polygon) geom.Polygon[Point] {
	poly := geom.Polygon[Point]{Outer: geom.ClosedContour(toPoints(p[0]))}
	for _, r := range p[1:] {
		poly.Inner = append(poly.Inner, geom.ClosedContour(toPoints(r)))
	}
	return poly
}

func fromOrb(g orb.Geometry) (Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return Points{toPoint(g)}, nil
	case orb.MultiPoint:
		return Points(toPoints(g)), nil
	case orb.LineString:
		return LineStrings{geom.OpenContour(toPoints(g))}, nil
	case orb.MultiLineString:
		out := make(LineStrings, len(g))
		for i, ls := range g {
			out[i] = geom.OpenContour(toPoints(ls))
		}
		return out, nil
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("empty polygon")
		}
		return Polygons{toPolygon(g)}, nil
	case orb.MultiPolygon:
		out := make(Polygons, 0, len(g))
		for _, p := range g {
			if len(p) > 0 {
				out = append(out, toPolygon(p))
			}
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing geometry")
	}
	return nil, fmt.Errorf("unsupported geometry %T", g)
}
