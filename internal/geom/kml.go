package geom

import (
	"bytes"
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlRing struct {
	Ring kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlRing   `xml:"outerBoundaryIs"`
	Inner []kmlRing `xml:"innerBoundaryIs"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	Name       string      `xml:"name"`
	Point      *kmlCoords  `xml:"Point"`
	LineString *kmlCoords  `xml:"LineString"`
	Polygon    *kmlPolygon `xml:"Polygon"`
	Multi      *kmlMulti   `xml:"MultiGeometry"`
	Data       []kmlData   `xml:"ExtendedData>Data"`
}

type kmlMulti struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Polygons []kmlPolygon `xml:"Polygon"`
}

// LoadKML reads Placemarks from a KML file. Point, LineString, Polygon and
// MultiGeometry of those are supported; name and ExtendedData become properties.
// KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseKML(raw)
}

// ParseKML decodes KML bytes. Placemarks may be nested in Document/Folder.
func ParseKML(raw []byte) (Data, error) {
	var placemarks []kmlPlacemark
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, errors.Wrap(err, "kml")
		}
		placemarks = append(placemarks, pm)
	}

	var d Data
	for _, pm := range placemarks {
		props := map[string]any{}
		if pm.Name != "" {
			props["name"] = pm.Name
		}
		for _, kv := range pm.Data {
			props[kv.Name] = strings.TrimSpace(kv.Value)
		}
		for _, g := range pm.geometries() {
			d.add(g, props)
		}
	}
	if len(d.Features) == 0 {
		return Data{}, errors.New("kml: no placemarks found")
	}
	return d, nil
}

func (pm kmlPlacemark) geometries() []Geometry[GeoPoint] {
	var out []Geometry[GeoPoint]
	if pm.Point != nil {
		if pts := parseKMLCoords(pm.Point.Coordinates); len(pts) > 0 {
			out = append(out, PointGeom[GeoPoint]{Point: pts[0]})
		}
	}
	if pm.LineString != nil {
		if pts := parseKMLCoords(pm.LineString.Coordinates); len(pts) > 1 {
			out = append(out, OpenContour(pts))
		}
	}
	if pm.Polygon != nil {
		if poly, ok := pm.Polygon.polygon(); ok {
			out = append(out, poly)
		}
	}
	if m := pm.Multi; m != nil {
		var mp MultiPoint[GeoPoint]
		for _, p := range m.Points {
			mp = append(mp, parseKMLCoords(p.Coordinates)...)
		}
		if len(mp) > 0 {
			out = append(out, mp)
		}
		var ml MultiLineString[GeoPoint]
		for _, l := range m.Lines {
			if pts := parseKMLCoords(l.Coordinates); len(pts) > 1 {
				ml = append(ml, OpenContour(pts))
			}
		}
		if len(ml) > 0 {
			out = append(out, ml)
		}
		var mpoly MultiPolygon[GeoPoint]
		for _, p := range m.Polygons {
			if poly, ok := p.polygon(); ok {
				mpoly = append(mpoly, poly)
			}
		}
		if len(mpoly) > 0 {
			out = append(out, mpoly)
		}
	}
	return out
}

func (p kmlPolygon) polygon() (Polygon[GeoPoint], bool) {
	outer := parseKMLCoords(p.Outer.Ring.Coordinates)
	if len(outer) < 3 {
		return Polygon[GeoPoint]{}, false
	}
	var holes [][]GeoPoint
	for _, r := range p.Inner {
		if h := parseKMLCoords(r.Ring.Coordinates); len(h) >= 3 {
			holes = append(holes, h)
		}
	}
	return NewPolygon(outer, holes...), true
}

// parseKMLCoords splits whitespace-separated "lon,lat[,alt]" tuples.
func parseKMLCoords(s string) []GeoPoint {
	var out []GeoPoint
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, LatLon(lat, lon))
	}
	return out
}
