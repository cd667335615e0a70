package style

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"geomap/internal/errs"
	"geomap/internal/render"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a style sheet. Files ending in .json are decoded as JSON,
// anything else as YAML.
func LoadFile(path string) (*VectorTileStyle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Configuration(err, "read style %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(raw)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes a YAML style sheet.
func ParseYAML(raw []byte) (*VectorTileStyle, error) {
	var s VectorTileStyle
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errs.Configuration(err, "style yaml")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseJSON decodes a JSON style sheet.
func ParseJSON(raw []byte) (*VectorTileStyle, error) {
	var s VectorTileStyle
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errs.Configuration(err, "style json")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *VectorTileStyle) validate() error {
	check := func(where string, sym Symbol) error {
		if sym.Line != nil && sym.Line.Width < 0 {
			return errs.Configurationf("%s: negative line width %v", where, sym.Line.Width)
		}
		if sym.Point != nil && sym.Point.Size < 0 {
			return errs.Configurationf("%s: negative point size %v", where, sym.Point.Size)
		}
		return nil
	}
	for i, r := range s.Rules {
		if err := check("rule "+strconv.Itoa(i), r.Symbol); err != nil {
			return err
		}
	}
	if err := check("default_symbol", s.DefaultSymbol); err != nil {
		return err
	}
	return check("selected", s.Selected)
}

// Default is the built-in style for OpenMapTiles-style layer names.
func Default() *VectorTileStyle {
	c := render.MustParseColor
	return &VectorTileStyle{
		Background: c("#f2efe9"),
		Rules: []Rule{
			{Layer: "water", Symbol: Symbol{Polygon: &PolygonSymbol{FillColor: c("#a0c8f0")}}},
			{Layer: "waterway", Symbol: Symbol{Line: &LineSymbol{StrokeColor: c("#a0c8f0"), Width: 1}}},
			{Layer: "landcover", Properties: map[string]string{"class": "wood"}, Symbol: Symbol{Polygon: &PolygonSymbol{FillColor: c("#add19e")}}},
			{Layer: "landuse", Properties: map[string]string{"class": "residential"}, Symbol: Symbol{Polygon: &PolygonSymbol{FillColor: c("#e0dfdf")}}},
			{Layer: "park", Symbol: Symbol{Polygon: &PolygonSymbol{FillColor: c("#c8facc")}}},
			{Layer: "building", Symbol: Symbol{Polygon: &PolygonSymbol{FillColor: c("#d9d0c9")}}},
			{Layer: "transportation", Properties: map[string]string{"class": "motorway"}, Symbol: Symbol{Line: &LineSymbol{StrokeColor: c("#e892a2"), Width: 3}}},
			{Layer: "transportation", Symbol: Symbol{Line: &LineSymbol{StrokeColor: c("#ffffff"), Width: 1.5}}},
			{Layer: "boundary", Symbol: Symbol{Line: &LineSymbol{StrokeColor: c("#9e9cab"), Width: 1}}},
		},
		DefaultSymbol: Symbol{
			Line:    &LineSymbol{StrokeColor: c("#bbbbbb"), Width: 1},
			Polygon: &PolygonSymbol{FillColor: c("#eeeeee96")},
		},
		Selected: Symbol{
			Line:    &LineSymbol{StrokeColor: c("#ff6600"), Width: 2},
			Polygon: &PolygonSymbol{FillColor: c("#ffb380")},
		},
	}
}
