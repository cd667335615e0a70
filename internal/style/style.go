// Package style maps vector tile features to symbols.
package style

import (
	"fmt"
	"strconv"

	"geomap/internal/mvt"
	"geomap/internal/render"
)

// PointSymbol draws point features.
type PointSymbol struct {
	Color render.Color `yaml:"color" json:"color"`
	Size  float64      `yaml:"size" json:"size"`
}

// LineSymbol strokes line features.
type LineSymbol struct {
	StrokeColor render.Color `yaml:"stroke_color" json:"stroke_color"`
	Width       float64      `yaml:"width" json:"width"`
}

// PolygonSymbol fills polygon features.
type PolygonSymbol struct {
	FillColor render.Color `yaml:"fill_color" json:"fill_color"`
}

// Symbol holds the optional per-kind symbols of a rule.
type Symbol struct {
	Point   *PointSymbol   `yaml:"point,omitempty" json:"point,omitempty"`
	Line    *LineSymbol    `yaml:"line,omitempty" json:"line,omitempty"`
	Polygon *PolygonSymbol `yaml:"polygon,omitempty" json:"polygon,omitempty"`
}

// Rule matches features by layer name and property values. An empty Layer
// matches every layer; every Properties entry must equal the feature's value
// in its string form.
type Rule struct {
	Layer      string            `yaml:"layer,omitempty" json:"layer,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
	Symbol     Symbol            `yaml:"symbol" json:"symbol"`
}

// Matches reports whether the rule applies to a feature of the given layer.
func (r *Rule) Matches(layer string, props map[string]any) bool {
	if r.Layer != "" && r.Layer != layer {
		return false
	}
	for k, want := range r.Properties {
		v, ok := props[k]
		if !ok || valueString(v) != want {
			return false
		}
	}
	return true
}

// VectorTileStyle is an ordered rule list with per-kind defaults. It is
// read-only once loaded and safe to share between decode workers.
type VectorTileStyle struct {
	Rules         []Rule       `yaml:"rules" json:"rules"`
	DefaultSymbol Symbol       `yaml:"default_symbol" json:"default_symbol"`
	Background    render.Color `yaml:"background" json:"background"`
	// Selected overrides the symbol of selected features, per kind.
	Selected Symbol `yaml:"selected,omitempty" json:"selected,omitempty"`
}

// GetStyleRule returns the first rule matching the feature.
func (s *VectorTileStyle) GetStyleRule(layer string, f *mvt.Feature) (*Rule, bool) {
	for i := range s.Rules {
		if s.Rules[i].Matches(layer, f.Properties) {
			return &s.Rules[i], true
		}
	}
	return nil, false
}

// SymbolFor resolves the symbol set for a feature: the matching rule's, or
// the defaults when no rule matches. A matching rule without a symbol for
// the feature's kind hides the feature; defaults do not fill the gap.
func (s *VectorTileStyle) SymbolFor(layer string, f *mvt.Feature) Symbol {
	if r, ok := s.GetStyleRule(layer, f); ok {
		return r.Symbol
	}
	return s.DefaultSymbol
}

func valueString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
