package tilescheme

import (
	"os"
	"strings"

	"geomap/internal/errs"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of a tile matrix set. Either Resolutions or
// TopResolution with Levels must be given; the latter halves per level.
type Config struct {
	Crs    string `yaml:"crs"`
	Origin struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"origin"`
	Bounds struct {
		XMin float64 `yaml:"xmin"`
		YMin float64 `yaml:"ymin"`
		XMax float64 `yaml:"xmax"`
		YMax float64 `yaml:"ymax"`
	} `yaml:"bounds"`
	TileWidth     int       `yaml:"tile_width"`
	TileHeight    int       `yaml:"tile_height"`
	YDirection    string    `yaml:"y_direction"`
	Resolutions   []float64 `yaml:"resolutions"`
	TopResolution float64   `yaml:"top_resolution"`
	Levels        int       `yaml:"levels"`
}

func (c Config) levels() ([]float64, error) {
	if len(c.Resolutions) > 0 {
		if c.TopResolution != 0 {
			return nil, errs.Configurationf("set either resolutions or top_resolution, not both")
		}
		return c.Resolutions, nil
	}
	if c.Levels <= 0 {
		return nil, errs.Configurationf("levels must be positive when resolutions are not listed")
	}
	out := make([]float64, c.Levels)
	r := c.TopResolution
	for i := range out {
		out[i] = r
		r /= 2
	}
	return out, nil
}

func parseDirection(s string) (VerticalDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top_to_bottom", "down":
		return TopToBottom, nil
	case "bottom_to_top", "up", "tms":
		return BottomToTop, nil
	}
	return 0, errs.Configurationf("unknown y_direction %q", s)
}

// Parse decodes a YAML tile matrix set.
func Parse(raw []byte) (*Scheme, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errs.Configuration(err, "tile scheme yaml")
	}
	if cfg.TileWidth == 0 {
		cfg.TileWidth = WebTileSize
	}
	if cfg.TileHeight == 0 {
		cfg.TileHeight = cfg.TileWidth
	}
	return New(cfg)
}

// LoadFile reads a YAML tile matrix set from disk.
func LoadFile(path string) (*Scheme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Configuration(err, "read tile scheme %s", path)
	}
	return Parse(raw)
}
