package cmd

import (
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/layer"
	"geomap/internal/render"
	"geomap/internal/render/raster"
	"geomap/internal/tilescheme"
	"geomap/internal/tilesource"
	"geomap/internal/view"
	"geomap/internal/vt"
)

var (
	renderOut  string
	renderSize int
	renderData string
)

var renderCmd = &cobra.Command{
	Use:   "render [z/x/y...]",
	Short: "Render tiles and geodata to a PNG",
	Long: `Render one or more tiles from the configured source, and optionally a geodata
file on top, into a PNG framed on their combined extent.`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOut, "out", "o", "map.png", "output PNG path")
	f.IntVar(&renderSize, "size", 512, "width and height of the image in pixels")
	f.StringVar(&renderData, "data", "", "geodata file to draw over the tiles")
}

func runRender(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && renderData == "" {
		return errs.Configurationf("nothing to render: pass tile indices or --data")
	}
	if renderSize <= 0 {
		return errs.Configurationf("size must be positive, got %d", renderSize)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	ctx := cmd.Context()

	scheme, err := loadScheme(cfg)
	if err != nil {
		return err
	}
	st, err := loadStyle(cfg)
	if err != nil {
		return err
	}

	var (
		bundles []*render.Bundle
		extent  []geom.Rect
	)
	if len(args) > 0 {
		tiles := make([]tilescheme.TileIndex, 0, len(args))
		for _, a := range args {
			idx, err := tilescheme.ParseIndex(a)
			if err != nil {
				return err
			}
			bbox, ok := scheme.TileBBox(idx)
			if !ok {
				return errs.Configurationf("tile %s is outside the tile scheme", idx)
			}
			tiles = append(tiles, idx)
			extent = append(extent, bbox)
		}
		src, closer, err := openSource(cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		m := startMetrics(ctx, cfg, logger)
		tl := layer.NewTileLayer(scheme, st)
		loader := tilesource.NewLoader(src, vt.NewProcessor(logger, m), cfg.Workers, logger, m)
		n, err := loader.LoadInto(ctx, tl, tiles)
		if err != nil {
			// Tiles that did load are still drawn.
			logger.Warn("some tiles failed", zap.Int("loaded", n), zap.Int("requested", len(tiles)), zap.Error(err))
			if n == 0 {
				return err
			}
		}
		bundles = append(bundles, tl.Bundles()...)
	}

	if renderData != "" {
		d, err := geom.LoadFile(renderData)
		if err != nil {
			return err
		}
		fl := layer.NewFeatureLayer(layer.FromData(d), dataSymbol, scheme.Crs())
		if b, ok := fl.Bounds(); ok {
			extent = append(extent, b)
		}
		fl.View(func(b *render.Bundle) { bundles = append(bundles, b) })
	}

	bounds, ok := geom.UnionAll(extent...)
	if !ok {
		return errs.Configurationf("nothing to frame")
	}
	v := view.New(geom.Vec2[float64]{}, 0, renderSize, renderSize, scheme.Crs()).Fit(bounds, 0)
	img := raster.Render(v, st.Background.WithAlpha(255), bundles...)

	f, err := os.Create(renderOut)
	if err != nil {
		return errs.IO(err, "create %s", renderOut)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errs.IO(err, "encode %s", renderOut)
	}
	logger.Info("rendered", zap.String("out", renderOut), zap.Int("bundles", len(bundles)))
	return nil
}

// dataSymbol draws geodata files over the basemap.
var dataSymbol layer.Symbol[*layer.GeoFeature] = layer.SelectableSymbol[*layer.GeoFeature]{
	Color:     render.MustParseColor("#e11d48"),
	LineWidth: 2,
	PointSize: 6,
}
