package cmd

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geomap/internal/config"
	"geomap/internal/errs"
	"geomap/internal/metrics"
	"geomap/internal/style"
	"geomap/internal/tilescheme"
	"geomap/internal/tilesource"
)

// loadConfig reads the environment, then lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("tile-url", func() { cfg.TileURL = tileURL })
	set("tile-dir", func() { cfg.TileDir = tileDir })
	set("mbtiles", func() { cfg.MBTilesPath = mbtilesPath })
	set("style", func() { cfg.StylePath = stylePath })
	set("scheme", func() { cfg.SchemePath = schemePath })
	set("log-level", func() { cfg.LogLevel = logLevel })
	set("log-file", func() { cfg.LogFile = logFile })
	set("metrics-addr", func() { cfg.MetricsAddr = metricsAddr })
	set("workers", func() { cfg.Workers = workers })
	set("max-level", func() { cfg.MaxLevel = maxLevel })
	return cfg, nil
}

// newLogger builds the process logger. quiet is set for the interactive
// viewer, which owns the terminal: it logs only to a file, or not at all.
func newLogger(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	if quiet && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, errs.Configuration(err, "log level")
	}
	zc := zap.NewProductionConfig()
	if level.Level() == zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, errs.Configuration(err, "build logger")
	}
	return logger, nil
}

// openSource picks the first configured tile source: URL, then directory,
// then MBTiles. The closer is never nil.
func openSource(cfg *config.Config, logger *zap.Logger) (tilesource.Source, io.Closer, error) {
	switch {
	case cfg.TileURL != "":
		return tilesource.NewHTTPSource(cfg.TileURL, cfg.FetchTimeout, uint64(max(cfg.MaxRetries, 0)), logger), noClose, nil
	case cfg.TileDir != "":
		return tilesource.NewDirSource(cfg.TileDir), noClose, nil
	case cfg.MBTilesPath != "":
		src, err := tilesource.OpenMBTiles(cfg.MBTilesPath)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	}
	return nil, nil, errs.Configurationf("no tile source: set --tile-url, --tile-dir or --mbtiles")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noClose io.Closer = closerFunc(func() error { return nil })

func loadScheme(cfg *config.Config) (*tilescheme.Scheme, error) {
	if cfg.SchemePath == "" {
		return tilescheme.Web(tilescheme.DefaultWebLevels), nil
	}
	return tilescheme.LoadFile(cfg.SchemePath)
}

func loadStyle(cfg *config.Config) (*style.VectorTileStyle, error) {
	if cfg.StylePath == "" {
		return style.Default(), nil
	}
	return style.LoadFile(cfg.StylePath)
}

// startMetrics registers the pipeline metrics and, when an address is
// configured, serves them until ctx ends.
func startMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) *metrics.Metrics {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, logger); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}
	return m
}
