package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geomap/internal/layer"
	"geomap/internal/tilesource"
	"geomap/internal/tui"
	"geomap/internal/vt"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open the interactive map viewer",
	Long: `Open the interactive map viewer, optionally with a geodata file loaded.

When a tile source is configured the visible tiles are fetched in the background
and drawn under the file features. Hovering highlights the feature under the cursor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := tui.Options{Logger: logger, MaxLevel: cfg.MaxLevel}
	if len(args) == 1 {
		opts.Path = args[0]
	}

	if cfg.HasTileSource() {
		src, closer, err := openSource(cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()
		scheme, err := loadScheme(cfg)
		if err != nil {
			return err
		}
		st, err := loadStyle(cfg)
		if err != nil {
			return err
		}
		m := startMetrics(ctx, cfg, logger)
		opts.Tiles = layer.NewTileLayer(scheme, st)
		opts.Loader = tilesource.NewLoader(src, vt.NewProcessor(logger, m), cfg.Workers, logger, m)
		logger.Info("tile basemap enabled", zap.String("source", src.Name()), zap.Int("workers", cfg.Workers))
	}

	model := tui.New(opts).WithContext(ctx)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !isCancel(ctx, err) {
		return err
	}
	return nil
}

// isCancel reports whether the program stopped because of a signal.
func isCancel(ctx context.Context, err error) bool {
	return ctx.Err() != nil && err != nil
}
