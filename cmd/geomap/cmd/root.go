package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile     string
	tileURL     string
	tileDir     string
	mbtilesPath string
	stylePath   string
	schemePath  string
	logLevel    string
	logFile     string
	metricsAddr string
	workers     int
	maxLevel    int
)

var rootCmd = &cobra.Command{
	Use:   "geomap [file]",
	Short: "Terminal map viewer for vector tiles and geodata files",
	Long: `geomap draws vector tiles and geodata files (GeoJSON, WKT, CSV, KML) in the terminal.

Tiles come from an HTTP URL template, a z/x/y directory or an MBTiles file, set with
flags or GEOMAP_* environment variables (a .env file is read when present).
Without a subcommand the interactive viewer starts.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runView,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&envFile, "env", ".env", "environment file to read before GEOMAP_* variables")
	f.StringVarP(&tileURL, "tile-url", "u", "", "tile URL template with {z}, {x} and {y}")
	f.StringVar(&tileDir, "tile-dir", "", "directory of z/x/y.pbf tiles")
	f.StringVar(&mbtilesPath, "mbtiles", "", "MBTiles file")
	f.StringVarP(&stylePath, "style", "s", "", "vector tile style sheet (YAML or JSON)")
	f.StringVar(&schemePath, "scheme", "", "tile matrix definition (YAML); web mercator when empty")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&logFile, "log-file", "", "write logs to this file")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	f.IntVarP(&workers, "workers", "w", 0, "concurrent tile loads")
	f.IntVar(&maxLevel, "max-level", 0, "highest level of detail to request")

	rootCmd.AddCommand(viewCmd, decodeCmd, renderCmd)
}
