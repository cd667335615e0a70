package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"geomap/internal/errs"
	"geomap/internal/mvt"
	"geomap/internal/render"
	"geomap/internal/tilescheme"
	"geomap/internal/vt"
)

var decodeFile string

var decodeCmd = &cobra.Command{
	Use:   "decode z/x/y",
	Short: "Decode one tile and summarize its layers",
	Long: `Decode one vector tile and print its layers, feature counts and the primitives
the style produces for it.

The tile is read from the configured tile source, or from --file.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeFile, "file", "f", "", "read the tile bytes from this file")
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	idx, err := tilescheme.ParseIndex(args[0])
	if err != nil {
		return err
	}
	raw, err := readTile(cmd.Context(), idx, decodeFile, func() ([]byte, error) {
		src, closer, err := openSource(cfg, logger)
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		return src.Load(cmd.Context(), idx)
	})
	if err != nil {
		return err
	}

	scheme, err := loadScheme(cfg)
	if err != nil {
		return err
	}
	st, err := loadStyle(cfg)
	if err != nil {
		return err
	}
	out, err := vt.NewProcessor(logger, nil).Process(raw, vt.DecodeContext{Index: idx, Style: st, Scheme: scheme})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), layerTable(out))
	return nil
}

func readTile(ctx context.Context, idx tilescheme.TileIndex, path string, fromSource func() ([]byte, error)) ([]byte, error) {
	if path == "" {
		return fromSource()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(err, "read tile %s", idx)
	}
	return raw, ctx.Err()
}

// layerTable lists per layer the decoded geometry counts and the primitives
// the style emitted.
func layerTable(out *vt.Output) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("tile %s  resolution %.4f", out.Index, out.LodResolution))
	t.AppendHeader(table.Row{"Layer", "Version", "Extent", "Features", "Points", "Lines", "Polygons", "Drawn", "Primitives"})

	var totalFeatures, totalDrawn, totalPrims int
	for li, l := range out.Tile.Layers {
		counts := map[mvt.GeomKind]int{}
		drawn, prims := 0, 0
		for fi, f := range l.Features {
			counts[f.Geometry.Kind()]++
			if ids := out.FeatureIDs[li][fi]; len(ids) > 0 {
				drawn++
				prims += len(ids)
			}
		}
		t.AppendRow(table.Row{
			l.Name,
			l.Version,
			l.Extent,
			len(l.Features),
			counts[mvt.KindPoint],
			counts[mvt.KindLineString],
			counts[mvt.KindPolygon],
			drawn,
			prims,
		})
		totalFeatures += len(l.Features)
		totalDrawn += drawn
		totalPrims += prims
	}
	t.AppendFooter(table.Row{"Total", "", "", totalFeatures, "", "", "", totalDrawn, totalPrims})
	t.SetStyle(table.StyleLight)
	return t.Render() + "\n" + kindSummary(out.Bundle) + "\n"
}

func kindSummary(b *render.Bundle) string {
	counts := map[render.PrimitiveKind]int{}
	for p := range b.Primitives() {
		counts[p.Kind]++
	}
	kinds := []render.PrimitiveKind{render.KindPoint, render.KindLine, render.KindPolygon}
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return fmt.Sprintf("bundle: %d primitives (%v, background included)", b.Len(), parts)
}
