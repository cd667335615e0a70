package tilesource

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"geomap/internal/errs"
	"geomap/internal/tilescheme"
)

// DirSource reads tiles laid out as <root>/<z>/<x>/<y>.<ext>.
type DirSource struct {
	Root string
	// Extensions are tried in order.
	Extensions []string
}

// NewDirSource accepts .pbf and .mvt files under root.
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root, Extensions: []string{".pbf", ".mvt"}}
}

func (s *DirSource) Name() string { return "dir" }

func (s *DirSource) Load(ctx context.Context, idx tilescheme.TileIndex) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.IO(err, "load %s", idx)
	}
	dir := filepath.Join(s.Root, strconv.Itoa(idx.Z), strconv.Itoa(idx.X))
	for _, ext := range s.Extensions {
		raw, err := os.ReadFile(filepath.Join(dir, strconv.Itoa(idx.Y)+ext))
		if err == nil {
			return raw, nil
		}
		if !os.IsNotExist(err) {
			return nil, errs.IO(err, "load %s", idx)
		}
	}
	return nil, errs.IOf("tile %s not found under %s", idx, s.Root)
}
