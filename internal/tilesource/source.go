// Package tilesource fetches raw vector tile bytes and feeds them through
// the decode pipeline.
package tilesource

import (
	"context"

	"geomap/internal/tilescheme"
)

// Source returns the raw bytes of one tile. Failures are marked with
// errs.ErrIO; a missing tile is an I/O failure too.
type Source interface {
	Load(ctx context.Context, idx tilescheme.TileIndex) ([]byte, error)
	// Name labels the source in logs and metrics.
	Name() string
}

// Closer is implemented by sources holding resources.
type Closer interface {
	Close() error
}
