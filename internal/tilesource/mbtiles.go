package tilesource

import (
	"context"
	"database/sql"

	"geomap/internal/errs"
	"geomap/internal/tilescheme"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// MBTilesSource reads tiles from an MBTiles file. Rows are stored in TMS
// order, so y is flipped on lookup.
type MBTilesSource struct {
	db *sql.DB
}

// OpenMBTiles opens path read-only.
func OpenMBTiles(path string) (*MBTilesSource, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errs.IO(err, "open %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.IO(err, "open %s", path)
	}
	return &MBTilesSource{db: db}, nil
}

func (s *MBTilesSource) Name() string { return "mbtiles" }

func (s *MBTilesSource) Close() error { return s.db.Close() }

func flipY(idx tilescheme.TileIndex) int { return (1 << uint(idx.Z)) - 1 - idx.Y }

func (s *MBTilesSource) Load(ctx context.Context, idx tilescheme.TileIndex) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"select tile_data from tiles where zoom_level = ? and tile_column = ? and tile_row = ?",
		idx.Z, idx.X, flipY(idx)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.IOf("tile %s not in mbtiles", idx)
	}
	if err != nil {
		return nil, errs.IO(err, "load %s", idx)
	}
	return data, nil
}

// Metadata returns the name/value pairs of the metadata table.
func (s *MBTilesSource) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "select name, value from metadata")
	if err != nil {
		return nil, errs.IO(err, "read metadata")
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, errs.IO(err, "read metadata")
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errs.IO(err, "read metadata")
	}
	return out, nil
}
