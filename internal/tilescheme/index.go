package tilescheme

import (
	"fmt"
	"strconv"
	"strings"

	"geomap/internal/errs"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileIndex addresses one tile: Z is the level of detail, X the column and
// Y the row at that level.
type TileIndex struct {
	Z    int
	X, Y int
}

// Index builds a TileIndex.
func Index(z, x, y int) TileIndex { return TileIndex{Z: z, X: x, Y: y} }

func (i TileIndex) String() string { return fmt.Sprintf("%d/%d/%d", i.Z, i.X, i.Y) }

// ParseIndex reads the "z/x/y" form produced by String. Range checks
// against a scheme happen later, in TileBBox.
func ParseIndex(s string) (TileIndex, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return TileIndex{}, errs.Configurationf("tile index %q: want z/x/y", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return TileIndex{}, errs.Configuration(err, "tile index %q", s)
		}
		v[i] = n
	}
	return Index(v[0], v[1], v[2]), nil
}

// Maptile converts a web scheme index to an orb tile.
func (i TileIndex) Maptile() maptile.Tile {
	return maptile.New(uint32(i.X), uint32(i.Y), maptile.Zoom(i.Z))
}

// FromMaptile is the inverse of Maptile.
func FromMaptile(t maptile.Tile) TileIndex {
	return TileIndex{Z: int(t.Z), X: int(t.X), Y: int(t.Y)}
}

// GeoBound is the lon/lat bound of a web scheme tile.
func (i TileIndex) GeoBound() orb.Bound { return i.Maptile().Bound() }
