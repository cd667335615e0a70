package geom

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKT parses a single WKT geometry (GEOMETRYCOLLECTION members are
// flattened into separate features) with lon/lat coordinate order.
func ParseWKT(text string) (Data, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Data{}, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Data{}, errors.Wrap(err, "wkt")
	}
	var d Data
	if err := d.addOrb(g, nil); err != nil {
		return Data{}, err
	}
	if len(d.Features) == 0 {
		return Data{}, ErrNoGeometries
	}
	return d, nil
}
