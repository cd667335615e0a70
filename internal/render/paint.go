package render

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// PrimitiveKind is the drawable kind of a primitive.
type PrimitiveKind uint8

const (
	KindPoint PrimitiveKind = iota + 1
	KindLine
	KindPolygon
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("PrimitiveKind(%d)", uint8(k))
}

// LineCap is the shape drawn at open line ends.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

func (c LineCap) String() string {
	switch c {
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	}
	return "butt"
}

func (c LineCap) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *LineCap) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "butt":
		*c = CapButt
	case "round":
		*c = CapRound
	case "square":
		*c = CapSquare
	default:
		return errors.Newf("unknown line cap %q", b)
	}
	return nil
}

// Paint is one of PointPaint, LinePaint or PolygonPaint.
type Paint interface {
	Kind() PrimitiveKind
}

// PointPaint draws a filled dot of Size pixels.
type PointPaint struct {
	Color Color
	Size  float64
}

// LinePaint strokes a contour. Width and Offset are in pixels.
type LinePaint struct {
	Color  Color
	Width  float64
	Offset float64
	Cap    LineCap
}

// PolygonPaint fills a polygon.
type PolygonPaint struct {
	Color Color
}

func (PointPaint) Kind() PrimitiveKind   { return KindPoint }
func (LinePaint) Kind() PrimitiveKind    { return KindLine }
func (PolygonPaint) Kind() PrimitiveKind { return KindPolygon }
