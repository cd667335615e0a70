package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is a non-premultiplied sRGB color with alpha.
type Color struct {
	R, G, B, A uint8
}

// RGBA builds a Color.
func RGBA(r, g, b, a uint8) Color { return Color{r, g, b, a} }

var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
)

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, errors.Wrapf(err, "color %q: alpha", s)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, errors.Newf("color %q: expected #rgb, #rrggbb or #rrggbbaa", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, errors.Wrapf(err, "color %q", s)
	}
	r, g, b := c.RGB255()
	return Color{r, g, b, alpha}, nil
}

// MustParseColor is ParseColor for constants; it panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Hex formats the color as #rrggbbaa.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A) }

func (c Color) String() string { return c.Hex() }

// NRGBA converts to the image/color type.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Colorful converts to a go-colorful color, dropping alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Over composites c over dst, returning an opaque result when dst is opaque.
func (c Color) Over(dst Color) Color {
	if c.A == 255 {
		return c
	}
	a := float64(c.A) / 255
	blended := dst.Colorful().BlendRgb(c.Colorful(), a)
	r, g, b := blended.RGB255()
	outA := uint8(float64(c.A) + float64(dst.A)*(1-a) + 0.5)
	return Color{r, g, b, outA}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
