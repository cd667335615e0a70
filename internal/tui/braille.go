package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"geomap/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// brailleBuf is a 2x4 dot grid per terminal cell. Each cell keeps the color
// of the last dot drawn into it, blended over the previous one.
type brailleBuf struct {
	w, h  int              // in cells
	m     [][]uint8        // per-cell 8-bit mask
	col   [][]render.Color // per-cell color
	clipX [2]int           // micro x range allowed, inclusive
	clipY [2]int
	mark  [2]int // highlighted cell, -1 when none
	// A cell blends each primitive's color once, however many of its dots
	// the primitive sets.
	gen     uint32
	cellGen [][]uint32
}

func newBrailleBuf(w, h int, bg render.Color) *brailleBuf {
	m := make([][]uint8, h)
	col := make([][]render.Color, h)
	cellGen := make([][]uint32, h)
	for i := range m {
		cellGen[i] = make([]uint32, w)
		m[i] = make([]uint8, w)
		col[i] = make([]render.Color, w)
		for x := range col[i] {
			col[i][x] = bg
		}
	}
	b := &brailleBuf{w: w, h: h, m: m, col: col, mark: [2]int{-1, -1}, gen: 1, cellGen: cellGen}
	b.resetClip()
	return b
}

func (b *brailleBuf) resetClip() {
	b.clipX = [2]int{0, b.w*2 - 1}
	b.clipY = [2]int{0, b.h*4 - 1}
}

// clip limits drawing to the micro rectangle [x0, x1] x [y0, y1].
func (b *brailleBuf) clip(x0, y0, x1, y1 int) {
	b.resetClip()
	b.clipX = [2]int{max(x0, 0), min(x1, b.clipX[1])}
	b.clipY = [2]int{max(y0, 0), min(y1, b.clipY[1])}
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, c render.Color) {
	if mx < b.clipX[0] || mx > b.clipX[1] || my < b.clipY[0] || my > b.clipY[1] {
		return
	}
	cx, cy := mx/2, my/4
	b.m[cy][cx] |= dotBits[mx%2][my%4]
	if b.cellGen[cy][cx] != b.gen {
		b.cellGen[cy][cx] = b.gen
		b.col[cy][cx] = c.Over(b.col[cy][cx])
	}
}

// next starts a new primitive.
func (b *brailleBuf) next() { b.gen++ }

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, c render.Color) {
	x0, y0, x1, y1, ok := b.clipSegment(x0, y0, x1, y1)
	if !ok {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment trims a segment to the clip box (Liang-Barsky), so zoomed-in
// segments are not walked dot by dot far off screen.
func (b *brailleBuf) clipSegment(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	fx0, fy0 := float64(x0), float64(y0)
	dx, dy := float64(x1-x0), float64(y1-y0)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, fx0 - float64(b.clipX[0])},
		{dx, float64(b.clipX[1]) - fx0},
		{-dy, fy0 - float64(b.clipY[0])},
		{dy, float64(b.clipY[1]) - fy0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return int(math.Round(fx0 + t0*dx)), int(math.Round(fy0 + t0*dy)),
		int(math.Round(fx0 + t1*dx)), int(math.Round(fy0 + t1*dy)), true
}

// fillRings fills with the even-odd rule across all rings, so holes stay
// empty.
func (b *brailleBuf) fillRings(rings [][][2]int, c render.Color) {
	for yMic := b.clipY[0]; yMic <= b.clipY[1]; yMic++ {
		var xs []int
		for _, ring := range rings {
			for i := range ring {
				a := ring[i]
				e := ring[(i+1)%len(ring)]
				if a[1] == e[1] { // horizontal edge: skip
					continue
				}
				y0, y1 := a[1], e[1]
				if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
					t := float64(yMic-y0) / float64(y1-y0)
					xs = append(xs, int(float64(a[0])+t*float64(e[0]-a[0])))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(xs[i], b.clipX[0]); xMic <= min(xs[i+1], b.clipX[1]); xMic++ {
				b.setPixel(xMic, yMic, c)
			}
		}
	}
}

// markCell draws the hover marker over cell (cx, cy).
func (b *brailleBuf) markCell(cx, cy int) {
	if cx >= 0 && cx < b.w && cy >= 0 && cy < b.h {
		b.mark = [2]int{cx, cy}
	}
}

func hexRGB(c render.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// toLines renders every cell as a braille glyph in its cell color.
func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	styles := map[render.Color]lipgloss.Style{}
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		for x := 0; x < b.w; x++ {
			if x == b.mark[0] && y == b.mark[1] {
				sb.WriteString(hoverStyle.Render("◯"))
				continue
			}
			mask := b.m[y][x]
			if mask == 0 {
				sb.WriteByte(' ')
				continue
			}
			c := b.col[y][x]
			st, ok := styles[c]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(hexRGB(c)))
				styles[c] = st
			}
			sb.WriteString(st.Render(string(rune(0x2800 + int(mask)))))
		}
		out[y] = sb.String()
	}
	return out
}
