package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geomap/internal/render"
)

func dotSet(b *brailleBuf, mx, my int) bool {
	return b.m[my/4][mx/2]&dotBits[mx%2][my%4] != 0
}

func TestBrailleFillKeepsHoles(t *testing.T) {
	b := newBrailleBuf(10, 5, render.Black)
	b.fillRings([][][2]int{
		{{2, 2}, {18, 2}, {18, 18}, {2, 18}},
		{{8, 8}, {12, 8}, {12, 12}, {8, 12}},
	}, render.White)

	assert.True(t, dotSet(b, 4, 4))
	assert.True(t, dotSet(b, 16, 10))
	assert.False(t, dotSet(b, 10, 10), "hole")
	assert.False(t, dotSet(b, 0, 0), "outside")
	assert.Equal(t, render.White, b.col[1][2])
}

func TestBrailleClipSegment(t *testing.T) {
	b := newBrailleBuf(10, 5, render.Black)
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [4]int
		ok             bool
	}{
		{"inside", 1, 1, 5, 5, [4]int{1, 1, 5, 5}, true},
		{"crosses", -100, 5, 100, 5, [4]int{0, 5, 19, 5}, true},
		{"outside", -10, -10, -1, 30, [4]int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := b.clipSegment(tt.x0, tt.y0, tt.x1, tt.y1)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, [4]int{x0, y0, x1, y1})
			}
		})
	}
}

func TestBrailleBlendsOncePerPrimitive(t *testing.T) {
	half := render.White.WithAlpha(128)
	b := newBrailleBuf(1, 1, render.Black)
	b.next()
	for y := 0; y < 4; y++ {
		b.setPixel(0, y, half)
	}
	once := half.Over(render.Black)
	assert.Equal(t, once, b.col[0][0])
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "square.wkt")
	require.NoError(t, os.WriteFile(path, []byte("POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))"), 0o644))

	m := New(Options{Path: path})
	require.NotNil(t, m.features)
	require.Equal(t, 1, m.features.Len())

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd, "no tile source")
	return next.(Model)
}

func TestModelFitsLoadedFile(t *testing.T) {
	m := loadedModel(t)
	lay := m.layout()
	assert.Equal(t, lay.mapW*2, m.view.Width)
	assert.Equal(t, lay.mapH*4, m.view.Height)
	assert.True(t, m.fitted)

	b, ok := m.features.Bounds()
	require.True(t, ok)
	assert.True(t, m.view.BBox().Contains(b.XMin, b.YMin))
	assert.True(t, m.view.BBox().Contains(b.XMax, b.YMax))

	out := m.View()
	assert.True(t, strings.ContainsRune(out, '⣿'), "filled polygon cells")
}

func TestModelHoverSelects(t *testing.T) {
	m := loadedModel(t)
	lay := m.layout()

	next, _ := m.Update(tea.MouseMsg{
		X:      lay.mapX + lay.mapW/2,
		Y:      lay.mapY + lay.mapH/2,
		Action: tea.MouseActionMotion,
	})
	m = next.(Model)
	assert.True(t, m.hovering)
	assert.True(t, m.hoverHasGeo)
	assert.InDelta(t, 5, m.hoverLon, 1)
	i, ok := m.features.Selected()
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, "feature #1", m.hoverInfo)

	info, ok := m.inspectSelected()
	require.True(t, ok)
	assert.Contains(t, info, "Polygon")

	// Moving off the polygon clears the selection.
	next, _ = m.Update(tea.MouseMsg{X: lay.mapX, Y: lay.mapY, Action: tea.MouseActionMotion})
	m = next.(Model)
	_, ok = m.features.Selected()
	assert.False(t, ok)
}

func TestModelKeys(t *testing.T) {
	m := loadedModel(t)
	res := m.view.Resolution

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(Model)
	assert.InDelta(t, res/zoomStep, m.view.Resolution, 1e-6)

	center := m.view.Center
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	assert.Greater(t, m.view.Center.X, center.X)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	m = next.(Model)
	assert.False(t, m.showPolys)
	assert.False(t, strings.ContainsRune(m.View(), '⣿'))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"a", "a"},
		{1.5, "1.5"},
		{true, "true"},
		{[]any{1.0, "x"}, `[1,"x"]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in))
	}
}
