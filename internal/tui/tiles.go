package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"geomap/internal/tilescheme"
)

type tilesLoadedMsg struct {
	requested int
	loaded    int
	err       error
}

// visibleTiles lists the tiles covering the view at the level nearest to
// its resolution, capped at maxLevel.
func (m Model) visibleTiles() []tilescheme.TileIndex {
	scheme := m.tiles.Scheme()
	res := m.view.Resolution
	if m.maxLevel > 0 {
		if r, ok := scheme.LodResolution(min(m.maxLevel, scheme.Levels()-1)); ok && res < r {
			res = r
		}
	}
	var out []tilescheme.TileIndex
	for idx := range scheme.IterTiles(m.view.BBox(), res) {
		out = append(out, idx)
	}
	return out
}

// loadTilesCmd drops tiles that left the view and returns a command fetching
// the missing ones. A request still in flight is cancelled first.
func (m Model) loadTilesCmd() tea.Cmd {
	if m.tiles == nil || m.loader == nil || !m.showTiles || m.view.Width == 0 || m.view.Height == 0 {
		return nil
	}
	want := m.visibleTiles()
	keep := make(map[tilescheme.TileIndex]struct{}, len(want))
	for _, idx := range want {
		keep[idx] = struct{}{}
	}

	m.loads.mu.Lock()
	if m.loads.cancel != nil {
		m.loads.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.loads.cancel = cancel
	m.loads.mu.Unlock()

	// Commands run on their own goroutines in any order, so the tile set is
	// trimmed here, not in the command.
	m.tiles.Retain(func(idx tilescheme.TileIndex) bool {
		_, ok := keep[idx]
		return ok
	})

	tl, loader, logger := m.tiles, m.loader, m.logger
	return func() tea.Msg {
		defer cancel()
		if err := ctx.Err(); err != nil {
			return tilesLoadedMsg{requested: len(want), err: err}
		}
		n, err := loader.LoadInto(ctx, tl, want)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("tile load incomplete", zap.Int("requested", len(want)), zap.Int("loaded", n), zap.Error(err))
		}
		return tilesLoadedMsg{requested: len(want), loaded: n, err: err}
	}
}
