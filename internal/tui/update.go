package tui

import (
	"context"
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"geomap/internal/geom"
)

const zoomStep = 1.2

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.resize()
	case tilesLoadedMsg:
		switch {
		case msg.err == nil:
			if msg.loaded > 0 {
				m.status = fmt.Sprintf("tiles: +%d (%d visible)", msg.loaded, msg.requested)
			}
		case errors.Is(msg.err, context.Canceled):
			// superseded by a newer request
		default:
			m.status = "tiles: " + msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// resize fits the view to the map area after a layout change.
func (m *Model) resize() tea.Cmd {
	lay := m.layout()
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lay.contentH-2)
	}
	m.view = m.view.Resize(lay.mapW*2, lay.mapH*4)
	if !m.fitted {
		m.fitToContent()
	}
	return m.loadTilesCmd()
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		d, err := geom.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		m.selPath = ""
		m.setData(d)
		m.showAttrs = false
		pts, ls, polys := d.Counts()
		m.status = fmt.Sprintf("rendered WKT  counts: pts=%d ls=%d poly=%d", pts, ls, polys)
		m.pasteMode = false
		m.ta.Blur()
		return m, m.loadTilesCmd()
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.loads.mu.Lock()
		if m.loads.cancel != nil {
			m.loads.cancel()
		}
		m.loads.mu.Unlock()
		return m, tea.Quit
	case "1":
		m.showPoints = !m.showPoints
		m.status = fmt.Sprintf("points: %v", m.showPoints)
	case "2":
		m.showLines = !m.showLines
		m.status = fmt.Sprintf("lines: %v", m.showLines)
	case "3":
		m.showPolys = !m.showPolys
		m.status = fmt.Sprintf("polys: %v", m.showPolys)
	case "t":
		if m.tiles == nil {
			m.status = "no tile source configured"
			return m, nil
		}
		m.showTiles = !m.showTiles
		m.status = fmt.Sprintf("tiles: %v", m.showTiles)
		return m, m.loadTilesCmd()
	case "+", "=":
		m.view = m.view.Zoom(1 / zoomStep)
		m.status = fmt.Sprintf("resolution: %.2f", m.view.Resolution)
		return m, m.loadTilesCmd()
	case "-", "_":
		m.view = m.view.Zoom(zoomStep)
		m.status = fmt.Sprintf("resolution: %.2f", m.view.Resolution)
		return m, m.loadTilesCmd()
	case "f":
		m.fitted = false
		m.fitToContent()
		return m, m.loadTilesCmd()
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
		}
		return m, m.resize()
	case "p":
		m.pasteMode = !m.pasteMode
		if m.pasteMode {
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		} else {
			m.status = "view mode"
			m.ta.Blur()
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrsFromCurrent()
		}
	case "i":
		if info, ok := m.inspectSelected(); ok {
			m.inspectPopup = info
			m.status = "inspect popup"
		} else {
			m.inspectPopup = "no feature under the cursor"
			m.status = m.inspectPopup
		}
	case "esc":
		m.inspectPopup = ""
	case "l":
		// toggle all layers
		all := m.showPoints && m.showLines && m.showPolys
		m.showPoints = !all
		m.showLines = !all
		m.showPolys = !all
		m.status = fmt.Sprintf("layers: pts=%v ls=%v poly=%v", m.showPoints, m.showLines, m.showPolys)
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				m.loadPath(it.path)
				return m, m.loadTilesCmd()
			}
		}
	case "up":
		m.view = m.view.Pan(0, -4)
		return m, m.loadTilesCmd()
	case "down":
		m.view = m.view.Pan(0, 4)
		return m, m.loadTilesCmd()
	case "left":
		m.view = m.view.Pan(-4, 0)
		return m, m.loadTilesCmd()
	case "right":
		m.view = m.view.Pan(4, 0)
		return m, m.loadTilesCmd()
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	lay := m.layout()
	cx, cy := msg.X-lay.mapX, msg.Y-lay.mapY
	if cx < 0 || cx >= lay.mapW || cy < 0 || cy >= lay.mapH {
		m.hovering = false
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.view = m.view.ZoomAt(1/zoomStep, float64(cx*2)+1, float64(cy*4)+2)
		return m, m.loadTilesCmd()
	case tea.MouseButtonWheelDown:
		m.view = m.view.ZoomAt(zoomStep, float64(cx*2)+1, float64(cy*4)+2)
		return m, m.loadTilesCmd()
	}

	m.hovering = true
	m.hoverCellX, m.hoverCellY = cx, cy
	m.hoverLon, m.hoverLat, m.hoverHasGeo = m.cellToLonLat(cx, cy)
	m.hover(cx, cy)
	return m, nil
}

// hover selects the topmost feature under the cell: a loaded file feature
// wins over the tile basemap.
func (m *Model) hover(cx, cy int) {
	p := m.cellToMap(cx, cy)
	tol := m.pickTolerance()
	m.hoverInfo = ""
	if m.features != nil {
		i, _, err := m.features.SelectAt(p, tol)
		if err != nil {
			m.logger.Error("select feature", zap.Error(err))
		}
		if i >= 0 {
			m.hoverInfo = fmt.Sprintf("feature #%d", i+1)
			if m.tiles != nil {
				// one highlight at a time
				if err := m.tiles.ClearSelection(); err != nil {
					m.logger.Error("clear tile selection", zap.Error(err))
				}
			}
			return
		}
	}
	if m.tiles != nil && m.showTiles {
		hit, ok, err := m.tiles.Select(p, tol)
		if err != nil {
			m.logger.Error("select tile feature", zap.Error(err))
			return
		}
		if ok {
			m.hoverInfo = fmt.Sprintf("%s %s", hit.Index, hit.Layer)
			if hit.HasID {
				m.hoverInfo += fmt.Sprintf(" id=%d", hit.ID)
			}
		}
	}
}
