package tui

import (
	"context"
	"os"
	"sync"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"geomap/internal/geom"
	"geomap/internal/layer"
	"geomap/internal/proj"
	"geomap/internal/render"
	"geomap/internal/tilesource"
	"geomap/internal/view"
)

// featureSymbol paints loaded files: translucent until hovered.
var featureSymbol = layer.SelectableSymbol[*layer.GeoFeature]{
	Color:     render.MustParseColor("#38BDF8"),
	LineWidth: 1,
	PointSize: 1,
}

// Options configures a Model. Tiles and Loader are both needed for a tile
// basemap; without them only files are shown.
type Options struct {
	Path     string
	Tiles    *layer.TileLayer
	Loader   *tilesource.Loader
	MaxLevel int
	Logger   *zap.Logger
}

// loadState is shared between model copies so a new tile request can cancel
// the one still in flight.
type loadState struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	view   view.MapView
	fitted bool

	status string
	logger *zap.Logger

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	data     geom.Data
	features *layer.FeatureLayer[*layer.GeoFeature]

	// Tile basemap
	tiles    *layer.TileLayer
	loader   *tilesource.Loader
	maxLevel int
	ctx      context.Context
	loads    *loadState

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showPoints bool
	showLines  bool
	showPolys  bool
	showTiles  bool

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
	hoverInfo   string

	// attributes table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		status:      "geomap ready",
		logger:      opts.Logger,
		tiles:       opts.Tiles,
		loader:      opts.Loader,
		maxLevel:    opts.MaxLevel,
		ctx:         context.Background(),
		loads:       &loadState{},
		showPoints:  true,
		showLines:   true,
		showPolys:   true,
		showTiles:   opts.Tiles != nil,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	crs := proj.EPSG3857
	if m.tiles != nil {
		crs = m.tiles.Scheme().Crs()
	}
	m.view = view.New(geom.Vec2[float64]{}, view.MaxResolution, 0, 0, crs)
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, MULTI*, GEOMETRYCOLLECTION). Press Enter to render; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// attributes table setup (columns will be inferred per dataset)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	if opts.Path != "" {
		m.loadPath(opts.Path)
	}
	return m
}

// WithContext bounds tile loading by ctx.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// setData replaces the feature layer with d, projected into the view CRS.
func (m *Model) setData(d geom.Data) {
	m.data = d
	m.features = layer.NewFeatureLayer(layer.FromData(d), layer.Symbol[*layer.GeoFeature](featureSymbol), m.view.Crs)
	m.inspectPopup = ""
	m.fitted = false
	m.fitToContent()
}

// fitToContent frames the loaded features, or the whole tile scheme when
// there are none. It waits until the map has a size.
func (m *Model) fitToContent() {
	if m.view.Width == 0 || m.view.Height == 0 {
		return
	}
	if m.features != nil {
		if b, ok := m.features.Bounds(); ok {
			m.view = m.view.Fit(b, 0.1)
			m.fitted = true
			return
		}
	}
	if m.tiles != nil {
		m.view = m.view.Fit(m.tiles.Scheme().Bounds(), 0)
	}
	m.fitted = true
}
