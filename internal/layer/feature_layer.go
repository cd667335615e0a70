package layer

import (
	"slices"
	"sync"

	"geomap/internal/errs"
	"geomap/internal/geom"
	"geomap/internal/proj"
	"geomap/internal/render"

	"github.com/dhconnelly/rtreego"
)

// minRectSide keeps degenerate (point or axis-aligned line) bounds valid
// for the R-tree.
const minRectSide = 1e-9

type spatialItem struct {
	index int
	rect  rtreego.Rect
}

func (s *spatialItem) Bounds() rtreego.Rect { return s.rect }

func toRTree(r geom.Rect) rtreego.Rect {
	rect, err := rtreego.NewRect(
		rtreego.Point{r.XMin, r.YMin},
		[]float64{max(r.Width(), minRectSide), max(r.Height(), minRectSide)},
	)
	if err != nil {
		// Only reachable with NaN bounds, which projection already rejects.
		return rtreego.Point{r.XMin, r.YMin}.ToRect(minRectSide)
	}
	return rect
}

// FeatureLayer owns a set of features, the symbol that draws them and the
// resulting bundle. Readers (renderers, hit tests) take the read lock;
// selection changes hold the write lock across the flag flip and the bundle
// update so a half-repainted state is never visible.
type FeatureLayer[F Feature] struct {
	mu        sync.RWMutex
	features  []F
	projected []geom.Geometry[geom.Vec2[float64]]
	ids       [][]render.PrimitiveID
	symbol    Symbol[F]
	crs       proj.Crs
	bundle    *render.Bundle
	index     *rtreego.Rtree
	bounds    geom.Rect
	hasBounds bool
	selected  int
}

// NewFeatureLayer projects the features into crs, indexes them and renders
// them with symbol. Features that cannot be projected are kept but never
// drawn or hit.
func NewFeatureLayer[F Feature](features []F, symbol Symbol[F], crs proj.Crs) *FeatureLayer[F] {
	l := &FeatureLayer[F]{
		features: features,
		symbol:   symbol,
		crs:      crs,
		selected: -1,
		index:    rtreego.NewTree(2, 25, 50),
	}
	p := crs.Projection()
	l.projected = make([]geom.Geometry[geom.Vec2[float64]], len(features))
	var rects []geom.Rect
	for i, f := range features {
		g, ok := proj.Geometry[geom.GeoPoint, geom.Vec2[float64]](f.Geometry(), p)
		if !ok {
			continue
		}
		r, ok := g.BoundingRect()
		if !ok {
			continue
		}
		l.projected[i] = g
		rects = append(rects, r)
		l.index.Insert(&spatialItem{index: i, rect: toRTree(r)})
	}
	l.bounds, l.hasBounds = geom.UnionAll(rects...)
	l.render()
	return l
}

// render rebuilds the bundle. Callers hold the write lock or own l exclusively.
func (l *FeatureLayer[F]) render() {
	b := render.NewBundle()
	l.ids = make([][]render.PrimitiveID, len(l.features))
	for i, f := range l.features {
		g := l.projected[i]
		if g == nil {
			continue
		}
		world := geom.CastGeometry(g, func(p geom.Vec2[float64]) render.WorldPoint { return p.To3(0) })
		l.ids[i] = l.symbol.Render(f, world, b, 0)
	}
	l.bundle = b
}

// Render redraws every feature into a new bundle.
func (l *FeatureLayer[F]) Render() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.render()
}

// SetSymbol replaces the symbol and redraws.
func (l *FeatureLayer[F]) SetSymbol(s Symbol[F]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.symbol = s
	l.render()
}

// Crs is the coordinate system of the layer's map space.
func (l *FeatureLayer[F]) Crs() proj.Crs { return l.crs }

// Len is the number of features.
func (l *FeatureLayer[F]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.features)
}

// Bounds covers every drawable feature in map space.
func (l *FeatureLayer[F]) Bounds() (geom.Rect, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bounds, l.hasBounds
}

// Feature returns the feature at index i.
func (l *FeatureLayer[F]) Feature(i int) (F, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.features) {
		var zero F
		return zero, false
	}
	return l.features[i], true
}

// FeaturesAt returns the indices of features under p, topmost first.
// Tolerance is in map units and widens points and lines.
func (l *FeatureLayer[F]) FeaturesAt(p geom.Vec2[float64], tolerance float64) []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.featuresAt(p, tolerance)
}

func (l *FeatureLayer[F]) featuresAt(p geom.Vec2[float64], tolerance float64) []int {
	query := rtreego.Point{p.X, p.Y}.ToRect(max(tolerance, minRectSide))
	var out []int
	for _, s := range l.index.SearchIntersect(query) {
		i := s.(*spatialItem).index
		if l.projected[i].Contains(p, tolerance) {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// UpdateFeatures repaints the given features after their state changed.
func (l *FeatureLayer[F]) UpdateFeatures(indices []int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, i := range indices {
		if err := l.update(i); err != nil {
			return err
		}
	}
	return nil
}

func (l *FeatureLayer[F]) update(i int) error {
	if i < 0 || i >= len(l.features) {
		return errs.Configurationf("feature index %d out of range [0, %d)", i, len(l.features))
	}
	return l.symbol.Update(l.features[i], l.ids[i], l.bundle)
}

// Select makes feature i the only selected feature and repaints both it and
// the previously selected one. A negative index clears the selection.
// It reports whether anything changed.
func (l *FeatureLayer[F]) Select(i int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectLocked(i)
}

// SelectAt selects the topmost feature under p, or clears the selection when
// nothing is there.
func (l *FeatureLayer[F]) SelectAt(p geom.Vec2[float64], tolerance float64) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	target := -1
	if hits := l.featuresAt(p, tolerance); len(hits) > 0 {
		target = hits[0]
	}
	changed, err := l.selectLocked(target)
	return target, changed, err
}

func (l *FeatureLayer[F]) selectLocked(i int) (bool, error) {
	if i >= len(l.features) {
		return false, errs.Configurationf("feature index %d out of range [0, %d)", i, len(l.features))
	}
	if i < 0 {
		i = -1
	}
	if i == l.selected {
		return false, nil
	}
	// A failed repaint leaves that feature's flag as it was, so l.selected
	// always names a feature that is flagged and painted as selected.
	prev := l.selected
	if prev >= 0 {
		l.features[prev].SetSelected(false)
		if err := l.update(prev); err != nil {
			l.features[prev].SetSelected(true)
			return false, err
		}
		l.selected = -1
	}
	if i >= 0 {
		l.features[i].SetSelected(true)
		if err := l.update(i); err != nil {
			l.features[i].SetSelected(false)
			return prev >= 0, err
		}
		l.selected = i
	}
	return true, nil
}

// Selected returns the selected feature index.
func (l *FeatureLayer[F]) Selected() (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected, l.selected >= 0
}

// PrimitiveIDs returns the primitives drawn for feature i.
func (l *FeatureLayer[F]) PrimitiveIDs(i int) []render.PrimitiveID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.ids) {
		return nil
	}
	return slices.Clone(l.ids[i])
}

// View runs fn with the bundle under the read lock. fn must not keep b.
func (l *FeatureLayer[F]) View(fn func(b *render.Bundle)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.bundle)
}
