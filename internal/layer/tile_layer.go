package layer

import (
	"cmp"
	"slices"
	"sync"

	"geomap/internal/geom"
	"geomap/internal/mvt"
	"geomap/internal/render"
	"geomap/internal/style"
	"geomap/internal/tilescheme"
	"geomap/internal/vt"
)

// TileHit identifies a feature inside a loaded tile.
type TileHit struct {
	Index      tilescheme.TileIndex
	Ref        mvt.FeatureRef
	Layer      string
	ID         uint64
	HasID      bool
	Properties map[string]any
}

// TileLayer holds the decoded tiles currently on screen.
type TileLayer struct {
	mu       sync.RWMutex
	scheme   *tilescheme.Scheme
	style    *style.VectorTileStyle
	tiles    map[tilescheme.TileIndex]*vt.Output
	selected *TileHit
}

// NewTileLayer returns an empty layer for tiles of scheme painted with st.
func NewTileLayer(scheme *tilescheme.Scheme, st *style.VectorTileStyle) *TileLayer {
	return &TileLayer{
		scheme: scheme,
		style:  st,
		tiles:  make(map[tilescheme.TileIndex]*vt.Output),
	}
}

func (l *TileLayer) Scheme() *tilescheme.Scheme    { return l.scheme }
func (l *TileLayer) Style() *style.VectorTileStyle { return l.style }
func (l *TileLayer) DecodeContext(idx tilescheme.TileIndex) vt.DecodeContext {
	return vt.DecodeContext{Index: idx, Style: l.style, Scheme: l.scheme, Bundle: render.NewBundle()}
}

// Insert adds or replaces a processed tile.
func (l *TileLayer) Insert(out *vt.Output) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected != nil && l.selected.Index == out.Index {
		l.selected = nil
	}
	l.tiles[out.Index] = out
}

// Has reports whether the tile is loaded.
func (l *TileLayer) Has(idx tilescheme.TileIndex) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.tiles[idx]
	return ok
}

// Len is the number of loaded tiles.
func (l *TileLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tiles)
}

// Retain drops every tile for which keep returns false.
func (l *TileLayer) Retain(keep func(tilescheme.TileIndex) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for idx := range l.tiles {
		if !keep(idx) {
			delete(l.tiles, idx)
			if l.selected != nil && l.selected.Index == idx {
				l.selected = nil
			}
		}
	}
}

// sorted returns tiles lowest zoom first, then row-major, which is the
// paint order.
func (l *TileLayer) sorted() []*vt.Output {
	out := make([]*vt.Output, 0, len(l.tiles))
	for _, t := range l.tiles {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *vt.Output) int {
		return cmp.Or(
			cmp.Compare(a.Index.Z, b.Index.Z),
			cmp.Compare(a.Index.Y, b.Index.Y),
			cmp.Compare(a.Index.X, b.Index.X),
		)
	})
	return out
}

// FeatureAt finds the topmost drawn tile feature under a map-space point.
func (l *TileLayer) FeatureAt(p geom.Vec2[float64], tolerance float64) (TileHit, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.featureAt(p, tolerance)
}

func (l *TileLayer) featureAt(p geom.Vec2[float64], tolerance float64) (TileHit, bool) {
	tiles := l.sorted()
	for i := len(tiles) - 1; i >= 0; i-- {
		t := tiles[i]
		ref, ok := t.FeatureAt(p, tolerance)
		if !ok {
			continue
		}
		f, _ := t.Tile.Feature(ref)
		return TileHit{
			Index:      t.Index,
			Ref:        ref,
			Layer:      t.Tile.Layers[ref.Layer].Name,
			ID:         f.ID,
			HasID:      f.HasID,
			Properties: f.Properties,
		}, true
	}
	return TileHit{}, false
}

// Select highlights the feature under p and restores the previous one in
// the same locked span. It reports the new selection, if any.
func (l *TileLayer) Select(p geom.Vec2[float64], tolerance float64) (TileHit, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hit, found := l.featureAt(p, tolerance)
	if prev := l.selected; prev != nil && found && prev.Index == hit.Index && prev.Ref == hit.Ref {
		return hit, true, nil
	}
	if err := l.clearLocked(); err != nil {
		return TileHit{}, false, err
	}
	if !found {
		return TileHit{}, false, nil
	}
	if err := l.tiles[hit.Index].SetSelected(l.style, hit.Ref, true); err != nil {
		return TileHit{}, false, err
	}
	l.selected = &hit
	return hit, true, nil
}

// ClearSelection restores the selected feature, if any, to its style.
func (l *TileLayer) ClearSelection() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clearLocked()
}

func (l *TileLayer) clearLocked() error {
	prev := l.selected
	if prev == nil {
		return nil
	}
	if t, ok := l.tiles[prev.Index]; ok {
		if err := t.SetSelected(l.style, prev.Ref, false); err != nil {
			return err
		}
	}
	l.selected = nil
	return nil
}

// Selected returns the current selection.
func (l *TileLayer) Selected() (TileHit, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.selected == nil {
		return TileHit{}, false
	}
	return *l.selected, true
}

// View runs fn with the loaded tiles in paint order, under the read lock.
func (l *TileLayer) View(fn func(tiles []*vt.Output)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.sorted())
}

// Bundles returns the tile bundles in paint order. The bundles are shared;
// read them through View when selection may change concurrently.
func (l *TileLayer) Bundles() []*render.Bundle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tiles := l.sorted()
	out := make([]*render.Bundle, len(tiles))
	for i, t := range tiles {
		out[i] = t.Bundle
	}
	return out
}
