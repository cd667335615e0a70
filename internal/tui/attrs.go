package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshAttrsFromCurrent rebuilds the table columns/rows from the loaded features
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := m.buildAttributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		// Do not touch table internals here to avoid re-render during SetColumns
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	// map to bubbles table columns/rows
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for _, c := range cols {
		w := len(c) + 2
		if w > maxColW {
			w = maxColW
		}
		tcols = append(tcols, table.Column{Title: c, Width: w})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// Normalize each row to match the number of table columns
	colCount := len(tcols)
	for i := range trows {
		cells := []string(trows[i])
		if len(cells) < colCount {
			// pad
			pad := make([]string, colCount-len(cells))
			cells = append(cells, pad...)
		} else if len(cells) > colCount {
			// truncate
			cells = cells[:colCount]
		}
		trows[i] = table.Row(cells)
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes tabulates the loaded features: one column per property
// key, in first-seen order.
func (m *Model) buildAttributes() ([]string, [][]string) {
	if len(m.data.Features) == 0 || len(m.data.Columns) == 0 {
		return []string{}, [][]string{}
	}
	rows := make([][]string, 0, len(m.data.Features))
	for _, f := range m.data.Features {
		rows = append(rows, propertyRow(m.data.Columns, f.Properties))
	}
	return m.data.Columns, rows
}

func propertyRow(cols []string, props map[string]any) []string {
	vals := make([]string, 0, len(cols))
	for _, k := range cols {
		vals = append(vals, formatValue(props[k]))
	}
	return vals
}

// inspectSelected describes the hovered feature for the inspect popup.
func (m *Model) inspectSelected() (string, bool) {
	var meta []string
	if m.features != nil {
		if i, ok := m.features.Selected(); ok && i < len(m.data.Features) {
			f := m.data.Features[i]
			name := filepath.Base(m.selPath)
			if m.selPath == "" {
				name = "<pasted>"
			}
			meta = append(meta,
				fmt.Sprintf("source: %s", name),
				fmt.Sprintf("feature: #%d %s", i+1, f.Geometry.Kind()),
			)
			if r, ok := f.Geometry.BoundingRect(); ok {
				meta = append(meta, fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", r.XMin, r.YMin, r.XMax, r.YMax))
			}
			meta = append(meta, propertyLines(f.Properties)...)
		}
	}
	if meta == nil && m.tiles != nil {
		if hit, ok := m.tiles.Selected(); ok {
			meta = append(meta,
				fmt.Sprintf("tile: %s", hit.Index),
				fmt.Sprintf("layer: %s", hit.Layer),
			)
			if hit.HasID {
				meta = append(meta, fmt.Sprintf("id: %d", hit.ID))
			}
			meta = append(meta, propertyLines(hit.Properties)...)
		}
	}
	if meta == nil {
		return "", false
	}
	meta = append(meta, fmt.Sprintf("crs: %s", m.view.Crs))
	return strings.Join(meta, "\n"), true
}

func propertyLines(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %s", k, formatValue(props[k])))
	}
	return out
}
