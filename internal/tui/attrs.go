package tui

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/paulmach/orb/geojson"
)

// refreshAttrs rebuilds the table from the selected layer's source. It
// hides the table when the layer has no attributes.
func (m *Model) refreshAttrs() {
	cols, rows := m.buildAttributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		if m.focus == focusAttrs {
			m.focus = focusMap
		}
		m.status("no attributes for the selected layer")
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, 24)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		trows = append(trows, append(table.Row{fmt.Sprintf("%d", i+1)}, r...))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

func (m *Model) buildAttributes() ([]string, [][]string) {
	rec, ok := m.ctl.Registry().Get(m.selected)
	if !ok {
		return nil, nil
	}
	src, ok := m.canvas.GetSource(rec.SourceID)
	if !ok {
		return nil, nil
	}
	return attributes(src.Data)
}

// attributes unions the property keys of every feature, each feature's
// keys sorted, in first-seen order.
func attributes(fc *geojson.FeatureCollection) ([]string, [][]string) {
	if fc == nil {
		return nil, nil
	}
	var order []string
	seen := map[string]bool{}
	for _, f := range fc.Features {
		for _, k := range slices.Sorted(maps.Keys(f.Properties)) {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	if len(order) == 0 {
		return nil, nil
	}
	rows := make([][]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		vals := make([]string, 0, len(order))
		for _, k := range order {
			vals = append(vals, cell(f.Properties[k]))
		}
		rows = append(rows, vals)
	}
	return order, rows
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
