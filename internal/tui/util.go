package tui

import (
	"encoding/json"
	"fmt"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// formatValue renders a property value for a table cell.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool, int, int64, uint64:
		return fmt.Sprint(t)
	default:
		bs, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(bs)
	}
}
