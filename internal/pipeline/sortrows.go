package pipeline

import (
	"yusaek/internal/grid"
	"yusaek/internal/util"
)

// SortRowsByTime stably orders the data rows by the timestamp column.
// Rows without a readable timestamp go last in their input order.
func SortRowsByTime(g *grid.Grid, col int) {
	g.SortRowsStableFunc(2, func(a, b []any) int {
		ta, okA := util.ParseTime(cellAt(a, col))
		tb, okB := util.ParseTime(cellAt(b, col))
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return ta.Compare(tb)
	})
}

func cellAt(row []any, col int) any {
	if col < 1 || col > len(row) {
		return nil
	}
	return row[col-1]
}
