package pipeline

import (
	"yusaek/internal/grid"
	"yusaek/internal/util"
)

// FillDownColumn unmerges every region touching col, copies each region's
// top-left value into the column for all its rows, then fills blank cells
// below the header with the last non-blank value above them.
func FillDownColumn(g *grid.Grid, col int) {
	for _, mr := range g.MergedRanges() {
		if !mr.HasCol(col) {
			continue
		}
		top := g.Cell(mr.MinRow, mr.MinCol)
		g.Unmerge(mr)
		for r := mr.MinRow; r <= mr.MaxRow; r++ {
			g.SetCell(r, col, top)
		}
	}

	var last any
	for r := 2; r <= g.MaxRow(); r++ {
		v := g.Cell(r, col)
		if util.IsBlank(v) && !util.IsBlank(last) {
			g.SetCell(r, col, last)
			continue
		}
		last = v
	}
}

func normalizeCodeColumn(g *grid.Grid, col int) {
	for r := 2; r <= g.MaxRow(); r++ {
		g.SetCell(r, col, NormalizeCode(g.Cell(r, col)))
	}
}
