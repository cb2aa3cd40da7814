package grid

import (
	"slices"
)

// Range is a merged-cell region, 1-indexed and inclusive.
type Range struct {
	MinRow int
	MinCol int
	MaxRow int
	MaxCol int
}

func (r Range) HasCol(col int) bool {
	return r.MinCol <= col && col <= r.MaxCol
}

// Grid is a loaded sheet: rows of heterogeneous cell values (string,
// float64, int, time.Time or nil), addressed 1-indexed with row 1 as header.
type Grid struct {
	rows   [][]any
	merges []Range
}

func New(rows [][]any) *Grid {
	g := &Grid{rows: make([][]any, len(rows))}
	for i, row := range rows {
		g.rows[i] = slices.Clone(row)
	}
	return g
}

func (g *Grid) MaxRow() int {
	return len(g.rows)
}

func (g *Grid) MaxCol() int {
	max := 0
	for _, row := range g.rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

func (g *Grid) Cell(row, col int) any {
	if row < 1 || row > len(g.rows) {
		return nil
	}
	r := g.rows[row-1]
	if col < 1 || col > len(r) {
		return nil
	}
	return r[col-1]
}

// SetCell grows the grid as needed.
func (g *Grid) SetCell(row, col int, v any) {
	if row < 1 || col < 1 {
		return
	}
	for len(g.rows) < row {
		g.rows = append(g.rows, nil)
	}
	r := g.rows[row-1]
	for len(r) < col {
		r = append(r, nil)
	}
	r[col-1] = v
	g.rows[row-1] = r
}

func (g *Grid) Row(row int) []any {
	if row < 1 || row > len(g.rows) {
		return nil
	}
	return slices.Clone(g.rows[row-1])
}

func (g *Grid) MergedRanges() []Range {
	return slices.Clone(g.merges)
}

func (g *Grid) AddMerge(r Range) {
	g.merges = append(g.merges, r)
}

// Unmerge drops the region; cell values are left as they are.
func (g *Grid) Unmerge(r Range) {
	g.merges = slices.DeleteFunc(g.merges, func(m Range) bool { return m == r })
}

// SortRowsStableFunc reorders the rows from fromRow on, keeping rows that
// compare equal in their original order.
func (g *Grid) SortRowsStableFunc(fromRow int, cmp func(a, b []any) int) {
	if fromRow < 1 {
		fromRow = 1
	}
	if fromRow > len(g.rows) {
		return
	}
	slices.SortStableFunc(g.rows[fromRow-1:], cmp)
}
