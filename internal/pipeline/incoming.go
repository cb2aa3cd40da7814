package pipeline

import (
	"yusaek/internal/config"
	"yusaek/internal/grid"
	"yusaek/internal/util"
)

type IncomingColumns struct {
	Code int
	Qty  int
}

func IncomingColumnsFromConfig(cfg config.Config) IncomingColumns {
	return IncomingColumns{Code: cfg.IncomingColCode, Qty: cfg.IncomingColQty}
}

// ParseIncoming sums positive quantities per recognized code. The incoming
// sheet has no header row; rows without a code are ignored.
func ParseIncoming(g *grid.Grid, cols IncomingColumns) map[string]int {
	counts := map[string]int{}
	if g == nil {
		return counts
	}
	for r := 1; r <= g.MaxRow(); r++ {
		code := NormalizeCode(g.Cell(r, cols.Code))
		if code == "" {
			continue
		}
		if qty := util.ToInt(g.Cell(r, cols.Qty), 0); qty > 0 {
			counts[code] += qty
		}
	}
	return counts
}
