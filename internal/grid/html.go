package grid

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"yusaek/internal/util"
)

// LoadHTML reads the first <table> of an HTML export, the shape many order
// platforms ship under an .xls name. rowspan/colspan become merged ranges.
func LoadHTML(r io.Reader) (*Grid, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no <table> found")
	}

	g := &Grid{}
	covered := map[[2]int]bool{}
	rowNo := 0
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("table").Get(0) != table.Get(0) {
			return
		}
		rowNo++
		col := 1
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			for covered[[2]int{rowNo, col}] {
				col++
			}
			rowSpan := spanAttr(cell, "rowspan")
			colSpan := spanAttr(cell, "colspan")

			if text := util.NormalizeSpaces(cell.Text()); text != "" {
				g.SetCell(rowNo, col, text)
			}
			if rowSpan > 1 || colSpan > 1 {
				g.AddMerge(Range{MinRow: rowNo, MinCol: col, MaxRow: rowNo + rowSpan - 1, MaxCol: col + colSpan - 1})
				for r := rowNo; r < rowNo+rowSpan; r++ {
					for c := col; c < col+colSpan; c++ {
						if r != rowNo || c != col {
							covered[[2]int{r, c}] = true
						}
					}
				}
			}
			col += colSpan
		})
		for len(g.rows) < rowNo {
			g.rows = append(g.rows, nil)
		}
	})

	if rowNo == 0 {
		return nil, fmt.Errorf("table has no rows")
	}
	return g, nil
}

func spanAttr(cell *goquery.Selection, name string) int {
	v, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
