package grid

import (
	"io"

	"github.com/xuri/excelize/v2"
)

func (g *Grid) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range g.rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	for _, m := range g.merges {
		from, err := excelize.CoordinatesToCellName(m.MinCol, m.MinRow)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(m.MaxCol, m.MaxRow)
		if err != nil {
			return err
		}
		if err := f.MergeCell(sheet, from, to); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
