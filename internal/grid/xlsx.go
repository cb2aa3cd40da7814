package grid

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

func LoadXLSX(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	g := &Grid{}
	for r, row := range formatted {
		for c, value := range row {
			axis, _ := excelize.CoordinatesToCellName(c+1, r+1)
			cell := xlsxCell(f, sheet, axis, value, pickRaw(raw, r, c))
			if cell == nil {
				continue
			}
			g.SetCell(r+1, c+1, cell)
		}
	}
	// Keep trailing empty rows addressable so MaxRow matches the sheet.
	for len(g.rows) < len(formatted) {
		g.rows = append(g.rows, nil)
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	for _, mc := range merges {
		minCol, minRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		maxCol, maxRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		g.AddMerge(Range{MinRow: minRow, MinCol: minCol, MaxRow: maxRow, MaxCol: maxCol})
		if v := mc.GetCellValue(); v != "" && g.Cell(minRow, minCol) == nil {
			g.SetCell(minRow, minCol, v)
		}
	}

	return g, nil
}

func pickRaw(raw [][]string, r, c int) string {
	if r < len(raw) && c < len(raw[r]) {
		return raw[r][c]
	}
	return ""
}

// xlsxCell turns the formatted and raw renderings of one cell into a value.
// Numbers shown through a date or time format come back as time.Time; text
// cells stay text even when they look numeric.
func xlsxCell(f *excelize.File, sheet, axis, formatted, raw string) any {
	if formatted == "" && raw == "" {
		return nil
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || isTextCell(f, sheet, axis) {
		if formatted != "" {
			return formatted
		}
		return raw
	}
	if formatted != raw && looksLikeDate(formatted) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return t
		}
	}
	return num
}

func isTextCell(f *excelize.File, sheet, axis string) bool {
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return false
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return true
	}
	return false
}

func looksLikeDate(formatted string) bool {
	return strings.ContainsAny(formatted, "-/:") || strings.Contains(formatted, "년")
}
