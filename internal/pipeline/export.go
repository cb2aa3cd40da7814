package pipeline

import (
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"yusaek/internal/util"
)

var defectHeaders = []string{"A열(O왼쪽)", "B열(O오른쪽)", "C열(옵션명)", "D열(불량수량)"}

// DefectLine is one defective code with what the export needs to label it.
type DefectLine struct {
	Code   string
	Count  int
	Name   string
	Option string
	Label  string
}

// labelParts splits the label text on its first space. Without a recorded
// label, "{code} {name}" stands in.
func (l DefectLine) labelParts() (string, string) {
	text := strings.TrimSpace(l.Label)
	if text == "" {
		text = strings.TrimSpace(l.Code + " " + l.Name)
	}
	return util.SplitFirstSpace(util.CSVField(text))
}

// BuildDefectCSV renders lines in the given order. Callers sort by code.
func BuildDefectCSV(lines []DefectLine) string {
	var b strings.Builder
	b.WriteString(strings.Join(defectHeaders, ","))
	b.WriteByte('\n')
	for _, line := range lines {
		left, right := line.labelParts()
		b.WriteString(left)
		b.WriteByte(',')
		b.WriteString(right)
		b.WriteByte(',')
		b.WriteString(util.CSVField(line.Option))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(line.Count))
		b.WriteByte('\n')
	}
	return b.String()
}

func WriteDefectsXLSX(lines []DefectLine, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range defectHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, line := range lines {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		left, right := line.labelParts()
		set(1, left)
		set(2, right)
		set(3, util.CSVField(line.Option))
		set(4, line.Count)
	}

	_, err := f.WriteTo(w)
	return err
}
