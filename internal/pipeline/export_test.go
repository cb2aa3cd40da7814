package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"yusaek/internal/grid"
)

func TestBuildDefectCSV(t *testing.T) {
	out := BuildDefectCSV([]DefectLine{
		{Code: "YUSAS00001", Count: 3, Name: "Blue", Option: "M", Label: "00001 Blue M"},
		{Code: "YUSAS00002", Count: 1, Name: "Red shirt", Option: "L, long"},
		{Code: "YUSAS00003", Count: 2, Label: "solo"},
	})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	want := []string{
		"A열(O왼쪽),B열(O오른쪽),C열(옵션명),D열(불량수량)",
		"00001,Blue M,M,3",
		"YUSAS00002,Red shirt,L  long,1",
		"solo,,,2",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines=%q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d=%q want %q", i, lines[i], want[i])
		}
	}
}

func TestWriteDefectsXLSX(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	err := WriteDefectsXLSX([]DefectLine{{Code: "YUSAS00001", Count: 4, Option: "M", Label: "00001 Blue, M"}}, buf)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%v", rows)
	}
	got := strings.Join(rows[1], "|")
	if got != "00001|Blue  M|M|4" {
		t.Fatalf("row=%q", got)
	}
}

func TestParseIncoming(t *testing.T) {
	g := grid.New([][]any{
		{"S00001", 2.0},
		{"YUSAS00001", "3"},
		{"junk", 5},
		{"S00002", 0},
		{"S00003", -1},
		{"S00004", nil},
		{nil, 9},
	})
	got := ParseIncoming(g, IncomingColumns{Code: 1, Qty: 2})
	if len(got) != 1 || got["YUSAS00001"] != 5 {
		t.Fatalf("counts=%v", got)
	}
}
