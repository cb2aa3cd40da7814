package grid

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(t *testing.T, rows [][]any, merges ...[2]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	for _, m := range merges {
		if err := f.MergeCell(sheet, m[0], m[1]); err != nil {
			t.Fatal(err)
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadXLSX(t *testing.T) {
	ts := time.Date(2024, 5, 2, 13, 4, 5, 0, time.UTC)
	blob := mkXLSX(t, [][]any{
		{"code", "invoice", "qty", "time"},
		{"S12345", "INV1", 2, ts},
		{"S12346", nil, 1, nil},
		{"00017", "INV2", "3.0", nil},
	}, [2]string{"B2", "B3"})

	g, err := Load("orders.xlsx", blob)
	if err != nil {
		t.Fatal(err)
	}
	if g.MaxRow() != 4 {
		t.Fatalf("rows=%d", g.MaxRow())
	}
	if g.Cell(2, 1) != "S12345" {
		t.Fatalf("code cell=%v", g.Cell(2, 1))
	}
	if q, ok := g.Cell(2, 3).(float64); !ok || q != 2 {
		t.Fatalf("qty cell=%#v", g.Cell(2, 3))
	}
	got, ok := g.Cell(2, 4).(time.Time)
	if !ok {
		t.Fatalf("time cell=%#v", g.Cell(2, 4))
	}
	if got.Sub(ts).Abs() > time.Second {
		t.Fatalf("time got %v want %v", got, ts)
	}
	if g.Cell(4, 1) != "00017" {
		t.Fatalf("text digits lost: %#v", g.Cell(4, 1))
	}

	merges := g.MergedRanges()
	if len(merges) != 1 {
		t.Fatalf("merges=%v", merges)
	}
	want := Range{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 2}
	if merges[0] != want {
		t.Fatalf("merge got %+v want %+v", merges[0], want)
	}
}

func TestLoadHTML(t *testing.T) {
	html := `<html><body><table>
<tr><th>code</th><th>invoice</th></tr>
<tr><td>S11111</td><td rowspan="2">INV9</td></tr>
<tr><td>S22222</td></tr>
</table></body></html>`

	g, err := Load("export.xls", []byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if g.MaxRow() != 3 {
		t.Fatalf("rows=%d", g.MaxRow())
	}
	if g.Cell(3, 1) != "S22222" {
		t.Fatalf("rowspan shifted cells: %v", g.Row(3))
	}
	merges := g.MergedRanges()
	if len(merges) != 1 || merges[0] != (Range{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 2}) {
		t.Fatalf("merges=%v", merges)
	}
}

func TestLoadCSV(t *testing.T) {
	blob := append([]byte{0xEF, 0xBB, 0xBF}, []byte("code,qty\nS12345,2\nS54321\n")...)
	g, err := Load("incoming.csv", blob)
	if err != nil {
		t.Fatal(err)
	}
	if g.Cell(1, 1) != "code" {
		t.Fatalf("bom not stripped: %q", g.Cell(1, 1))
	}
	if g.Cell(3, 2) != nil {
		t.Fatalf("ragged row cell=%v", g.Cell(3, 2))
	}
}

func TestLoadRejectsBIFF(t *testing.T) {
	_, err := Load("old.xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err=%v", err)
	}
}

func TestSetCellGrows(t *testing.T) {
	g := New(nil)
	g.SetCell(3, 2, "x")
	if g.MaxRow() != 3 || g.MaxCol() != 2 {
		t.Fatalf("extent %dx%d", g.MaxRow(), g.MaxCol())
	}
	if g.Cell(1, 1) != nil || g.Cell(3, 2) != "x" {
		t.Fatal("unexpected cells")
	}
}

func TestSortRowsStableFunc(t *testing.T) {
	g := New([][]any{{"h"}, {"b", 1}, {"a", 2}, {"b", 3}})
	g.SortRowsStableFunc(2, func(a, b []any) int {
		return compareText(a[0].(string), b[0].(string))
	})
	if g.Cell(1, 1) != "h" || g.Cell(2, 1) != "a" || g.Cell(3, 2) != 1 || g.Cell(4, 2) != 3 {
		t.Fatalf("rows=%v %v %v %v", g.Row(1), g.Row(2), g.Row(3), g.Row(4))
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	g := New([][]any{{"h1", "h2"}, {"v", 2.0}})
	g.AddMerge(Range{MinRow: 2, MinCol: 1, MaxRow: 2, MaxCol: 2})
	buf := bytes.NewBuffer(nil)
	if err := g.WriteXLSX(buf); err != nil {
		t.Fatal(err)
	}
	back, err := LoadXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if back.Cell(2, 1) != "v" || len(back.MergedRanges()) != 1 {
		t.Fatalf("row=%v merges=%v", back.Row(2), back.MergedRanges())
	}
}

func compareText(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
