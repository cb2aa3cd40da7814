package pipeline

import (
	"errors"
	"testing"
	"time"

	"yusaek/internal/grid"
)

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

func header() []any {
	row := make([]any, 15)
	for i := range row {
		row[i] = "col"
	}
	return row
}

// orderRow places values in the default export layout.
func orderRow(code, name, option string, qty, inv, ts, label any) []any {
	row := make([]any, 15)
	row[7] = code
	row[8] = name
	row[9] = option
	row[10] = qty
	row[12] = inv
	row[13] = ts
	row[14] = label
	return row
}

func mkOrders(rows ...[]any) *grid.Grid {
	return grid.New(append([][]any{header()}, rows...))
}

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"S12345", "YUSAS12345"},
		{"YUSAS00017", "YUSAS00017"},
		{"box YUSAS00017-2", "YUSAS00017"},
		{"xS123456", "YUSAS12345"},
		{"s12345", ""},
		{"hello", ""},
		{"", ""},
		{nil, ""},
		{12345.0, ""},
	}
	for _, c := range cases {
		got := NormalizeCode(c.in)
		if got != c.want {
			t.Fatalf("NormalizeCode(%#v)=%q want %q", c.in, got, c.want)
		}
		if got != "" && NormalizeCode(got) != got {
			t.Fatalf("not idempotent for %q", got)
		}
	}
}

func TestScanCodeFallsBackToRaw(t *testing.T) {
	if got := ScanCode("S00001"); got != "YUSAS00001" {
		t.Fatalf("got %q", got)
	}
	if got := ScanCode("8801234"); got != "8801234" {
		t.Fatalf("got %q", got)
	}
}

func TestFillDownColumn(t *testing.T) {
	g := grid.New([][]any{{"inv"}, {"A"}, {nil}, {""}, {"B"}, {nil}})
	FillDownColumn(g, 1)
	want := []string{"A", "A", "A", "B", "B"}
	for i, w := range want {
		if got := g.Cell(i+2, 1); got != w {
			t.Fatalf("row %d=%v want %s", i+2, got, w)
		}
	}
}

func TestFillDownColumnMerged(t *testing.T) {
	g := grid.New([][]any{{"x", "inv"}, {"1", "A"}, {"2", nil}, {"3", nil}, {"4", nil}})
	g.AddMerge(grid.Range{MinRow: 2, MinCol: 2, MaxRow: 3, MaxCol: 2})
	FillDownColumn(g, 2)

	if len(g.MergedRanges()) != 0 {
		t.Fatalf("merge not removed: %+v", g.MergedRanges())
	}
	for r := 2; r <= 5; r++ {
		if got := g.Cell(r, 2); got != "A" {
			t.Fatalf("row %d=%v", r, got)
		}
	}
}

func TestFillDownLeadingBlankStays(t *testing.T) {
	g := grid.New([][]any{{"inv"}, {nil}, {"A"}})
	FillDownColumn(g, 1)
	if g.Cell(2, 1) != nil {
		t.Fatalf("leading blank filled: %v", g.Cell(2, 1))
	}
}

func TestIngestBasic(t *testing.T) {
	g := mkOrders(
		orderRow("S00001", "Blue", "M", 2, "INV1", at(0), "00001 Blue M"),
		orderRow("S00002", "Red", "L", nil, nil, at(10), nil),
		orderRow("YUSAS00001", "Green", "S", "3.0", "INV2", at(20), "other label"),
		orderRow("nothing", "Skip", "", 5, "INV2", at(30), nil),
		orderRow("S00003", "Zero", "", 0, "INV2", at(40), nil),
	)
	res, err := Ingest(g, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Mapping["INV1"]["YUSAS00001"]; got != 2 {
		t.Fatalf("INV1 S00001=%d", got)
	}
	if got := res.Mapping["INV1"]["YUSAS00002"]; got != 1 {
		t.Fatalf("fill-down or default qty broken: %d", got)
	}
	if got := res.Mapping["INV2"]["YUSAS00001"]; got != 3 {
		t.Fatalf("INV2 S00001=%d", got)
	}
	if _, ok := res.Mapping["INV2"]["YUSAS00003"]; ok {
		t.Fatal("zero quantity row counted")
	}
	if len(res.InvoiceSeq) != 2 || res.InvoiceSeq[0] != "INV1" || res.InvoiceSeq[1] != "INV2" {
		t.Fatalf("invoice seq=%v", res.InvoiceSeq)
	}
	if order := res.InvoiceOrder["INV1"]; len(order) != 2 || order[0] != "YUSAS00001" {
		t.Fatalf("invoice order=%v", order)
	}
	if res.CodeLabels["YUSAS00001"] != "00001 Blue M" {
		t.Fatalf("label=%q", res.CodeLabels["YUSAS00001"])
	}
	if res.Rows != 3 {
		t.Fatalf("rows=%d", res.Rows)
	}
	if res.TotalQty() != 6 || res.CodesTotal() != 3 {
		t.Fatalf("total=%d codes=%d", res.TotalQty(), res.CodesTotal())
	}
}

func TestIngestConservesQuantity(t *testing.T) {
	rows := [][]any{}
	want := 0
	for i := 0; i < 30; i++ {
		qty := i%4 + 1
		want += qty
		inv := []string{"INV1", "INV2", "INV3"}[i%3]
		code := []string{"S00001", "S00002", "S00003", "S00004"}[i%4]
		rows = append(rows, orderRow(code, "n", "o", qty, inv, at(i*7), nil))
	}
	res, err := Ingest(mkOrders(rows...), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalQty() != want {
		t.Fatalf("total=%d want %d", res.TotalQty(), want)
	}
}

func TestIngestDetailsFirstWriteWins(t *testing.T) {
	res, err := Ingest(mkOrders(
		orderRow("S00001", "Blue", "M", 1, "INV1", at(0), nil),
		orderRow("S00001", "Red", "XL", 1, "INV1", at(5), nil),
	), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	det := res.Details["INV1"]["YUSAS00001"]
	if det.Name != "Blue" || det.Option != "M" {
		t.Fatalf("detail=%+v", det)
	}
	if res.Mapping["INV1"]["YUSAS00001"] != 2 {
		t.Fatalf("mapping=%v", res.Mapping)
	}
}

func TestIngestBlankLabelDoesNotClaimCode(t *testing.T) {
	res, err := Ingest(mkOrders(
		orderRow("S00001", "Blue", "M", 1, "INV1", at(0), ""),
		orderRow("S00001", "Blue", "M", 1, "INV1", at(1), "   "),
		orderRow("S00001", "Blue", "M", 1, "INV1", at(2), "00001 Blue M"),
		orderRow("S00001", "Blue", "M", 1, "INV1", at(3), "later label"),
	), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.CodeLabels["YUSAS00001"]; got != "00001 Blue M" {
		t.Fatalf("label=%q", got)
	}
}

func TestIngestRunDetection(t *testing.T) {
	res, err := Ingest(mkOrders(
		orderRow("S00001", "X", "", 1, "INV1", at(0), nil),
		orderRow("S00001", "X", "", 1, "INV1", at(1), nil),
		orderRow("S00002", "Y", "", 1, "INV1", at(5), nil),
		orderRow("S00001", "X", "", 1, "INV1", at(6), nil),
	), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Runs["INV1"]["YUSAS00001"]; got != 2 {
		t.Fatalf("run X=%d", got)
	}
	if _, ok := res.Runs["INV1"]["YUSAS00002"]; ok {
		t.Fatal("single row recorded as a run")
	}
}

func TestIngestRunByTimestampAcrossInvoices(t *testing.T) {
	res, err := Ingest(mkOrders(
		orderRow("S00001", "X", "", 1, "INV1", at(0), nil),
		orderRow("S00002", "Y", "", 1, "INV1", at(1), nil),
		orderRow("S00001", "X", "", 1, "INV2", at(2), nil),
		orderRow("S00001", "X", "", 1, "INV3", at(3), nil),
	), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, inv := range []string{"INV1", "INV2", "INV3"} {
		if got := res.Runs[inv]["YUSAS00001"]; got != 3 {
			t.Fatalf("%s run=%d", inv, got)
		}
	}
}

func TestIngestSortsByTime(t *testing.T) {
	res, err := Ingest(mkOrders(
		orderRow("S00003", "C", "", 1, "INV1", "not a time", nil),
		orderRow("S00002", "B", "", 1, "INV1", "2024-03-04 09:00:02", nil),
		orderRow("S00001", "A", "", 1, "INV1", "2024-03-04T09:00:01", nil),
	), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"YUSAS00001", "YUSAS00002", "YUSAS00003"}
	for i, w := range want {
		if got := res.Sheet.Cell(i+2, 8); got != w {
			t.Fatalf("row %d=%v want %s", i+2, got, w)
		}
	}
	if order := res.InvoiceOrder["INV1"]; order[0] != "YUSAS00001" || order[2] != "YUSAS00003" {
		t.Fatalf("order=%v", order)
	}
}

func TestIngestFormatErrors(t *testing.T) {
	cases := map[string]*grid.Grid{
		"nil":         nil,
		"header only": mkOrders(),
		"narrow":      grid.New([][]any{{"a", "b"}, {"S00001", "INV1"}}),
		"no invoices": mkOrders(orderRow("S00001", "A", "", 1, nil, at(0), nil)),
	}
	for name, g := range cases {
		_, err := Ingest(g, DefaultOptions())
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("%s: err=%v", name, err)
		}
		var fe *FormatError
		if !errors.As(err, &fe) || fe.Reason == "" {
			t.Fatalf("%s: no reason in %v", name, err)
		}
	}
}
