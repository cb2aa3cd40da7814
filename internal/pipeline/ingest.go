package pipeline

import (
	"errors"
	"fmt"
	"time"

	"yusaek/internal/config"
	"yusaek/internal/grid"
	"yusaek/internal/util"
)

var ErrFormat = errors.New("format error")

type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "format error: " + e.Reason
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Columns are 1-indexed positions in the order export.
type Columns struct {
	Code    int
	Name    int
	Option  int
	Qty     int
	Invoice int
	Time    int
	Label   int
}

// required is the rightmost column a readable export must reach. Quantity
// and label are optional.
func (c Columns) required() int {
	max := 0
	for _, col := range []int{c.Code, c.Name, c.Option, c.Invoice, c.Time} {
		if col > max {
			max = col
		}
	}
	return max
}

const (
	DefaultRunWindow = 2 * time.Second
	defaultQty       = 1
)

type Options struct {
	Columns   Columns
	RunWindow time.Duration
}

func DefaultOptions() Options {
	return Options{
		Columns:   Columns{Code: 8, Name: 9, Option: 10, Qty: 11, Invoice: 13, Time: 14, Label: 15},
		RunWindow: DefaultRunWindow,
	}
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Columns: Columns{
			Code:    cfg.ColCode,
			Name:    cfg.ColName,
			Option:  cfg.ColOption,
			Qty:     cfg.ColQty,
			Invoice: cfg.ColInvoice,
			Time:    cfg.ColTime,
			Label:   cfg.ColLabel,
		},
		RunWindow: time.Duration(cfg.RunWindowSec) * time.Second,
	}
}

type Detail struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

// Result is everything derived from one order export.
type Result struct {
	Mapping      map[string]map[string]int
	Details      map[string]map[string]Detail
	Runs         map[string]map[string]int
	InvoiceOrder map[string][]string
	InvoiceSeq   []string
	CodeLabels   map[string]string

	Rows  int
	Sheet *grid.Grid
}

func (r *Result) CodesTotal() int {
	n := 0
	for _, codes := range r.Mapping {
		n += len(codes)
	}
	return n
}

func (r *Result) TotalQty() int {
	n := 0
	for _, codes := range r.Mapping {
		for _, qty := range codes {
			n += qty
		}
	}
	return n
}

// Ingest fills down the invoice column, normalizes codes, sorts by time and
// builds the per-invoice mapping with its indexes. g is modified in place
// and kept on the result.
func Ingest(g *grid.Grid, opts Options) (*Result, error) {
	cols := opts.Columns
	if g == nil || g.MaxRow() < 2 {
		return nil, &FormatError{Reason: "sheet has no data rows"}
	}
	if g.MaxCol() < cols.required() {
		return nil, &FormatError{Reason: fmt.Sprintf("sheet has %d columns, need at least %d", g.MaxCol(), cols.required())}
	}

	FillDownColumn(g, cols.Invoice)
	normalizeCodeColumn(g, cols.Code)
	SortRowsByTime(g, cols.Time)

	res := &Result{
		Mapping:      map[string]map[string]int{},
		Details:      map[string]map[string]Detail{},
		InvoiceOrder: map[string][]string{},
		CodeLabels:   map[string]string{},
		Sheet:        g,
	}
	runs := newRunTracker(opts.RunWindow)
	seenCode := map[invoiceCode]bool{}

	for r := 2; r <= g.MaxRow(); r++ {
		code := util.ToStr(g.Cell(r, cols.Code))
		inv := util.ToStr(g.Cell(r, cols.Invoice))
		qty := util.ToInt(g.Cell(r, cols.Qty), defaultQty)

		if inv == "" || code == "" || qty <= 0 {
			runs.skip(code)
			continue
		}
		res.Rows++

		if label := util.ToStr(g.Cell(r, cols.Label)); label != "" {
			if _, ok := res.CodeLabels[code]; !ok {
				res.CodeLabels[code] = label
			}
		}

		if _, ok := res.Mapping[inv]; !ok {
			res.Mapping[inv] = map[string]int{}
			res.Details[inv] = map[string]Detail{}
			res.InvoiceSeq = append(res.InvoiceSeq, inv)
		}
		key := invoiceCode{invoice: inv, code: code}
		if !seenCode[key] {
			seenCode[key] = true
			res.InvoiceOrder[inv] = append(res.InvoiceOrder[inv], code)
			res.Details[inv][code] = Detail{
				Name:   util.ToStr(g.Cell(r, cols.Name)),
				Option: util.ToStr(g.Cell(r, cols.Option)),
			}
		}
		res.Mapping[inv][code] += qty

		ts, hasTime := util.ParseTime(g.Cell(r, cols.Time))
		runs.observe(inv, code, ts, hasTime)
	}

	res.Runs = runs.finish()

	if len(res.Mapping) == 0 {
		return nil, &FormatError{Reason: "no rows with both an invoice and a product code"}
	}
	return res, nil
}
