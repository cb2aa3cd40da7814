// Package session holds per-operator scan state: the ingested order sheet,
// the invoice being picked, the defect ledger and incoming stock counts.
package session

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"yusaek/internal"
	"yusaek/internal/pipeline"
)

var (
	ErrNotLoaded = errors.New("no order sheet loaded")
	ErrEmptyCode = errors.New("code is empty")
	ErrNoDefects = errors.New("defect list is empty")
)

const DefaultPreviewSkipRunLen = 10

type Options struct {
	// Items whose run length reaches this are packed as a block and are
	// never offered as the preview.
	PreviewSkipRunLen int
}

func DefaultOptions() Options {
	return Options{PreviewSkipRunLen: DefaultPreviewSkipRunLen}
}

// scanState is replaced as a whole on every primary upload.
type scanState struct {
	res             *pipeline.Result
	currentInvoice  string
	lastScannedCode string
	defects         map[string]int
}

// Session is safe for concurrent use; every operation holds mu for its
// whole duration.
type Session struct {
	mu       sync.Mutex
	opts     Options
	state    atomic.Pointer[scanState]
	incoming map[string]int
}

func New(opts Options) *Session {
	if opts.PreviewSkipRunLen <= 0 {
		opts.PreviewSkipRunLen = DefaultPreviewSkipRunLen
	}
	return &Session{opts: opts, incoming: map[string]int{}}
}

// Load swaps in a freshly ingested sheet. Focus, last scan and defects are
// reset; incoming counts are kept.
func (s *Session) Load(res *pipeline.Result) internal.UploadSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Store(&scanState{res: res, defects: map[string]int{}})
	return internal.UploadSummary{
		Invoices:   len(res.Mapping),
		CodesTotal: res.CodesTotal(),
		Rows:       res.Rows,
		TotalQty:   res.TotalQty(),
	}
}

func (s *Session) LoadIncoming(counts map[string]int) internal.IncomingSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]int, len(counts))
	total := 0
	for code, n := range counts {
		next[code] = n
		total += n
	}
	s.incoming = next
	return internal.IncomingSummary{Codes: len(next), TotalQty: total}
}

func (s *Session) Status() internal.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil {
		return internal.Status{Loaded: false, Items: []internal.Item{}, Defects: []internal.DefectRow{}, IncomingCodes: len(s.incoming)}
	}
	return internal.Status{
		Loaded:           true,
		CurrentInvoice:   st.currentInvoice,
		Invoices:         len(st.res.Mapping),
		Items:            s.items(st, st.currentInvoice),
		CurrentNext:      s.firstRemaining(st, st.currentInvoice),
		NextPreview:      s.preview(st),
		Defects:          s.defectRows(st),
		InvoiceHasDefect: s.invoiceHasDefect(st, st.currentInvoice),
		IncomingCodes:    len(s.incoming),
	}
}

func (s *Session) ScanInvoice(invoice string) (internal.InvoiceScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil {
		return internal.InvoiceScan{}, ErrNotLoaded
	}
	invoice = strings.TrimSpace(invoice)
	if invoice == "" {
		return internal.InvoiceScan{}, ErrEmptyCode
	}
	if _, ok := st.res.Mapping[invoice]; !ok {
		return internal.InvoiceScan{
			Found:            false,
			Result:           internal.ResultNotFound,
			Invoice:          invoice,
			Items:            s.items(st, st.currentInvoice),
			CurrentNext:      s.firstRemaining(st, st.currentInvoice),
			NextPreview:      s.preview(st),
			Defects:          s.defectRows(st),
			InvoiceHasDefect: s.invoiceHasDefect(st, st.currentInvoice),
		}, nil
	}

	st.currentInvoice = invoice
	first := s.firstRemaining(st, invoice)
	if first != nil {
		st.lastScannedCode = first.Code
	}

	return internal.InvoiceScan{
		Found:            true,
		Result:           internal.ResultSet,
		Invoice:          invoice,
		Items:            s.items(st, invoice),
		CurrentNext:      first,
		NextPreview:      s.preview(st),
		Defects:          s.defectRows(st),
		InvoiceHasDefect: s.invoiceHasDefect(st, invoice),
	}, nil
}

// ScanItem picks one unit of raw from the focused invoice. A code that is
// absent or already fully picked yields ResultFalse and changes nothing.
func (s *Session) ScanItem(raw string) (internal.ItemScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil {
		return internal.ItemScan{}, ErrNotLoaded
	}
	inv := st.currentInvoice
	if inv == "" {
		return internal.ItemScan{
			Result:      internal.ResultNoInvoice,
			Items:       []internal.Item{},
			NextPreview: s.preview(st),
			Defects:     s.defectRows(st),
		}, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return internal.ItemScan{}, ErrEmptyCode
	}

	code := pipeline.ScanCode(raw)
	det := st.res.Details[inv][code]
	out := internal.ItemScan{
		Invoice: inv,
		Raw:     raw,
		Code:    code,
		Name:    det.Name,
		Option:  det.Option,
	}

	remain := st.res.Mapping[inv][code]
	if remain <= 0 {
		out.Result = internal.ResultFalse
		out.Remain = remain
	} else {
		st.res.Mapping[inv][code] = remain - 1
		st.lastScannedCode = code
		out.Matched = true
		out.Result = internal.ResultTrue
		out.Remain = remain - 1
		out.InvoiceDone = invoiceDone(st.res.Mapping[inv])
	}

	out.Items = s.items(st, inv)
	out.CurrentNext = s.firstRemaining(st, inv)
	out.NextPreview = s.preview(st)
	out.Defects = s.defectRows(st)
	return out, nil
}

func invoiceDone(codes map[string]int) bool {
	for _, n := range codes {
		if n != 0 {
			return false
		}
	}
	return true
}
