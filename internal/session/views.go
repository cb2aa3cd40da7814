package session

import (
	"slices"

	"yusaek/internal"
)

// The helpers below expect s.mu to be held.

// items lists the invoice's codes in first-appearance order.
func (s *Session) items(st *scanState, inv string) []internal.Item {
	out := []internal.Item{}
	codes, ok := st.res.Mapping[inv]
	if inv == "" || !ok {
		return out
	}

	order := st.res.InvoiceOrder[inv]
	if len(order) == 0 {
		for code := range codes {
			order = append(order, code)
		}
		slices.Sort(order)
	}

	for _, code := range order {
		det := st.res.Details[inv][code]
		out = append(out, internal.Item{
			Code:     code,
			Name:     det.Name,
			Option:   det.Option,
			Remain:   codes[code],
			RunLen:   st.res.Runs[inv][code],
			Defect:   st.defects[code],
			Incoming: s.incoming[code],
		})
	}
	return out
}

func (s *Session) firstRemaining(st *scanState, inv string) *internal.Item {
	for _, item := range s.items(st, inv) {
		if item.Remain > 0 {
			return &item
		}
	}
	return nil
}

// preview walks the invoice sequence after the current invoice and returns
// the first invoice whose next item is neither a bulk run nor the code just
// picked.
func (s *Session) preview(st *scanState) *internal.PreviewItem {
	seq := st.res.InvoiceSeq
	start := 0
	if st.currentInvoice != "" {
		if i := slices.Index(seq, st.currentInvoice); i >= 0 {
			start = i + 1
		}
	}

	for _, inv := range seq[start:] {
		item := s.firstRemaining(st, inv)
		if item == nil {
			continue
		}
		if item.RunLen >= s.opts.PreviewSkipRunLen {
			continue
		}
		if st.lastScannedCode != "" && item.Code == st.lastScannedCode {
			continue
		}
		return &internal.PreviewItem{Invoice: inv, Item: *item}
	}
	return nil
}

func (s *Session) invoiceHasDefect(st *scanState, inv string) bool {
	if inv == "" {
		return false
	}
	for code := range st.res.Mapping[inv] {
		if st.defects[code] > 0 {
			return true
		}
	}
	return false
}
