package session

import (
	"io"
	"slices"
	"strings"

	"yusaek/internal"
	"yusaek/internal/pipeline"
)

func (s *Session) AddDefect(raw string) (internal.DefectChange, error) {
	return s.changeDefect(raw, func(n int) int { return n + 1 })
}

// DecrementDefect drops the code from the ledger once its count reaches zero.
func (s *Session) DecrementDefect(raw string) (internal.DefectChange, error) {
	return s.changeDefect(raw, func(n int) int { return n - 1 })
}

func (s *Session) RemoveDefect(raw string) (internal.DefectChange, error) {
	return s.changeDefect(raw, func(int) int { return 0 })
}

func (s *Session) changeDefect(raw string, next func(int) int) (internal.DefectChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil {
		return internal.DefectChange{}, ErrNotLoaded
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return internal.DefectChange{}, ErrEmptyCode
	}

	code := pipeline.ScanCode(raw)
	n := next(st.defects[code])
	if n > 0 {
		st.defects[code] = n
	} else {
		delete(st.defects, code)
		n = 0
	}

	return internal.DefectChange{
		Code:        code,
		Count:       n,
		Items:       s.items(st, st.currentInvoice),
		CurrentNext: s.firstRemaining(st, st.currentInvoice),
		NextPreview: s.preview(st),
		Defects:     s.defectRows(st),
	}, nil
}

func (s *Session) Defects() ([]internal.DefectRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil {
		return nil, ErrNotLoaded
	}
	return s.defectRows(st), nil
}

// defectRows lists the ledger by code. Name and option come from the first
// invoice in sequence that carries the code.
func (s *Session) defectRows(st *scanState) []internal.DefectRow {
	codes := make([]string, 0, len(st.defects))
	for code := range st.defects {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	out := make([]internal.DefectRow, 0, len(codes))
	for _, code := range codes {
		det := detailFor(st.res, code)
		out = append(out, internal.DefectRow{
			Code:   code,
			Count:  st.defects[code],
			Name:   det.Name,
			Option: det.Option,
		})
	}
	return out
}

func detailFor(res *pipeline.Result, code string) pipeline.Detail {
	for _, inv := range res.InvoiceSeq {
		if det, ok := res.Details[inv][code]; ok {
			return det
		}
	}
	return pipeline.Detail{}
}

func (s *Session) defectLines() ([]pipeline.DefectLine, error) {
	st := s.state.Load()
	if st == nil {
		return nil, ErrNotLoaded
	}
	rows := s.defectRows(st)
	if len(rows) == 0 {
		return nil, ErrNoDefects
	}

	lines := make([]pipeline.DefectLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, pipeline.DefectLine{
			Code:   row.Code,
			Count:  row.Count,
			Name:   row.Name,
			Option: row.Option,
			Label:  st.res.CodeLabels[row.Code],
		})
	}
	return lines, nil
}

// ExportDefectsCSV renders the ledger as UTF-8 text without a BOM.
func (s *Session) ExportDefectsCSV() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.defectLines()
	if err != nil {
		return nil, err
	}
	return []byte(pipeline.BuildDefectCSV(lines)), nil
}

func (s *Session) ExportDefectsXLSX(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.defectLines()
	if err != nil {
		return err
	}
	return pipeline.WriteDefectsXLSX(lines, w)
}

// DefectTotals reports how many codes and units the ledger holds.
func (s *Session) DefectTotals() (codes, units int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil {
		return 0, 0
	}
	for _, n := range st.defects {
		units += n
	}
	return len(st.defects), units
}

// ProcessedSheet writes the time-sorted order sheet of the current load.
func (s *Session) ProcessedSheet(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	if st == nil || st.res.Sheet == nil {
		return ErrNotLoaded
	}
	return st.res.Sheet.WriteXLSX(w)
}
