package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yusaek/internal"
	"yusaek/internal/config"
	"yusaek/internal/grid"
	"yusaek/internal/logger"
	"yusaek/internal/storage"
)

// Sink receives ingested data; a scan session satisfies it.
type Sink interface {
	Load(res *Result) internal.UploadSummary
	LoadIncoming(counts map[string]int) internal.IncomingSummary
}

// ProcessingService turns uploaded files into session state and records an
// audit row for each one. db may be nil, in which case nothing is recorded.
type ProcessingService struct {
	db       *storage.DB
	opts     Options
	incoming IncomingColumns
	log      *logger.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, log *logger.Logger) *ProcessingService {
	return &ProcessingService{
		db:       db,
		opts:     OptionsFromConfig(cfg),
		incoming: IncomingColumnsFromConfig(cfg),
		log:      log.WithComponent("pipeline"),
	}
}

func (s *ProcessingService) ProcessUpload(identity, filename string, blob []byte, sink Sink) (internal.UploadSummary, error) {
	start := time.Now()
	trace := traceID()

	g, err := loadGrid(filename, blob)
	if err != nil {
		return internal.UploadSummary{}, err
	}
	loaded := time.Now()

	res, err := Ingest(g, s.opts)
	if err != nil {
		return internal.UploadSummary{}, fmt.Errorf("ingest %s: %w", filename, err)
	}
	ingested := time.Now()

	sum := sink.Load(res)
	sum.TraceID = trace

	s.record(internal.UploadRow{
		TraceID:  trace,
		Identity: identity,
		Kind:     internal.UploadPrimary,
		Filename: filename,
		Hash:     hashBlob(blob),
		Rows:     sum.Rows,
		Invoices: sum.Invoices,
		Codes:    sum.CodesTotal,
		TotalQty: sum.TotalQty,
		Timings: map[string]float64{
			"loadMs":   ms(loaded.Sub(start)),
			"ingestMs": ms(ingested.Sub(loaded)),
			"totalMs":  ms(time.Since(start)),
		},
	})
	if s.db != nil {
		if err := s.db.SetMetadata("last_upload:"+identity, trace); err != nil {
			s.log.Warn().Err(err).Str("trace_id", trace).Msg("metadata update failed")
		}
	}

	s.log.WithUserID(identity).WithTraceID(trace).Info().
		Str("file", filename).
		Int("invoices", sum.Invoices).
		Int("rows", sum.Rows).
		Int("total_qty", sum.TotalQty).
		Msg("order sheet loaded")
	return sum, nil
}

func (s *ProcessingService) ProcessIncoming(identity, filename string, blob []byte, sink Sink) (internal.IncomingSummary, error) {
	start := time.Now()
	trace := traceID()

	g, err := loadGrid(filename, blob)
	if err != nil {
		return internal.IncomingSummary{}, err
	}

	sum := sink.LoadIncoming(ParseIncoming(g, s.incoming))
	sum.TraceID = trace

	s.record(internal.UploadRow{
		TraceID:  trace,
		Identity: identity,
		Kind:     internal.UploadIncoming,
		Filename: filename,
		Hash:     hashBlob(blob),
		Rows:     g.MaxRow(),
		Codes:    sum.Codes,
		TotalQty: sum.TotalQty,
		Timings:  map[string]float64{"totalMs": ms(time.Since(start))},
	})

	s.log.WithUserID(identity).WithTraceID(trace).Info().
		Str("file", filename).
		Int("codes", sum.Codes).
		Msg("incoming counts loaded")
	return sum, nil
}

// RecordDefectExport notes a ledger download and returns its trace id.
func (s *ProcessingService) RecordDefectExport(identity, format string, codes, units int) string {
	trace := traceID()
	if s.db == nil {
		return trace
	}
	err := s.db.InsertDefectExport(internal.DefectExportRow{
		TraceID:  trace,
		Identity: identity,
		Format:   format,
		Codes:    codes,
		Units:    units,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("trace_id", trace).Msg("defect export not recorded")
	}
	return trace
}

// loadGrid reports any file the loaders cannot read as a FormatError.
// Formats that are recognized but not accepted keep ErrUnsupportedFormat.
func loadGrid(filename string, blob []byte) (*grid.Grid, error) {
	g, err := grid.Load(filename, blob)
	if err == nil {
		return g, nil
	}
	if errors.Is(err, grid.ErrUnsupportedFormat) {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return nil, &FormatError{Reason: fmt.Sprintf("cannot read %s: %v", filename, err)}
}

// Audit failures never fail the upload.
func (s *ProcessingService) record(row internal.UploadRow) {
	if s.db == nil {
		return
	}
	if _, err := s.db.InsertUpload(row); err != nil {
		s.log.Warn().Err(err).Str("trace_id", row.TraceID).Msg("upload not recorded")
	}
}

func traceID() string {
	return uuid.NewString()
}

func hashBlob(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
