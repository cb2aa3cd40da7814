package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"yusaek/internal"
	"yusaek/internal/session"
)

// Spreadsheet consumers need the BOM to read the CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

type invoiceRequest struct {
	Invoice string `json:"invoice" validate:"required,max=128"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required,max=256"`
}

func (s *Server) sessionFor(r *http.Request) *session.Session {
	return s.sessions.Get(identityFrom(r.Context()))
}

// readUpload returns the multipart "file" part within the configured size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return "", nil, badRequest("file too large or invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, badRequest("missing file in request")
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if len(blob) == 0 {
		return "", nil, badRequest("uploaded file is empty")
	}
	return header.Filename, blob, nil
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	name, blob, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityFrom(r.Context())
	sum, err := s.proc.ProcessUpload(identity, name, blob, s.sessionFor(r))
	if err != nil {
		s.log.WithUserID(identity).Warn().Err(err).Str("file", name).Msg("upload rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) uploadIncoming(w http.ResponseWriter, r *http.Request) {
	name, blob, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	identity := identityFrom(r.Context())
	sum, err := s.proc.ProcessIncoming(identity, name, blob, s.sessionFor(r))
	if err != nil {
		s.log.WithUserID(identity).Warn().Err(err).Str("file", name).Msg("incoming upload rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionFor(r).Status())
}

func (s *Server) scanInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.sessionFor(r).ScanInvoice(req.Invoice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) scanItem(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.sessionFor(r).ScanItem(req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) defectChange(op func(*session.Session, string) (internal.DefectChange, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		res, err := op(s.sessionFor(r), req.Code)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) defectList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.sessionFor(r).Defects()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"defects": rows})
}

func (s *Server) defectExport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	buf := &bytes.Buffer{}
	var contentType string
	switch format {
	case "csv":
		out, err := sess.ExportDefectsCSV()
		if err != nil {
			writeError(w, err)
			return
		}
		buf.Write(utf8BOM)
		buf.Write(out)
		contentType = csvContentType
	case "xlsx":
		if err := sess.ExportDefectsXLSX(buf); err != nil {
			writeError(w, err)
			return
		}
		contentType = xlsxContentType
	default:
		writeError(w, badRequest("format must be csv or xlsx"))
		return
	}

	codes, units := sess.DefectTotals()
	trace := s.proc.RecordDefectExport(identityFrom(r.Context()), format, codes, units)
	w.Header().Set("X-Trace-ID", trace)
	download(w, contentType, "defects_"+time.Now().Format("20060102_150405")+"."+format, buf.Bytes())
}

func (s *Server) processed(w http.ResponseWriter, r *http.Request) {
	buf := &bytes.Buffer{}
	if err := s.sessionFor(r).ProcessedSheet(buf); err != nil {
		writeError(w, err)
		return
	}
	download(w, xlsxContentType, "processed.xlsx", buf.Bytes())
}

func download(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
