package internal

type ScanResult string

const (
	ResultSet       ScanResult = "SET"
	ResultNotFound  ScanResult = "NOT_FOUND"
	ResultNoInvoice ScanResult = "NO_INVOICE"
	ResultTrue      ScanResult = "TRUE"
	ResultFalse     ScanResult = "FALSE"
)

type UploadKind string

const (
	UploadPrimary  UploadKind = "primary"
	UploadIncoming UploadKind = "incoming"
)

type Item struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Option   string `json:"option"`
	Remain   int    `json:"remain"`
	RunLen   int    `json:"run_len"`
	Defect   int    `json:"defect"`
	Incoming int    `json:"incoming"`
}

type PreviewItem struct {
	Invoice string `json:"invoice"`
	Item
}

type DefectRow struct {
	Code   string `json:"code"`
	Count  int    `json:"count"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

type Status struct {
	Loaded           bool         `json:"loaded"`
	CurrentInvoice   string       `json:"current_invoice,omitempty"`
	Invoices         int          `json:"invoices"`
	Items            []Item       `json:"items"`
	CurrentNext      *Item        `json:"current_next"`
	NextPreview      *PreviewItem `json:"next_preview"`
	Defects          []DefectRow  `json:"defects"`
	InvoiceHasDefect bool         `json:"invoice_has_defect"`
	IncomingCodes    int          `json:"incoming_codes"`
}

type InvoiceScan struct {
	Found            bool         `json:"found"`
	Result           ScanResult   `json:"result"`
	Invoice          string       `json:"invoice"`
	Items            []Item       `json:"items"`
	CurrentNext      *Item        `json:"current_next"`
	NextPreview      *PreviewItem `json:"next_preview"`
	Defects          []DefectRow  `json:"defects"`
	InvoiceHasDefect bool         `json:"invoice_has_defect"`
}

type ItemScan struct {
	Matched     bool         `json:"matched"`
	Result      ScanResult   `json:"result"`
	Invoice     string       `json:"invoice,omitempty"`
	Raw         string       `json:"raw,omitempty"`
	Code        string       `json:"code,omitempty"`
	Name        string       `json:"name,omitempty"`
	Option      string       `json:"option,omitempty"`
	Remain      int          `json:"remain"`
	InvoiceDone bool         `json:"invoice_done"`
	Items       []Item       `json:"items"`
	CurrentNext *Item        `json:"current_next"`
	NextPreview *PreviewItem `json:"next_preview"`
	Defects     []DefectRow  `json:"defects"`
}

type DefectChange struct {
	Code        string       `json:"code"`
	Count       int          `json:"defect_count"`
	Items       []Item       `json:"items"`
	CurrentNext *Item        `json:"current_next"`
	NextPreview *PreviewItem `json:"next_preview"`
	Defects     []DefectRow  `json:"defects"`
}

type UploadSummary struct {
	TraceID    string `json:"trace_id"`
	Invoices   int    `json:"invoices"`
	CodesTotal int    `json:"codes_total"`
	Rows       int    `json:"rows"`
	TotalQty   int    `json:"total_qty"`
}

type IncomingSummary struct {
	TraceID  string `json:"trace_id"`
	Codes    int    `json:"codes"`
	TotalQty int    `json:"total_qty"`
}

type UploadRow struct {
	ID        int
	TraceID   string
	Identity  string
	Kind      UploadKind
	Filename  string
	Hash      string
	Rows      int
	Invoices  int
	Codes     int
	TotalQty  int
	Timings   map[string]float64
	CreatedAt string
}

type DefectExportRow struct {
	ID        int
	TraceID   string
	Identity  string
	Format    string
	Codes     int
	Units     int
	CreatedAt string
}
