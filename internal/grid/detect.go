package grid

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatBIFF Format = "biff"
)

var (
	zipMagic  = []byte("PK")
	biffMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// Detect sniffs the blob first and only then looks at the file name.
func Detect(name string, blob []byte) Format {
	head := blob
	if len(head) > 4096 {
		head = head[:4096]
	}
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX
	}
	if bytes.HasPrefix(head, biffMagic) {
		return FormatBIFF
	}
	text := bytes.ToLower(bytes.TrimLeft(bytes.TrimPrefix(head, utf8BOM), " \t\r\n"))
	if bytes.HasPrefix(text, []byte("<html")) || bytes.HasPrefix(text, []byte("<!doctype html")) || bytes.Contains(text, []byte("<table")) {
		return FormatHTML
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".htm", ".html":
		return FormatHTML
	}
	return FormatCSV
}

func Load(name string, blob []byte) (*Grid, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedFormat)
	}
	switch Detect(name, blob) {
	case FormatXLSX:
		return LoadXLSX(bytes.NewReader(blob))
	case FormatHTML:
		return LoadHTML(bytes.NewReader(blob))
	case FormatBIFF:
		return nil, fmt.Errorf("%w: legacy binary .xls, save the file as .xlsx", ErrUnsupportedFormat)
	default:
		return LoadCSV(bytes.NewReader(blob))
	}
}
