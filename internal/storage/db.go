package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"yusaek/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS uploads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL UNIQUE,
  identity TEXT NOT NULL,
  kind TEXT NOT NULL,
  filename TEXT NOT NULL,
  hash TEXT NOT NULL,
  rowCount INTEGER NOT NULL DEFAULT 0,
  invoices INTEGER NOT NULL DEFAULT 0,
  codes INTEGER NOT NULL DEFAULT 0,
  totalQty INTEGER NOT NULL DEFAULT 0,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_uploads_identity ON uploads(identity);

CREATE TABLE IF NOT EXISTS defect_exports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL UNIQUE,
  identity TEXT NOT NULL,
  format TEXT NOT NULL,
  codes INTEGER NOT NULL,
  units INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertUpload(row internal.UploadRow) (internal.UploadRow, error) {
	timingsJSON, _ := json.Marshal(row.Timings)
	result, err := d.conn.Exec(`
INSERT INTO uploads (traceId, identity, kind, filename, hash, rowCount, invoices, codes, totalQty, timingsJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, row.TraceID, row.Identity, string(row.Kind), row.Filename, row.Hash, row.Rows, row.Invoices, row.Codes, row.TotalQty, string(timingsJSON))
	if err != nil {
		return internal.UploadRow{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return internal.UploadRow{}, err
	}

	stored, err := d.GetUploadByID(int(id))
	if err != nil {
		return internal.UploadRow{}, err
	}
	if stored == nil {
		return internal.UploadRow{}, errors.New("failed to insert upload")
	}
	return *stored, nil
}

const uploadColumns = `id, traceId, identity, kind, filename, hash, rowCount, invoices, codes, totalQty, timingsJson, createdAt`

func (d *DB) GetUploadByID(id int) (*internal.UploadRow, error) {
	row, err := scanUpload(d.conn.QueryRow(`SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetUploadByTraceID(traceID string) (*internal.UploadRow, error) {
	row, err := scanUpload(d.conn.QueryRow(`SELECT `+uploadColumns+` FROM uploads WHERE traceId = ?`, traceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListUploads returns the newest uploads first; an empty identity lists all.
func (d *DB) ListUploads(identity string, limit int) ([]internal.UploadRow, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads`
	args := []any{}
	if identity != "" {
		query += ` WHERE identity = ?`
		args = append(args, identity)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.UploadRow
	for rows.Next() {
		row, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(s rowScanner) (internal.UploadRow, error) {
	var row internal.UploadRow
	var kind, timingsJSON string
	if err := s.Scan(
		&row.ID, &row.TraceID, &row.Identity, &kind, &row.Filename, &row.Hash,
		&row.Rows, &row.Invoices, &row.Codes, &row.TotalQty, &timingsJSON, &row.CreatedAt,
	); err != nil {
		return internal.UploadRow{}, err
	}
	row.Kind = internal.UploadKind(kind)
	_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
	return row, nil
}

func (d *DB) InsertDefectExport(row internal.DefectExportRow) error {
	_, err := d.conn.Exec(`
INSERT INTO defect_exports (traceId, identity, format, codes, units)
VALUES (?, ?, ?, ?, ?)
`, row.TraceID, row.Identity, row.Format, row.Codes, row.Units)
	return err
}

func (d *DB) ListDefectExports(identity string, limit int) ([]internal.DefectExportRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, identity, format, codes, units, createdAt
FROM defect_exports WHERE identity = ? ORDER BY id DESC LIMIT ?
`, identity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DefectExportRow
	for rows.Next() {
		var row internal.DefectExportRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Identity, &row.Format, &row.Codes, &row.Units, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) MustUploadByTraceID(traceID string) (internal.UploadRow, error) {
	row, err := d.GetUploadByTraceID(traceID)
	if err != nil {
		return internal.UploadRow{}, err
	}
	if row == nil {
		return internal.UploadRow{}, fmt.Errorf("upload not found: traceId=%s", traceID)
	}
	return *row, nil
}
