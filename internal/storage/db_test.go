package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yusaek/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListUploads(t *testing.T) {
	db := openTestDB(t)

	first, err := db.InsertUpload(internal.UploadRow{
		TraceID: "trace-1", Identity: "alice", Kind: internal.UploadPrimary,
		Filename: "orders.xlsx", Hash: "abc", Rows: 10, Invoices: 3, Codes: 5, TotalQty: 10,
		Timings: map[string]float64{"totalMs": 12},
	})
	require.NoError(t, err)
	assert.Equal(t, "trace-1", first.TraceID)
	assert.Equal(t, internal.UploadPrimary, first.Kind)
	assert.Equal(t, 12.0, first.Timings["totalMs"])
	assert.NotEmpty(t, first.CreatedAt)

	_, err = db.InsertUpload(internal.UploadRow{
		TraceID: "trace-2", Identity: "bob", Kind: internal.UploadIncoming,
		Filename: "incoming.xlsx", Hash: "def",
	})
	require.NoError(t, err)

	all, err := db.ListUploads("", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "trace-2", all[0].TraceID, "newest first")

	alice, err := db.ListUploads("alice", 10)
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, 3, alice[0].Invoices)
}

func TestMustUploadByTraceIDMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := db.MustUploadByTraceID("nope")
	assert.Error(t, err)
}

func TestDefectExports(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InsertDefectExport(internal.DefectExportRow{TraceID: "x1", Identity: "alice", Format: "csv", Codes: 2, Units: 5}))

	rows, err := db.ListDefectExports("alice", 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Units)
	assert.Equal(t, "csv", rows[0].Format)
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	missing, err := db.GetMetadata("last_upload")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.SetMetadata("last_upload", "a"))
	require.NoError(t, db.SetMetadata("last_upload", "b"))
	got, err := db.GetMetadata("last_upload")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b", *got)
}
