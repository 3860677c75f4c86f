package filedetect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func TestValidateFileAcceptsCSV(t *testing.T) {
	d := NewDetector(0, nil)
	path := writeFile(t, "statement.csv", []byte("Date,Description,Amount\n2025-01-15,Coffee,-4.50\n"))

	valid, errs, err := d.ValidateFile(path)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestValidateFileCollectsProblems(t *testing.T) {
	d := NewDetector(0, nil)
	path := writeFile(t, "statement.xyz", nil)

	valid, errs, err := d.ValidateFile(path)
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], `unsupported file extension "xyz"`)
	assert.Contains(t, errs[1], "file is empty")
}

func TestValidateFileSizeLimit(t *testing.T) {
	d := NewDetector(10, nil)
	path := writeFile(t, "statement.csv", []byte("Date,Description,Amount\n"))

	valid, errs, err := d.ValidateFile(path)
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "exceeds limit")
}

func TestValidateFileSignatureMismatch(t *testing.T) {
	d := NewDetector(0, nil)

	// ZIP container claiming to be CSV.
	path := writeFile(t, "statement.csv", append(append([]byte{}, zipSignature...), []byte("rest")...))
	valid, errs, err := d.ValidateFile(path)
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "binary container signature")

	// Text claiming to be PDF.
	path = writeFile(t, "statement.pdf", []byte("just text"))
	valid, errs, err = d.ValidateFile(path)
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not a PDF document")

	// Real-looking PDF passes.
	path = writeFile(t, "statement.pdf", []byte("%PDF-1.7 ..."))
	valid, _, err = d.ValidateFile(path)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateFileMissing(t *testing.T) {
	d := NewDetector(0, nil)
	_, _, err := d.ValidateFile(filepath.Join(t.TempDir(), "gone.csv"))
	assert.Error(t, err)
}

func TestGetFileInfo(t *testing.T) {
	d := NewDetector(0, nil)
	path := writeFile(t, "Statement.CSV", []byte("Date,Amount\n"))

	info, err := d.GetFileInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "Statement.CSV", info.Name)
	assert.Equal(t, "csv", info.Extension)
	assert.Equal(t, "text/csv", info.Mime)
	assert.Equal(t, int64(12), info.Size)

	path = writeFile(t, "unknown.bin", []byte("x"))
	info, err = d.GetFileInfo(path)
	require.NoError(t, err)
	assert.Empty(t, info.Mime)
}

func TestDetectEncoding(t *testing.T) {
	d := NewDetector(0, nil)

	path := writeFile(t, "utf8.csv", []byte("Date,Description\n2025-01-15,Káva\n"))
	enc, err := d.DetectEncoding(path)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", enc)

	path = writeFile(t, "binary.xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01})
	enc, err = d.DetectEncoding(path)
	require.NoError(t, err)
	assert.Equal(t, "binary", enc)
}
