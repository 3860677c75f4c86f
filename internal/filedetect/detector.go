// Package filedetect sniffs encoding and validates statement files before
// any parser runs: size limits, known extensions, and consistency between a
// file's extension and its actual content signature.
package filedetect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"ledgerline/statement-import/internal/logging"
)

// DefaultMaxFileSize caps accepted uploads at 10 MiB.
const DefaultMaxFileSize = 10 << 20

// sniffLen is how many leading bytes are inspected for signatures and
// encoding detection.
const sniffLen = 1024

// ExtensionMimeTypes maps the accepted statement extensions to their MIME
// types.
var ExtensionMimeTypes = map[string]string{
	"csv":  "text/csv",
	"pdf":  "application/pdf",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xls":  "application/vnd.ms-excel",
	"ofx":  "application/x-ofx",
	"qfx":  "application/x-ofx",
	"qif":  "application/x-qif",
}

var (
	zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	pdfSignature = []byte("%PDF-")
)

// FileInfo summarizes a file for the import workflow.
type FileInfo struct {
	Name      string
	Extension string
	Size      int64
	Mime      string
}

// Detector performs read-only structural validation of statement files.
type Detector struct {
	maxFileSize int64
	logger      logging.Logger
}

// NewDetector creates a Detector. maxFileSize <= 0 selects the default cap.
func NewDetector(maxFileSize int64, logger logging.Logger) *Detector {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Detector{maxFileSize: maxFileSize, logger: logger}
}

// GetFileInfo returns name, extension, size and the MIME type implied by
// the extension. Unknown extensions yield an empty Mime.
func (d *Detector) GetFileInfo(path string) (FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("error inspecting file: %w", err)
	}
	ext := normalizedExt(path)
	return FileInfo{
		Name:      filepath.Base(path),
		Extension: ext,
		Size:      stat.Size(),
		Mime:      ExtensionMimeTypes[ext],
	}, nil
}

// DetectEncoding sniffs the character encoding of a text statement file.
// Binary container formats report "binary".
func (d *Detector) DetectEncoding(path string) (string, error) {
	head, err := readHead(path)
	if err != nil {
		return "", err
	}
	if isBinaryContent(head) {
		return "binary", nil
	}
	// DetermineEncoding falls back to windows-1252 when nothing is certain;
	// prefer utf-8 for content that actually is valid UTF-8.
	_, name, certain := charset.DetermineEncoding(head, "")
	if !certain && utf8.Valid(head) {
		return "utf-8", nil
	}
	if name == "" {
		name = "utf-8"
	}
	return name, nil
}

// ValidateFile runs the structural checks and returns the collected errors.
// Recoverable problems become entries in the error list; only I/O-level
// failures (file vanished, permission denied) return a non-nil error.
func (d *Detector) ValidateFile(path string) (bool, []string, error) {
	var errs []string

	stat, err := os.Stat(path)
	if err != nil {
		return false, nil, fmt.Errorf("error inspecting file: %w", err)
	}

	ext := normalizedExt(path)
	if _, known := ExtensionMimeTypes[ext]; !known {
		errs = append(errs, fmt.Sprintf("unsupported file extension %q", ext))
	}
	if stat.Size() == 0 {
		errs = append(errs, "file is empty")
	}
	if stat.Size() > d.maxFileSize {
		errs = append(errs, fmt.Sprintf("file size %d exceeds limit of %d bytes", stat.Size(), d.maxFileSize))
	}

	if stat.Size() > 0 {
		head, err := readHead(path)
		if err != nil {
			return false, nil, err
		}
		if msg := contentMismatch(ext, head); msg != "" {
			errs = append(errs, msg)
		}
	}

	if len(errs) > 0 {
		d.logger.Warn("File failed validation",
			logging.Field{Key: "file", Value: filepath.Base(path)},
			logging.Field{Key: "errors", Value: len(errs)})
		return false, errs, nil
	}
	return true, nil, nil
}

// contentMismatch checks the leading bytes against what the extension
// promises. Text formats must not be binary; container formats must carry
// their signature.
func contentMismatch(ext string, head []byte) string {
	switch ext {
	case "pdf":
		if !bytes.HasPrefix(head, pdfSignature) {
			return "file has .pdf extension but is not a PDF document"
		}
	case "xlsx":
		if !bytes.HasPrefix(head, zipSignature) {
			return "file has .xlsx extension but is not an Office container"
		}
	case "xls":
		if !bytes.HasPrefix(head, oleSignature) && !bytes.HasPrefix(head, zipSignature) {
			return "file has .xls extension but is not a spreadsheet container"
		}
	case "csv", "ofx", "qfx", "qif":
		if bytes.HasPrefix(head, zipSignature) || bytes.HasPrefix(head, oleSignature) {
			return fmt.Sprintf("file has .%s extension but contains a binary container signature", ext)
		}
		if isBinaryContent(head) {
			return fmt.Sprintf("file has .%s extension but contains binary content", ext)
		}
	}
	return ""
}

// isBinaryContent reports whether a buffer holds binary control bytes. Text
// statement formats should never contain null bytes.
func isBinaryContent(buf []byte) bool {
	return bytes.IndexByte(buf, 0) != -1
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- validation runs on operator-supplied paths
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return buf[:n], nil
}

func normalizedExt(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
