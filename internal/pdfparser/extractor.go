package pdfparser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// PDFExtractor extracts the text layer of a PDF document. The indirection
// exists so tests can feed prepared statement text without shelling out.
type PDFExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// PdftotextExtractor implements PDFExtractor with the poppler pdftotext
// command. -layout preserves the column positions the block scanner relies
// on.
type PdftotextExtractor struct{}

// NewPdftotextExtractor creates the production extractor.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{}
}

// ExtractText runs pdftotext and returns the extracted text.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	textFile := pdfPath + ".txt"
	defer func() {
		_ = os.Remove(textFile)
	}()

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", pdfPath, textFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("error running pdftotext: %w: %s", err, out)
	}

	data, err := os.ReadFile(textFile) // #nosec G304 -- path derives from our own temp file
	if err != nil {
		return "", fmt.Errorf("error reading extracted text: %w", err)
	}
	return string(data), nil
}

// MockExtractor implements PDFExtractor for tests, returning canned text.
type MockExtractor struct {
	Text string
	Err  error
}

// NewMockExtractor creates a MockExtractor with the given canned result.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{Text: text, Err: err}
}

// ExtractText returns the canned text or error.
func (e *MockExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}
