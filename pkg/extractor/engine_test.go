package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRejectsUnknownType(t *testing.T) {
	eng := NewEngine()

	_, err := eng.Extract(context.Background(), []byte("plain text"), "text/plain")
	require.Error(t, err)

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "text/plain", unsupported.MimeType)
}

func TestPDFRejectsBadHeader(t *testing.T) {
	ext := &PDFExtractor{MaxPages: 10}

	_, err := ext.Extract(context.Background(), []byte("not a pdf at all"))
	require.Error(t, err)

	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "pdf", extraction.Format)
}

func TestPDFRejectsTruncatedFile(t *testing.T) {
	ext := &PDFExtractor{MaxPages: 10}

	// Valid header, garbage body.
	_, err := ext.Extract(context.Background(), []byte("%PDF-1.4\ngarbage"))
	require.Error(t, err)
}

func TestDOCXRejectsNonZip(t *testing.T) {
	ext := &DOCXExtractor{}

	_, err := ext.Extract(context.Background(), []byte("this is not a zip archive"))
	require.Error(t, err)

	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "docx", extraction.Format)
}

func TestEngineRoutesByMimeType(t *testing.T) {
	eng := NewEngine()

	// Both supported types reach their extractor, which then rejects the
	// malformed bytes with a format-specific error.
	var extraction *ExtractionError

	_, err := eng.Extract(context.Background(), []byte("junk"), MimePDF)
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "pdf", extraction.Format)

	_, err = eng.Extract(context.Background(), []byte("junk"), MimeDOCX)
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "docx", extraction.Format)
}
