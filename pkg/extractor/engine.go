// Package extractor converts uploaded files into plain text. Exactly two
// formats are supported: PDF and DOCX. Extraction is a pure transform over
// bytes already at rest; large inputs are not truncated here.
package extractor

import (
	"context"
	"fmt"
)

// Supported mime types.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// UnsupportedTypeError reports an extraction request for a mime type the
// engine does not handle.
type UnsupportedTypeError struct {
	MimeType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: %q", e.MimeType)
}

// ExtractionError reports a file that matched a supported type but could
// not be parsed.
type ExtractionError struct {
	Format  string
	Message string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %s", e.Format, e.Message)
}

// Extractor converts one file format into plain text.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
}

// Engine routes extraction requests by declared mime type.
type Engine struct {
	extractors map[string]Extractor
}

// NewEngine returns an engine handling PDF and DOCX.
func NewEngine() *Engine {
	return &Engine{
		extractors: map[string]Extractor{
			MimePDF:  &PDFExtractor{MaxPages: 1000},
			MimeDOCX: &DOCXExtractor{},
		},
	}
}

// Extract converts content into plain text according to its declared mime
// type. Unknown types fail with UnsupportedTypeError.
func (e *Engine) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	ext, ok := e.extractors[mimeType]
	if !ok {
		return "", &UnsupportedTypeError{MimeType: mimeType}
	}
	return ext.Extract(ctx, content)
}
