package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXExtractor extracts text from DOCX files.
type DOCXExtractor struct{}

func (d *DOCXExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	// DOCX is a ZIP container; check the signature before handing the
	// bytes to the parser.
	if len(content) < 4 || content[0] != 0x50 || content[1] != 0x4B {
		return "", &ExtractionError{
			Format:  "docx",
			Message: fmt.Sprintf("missing ZIP signature: %x", head(content, 4)),
		}
	}

	reader := bytes.NewReader(content)
	doc, err := docx.ReadDocxFromMemory(reader, int64(len(content)))
	if err != nil {
		return "", &ExtractionError{
			Format:  "docx",
			Message: fmt.Sprintf("parse error: %v", err),
		}
	}

	text := doc.Editable().GetContent()
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", &ExtractionError{
			Format:  "docx",
			Message: "document contains no extractable text",
		}
	}

	return text, nil
}

func head(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
