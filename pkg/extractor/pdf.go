package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts text from PDF files.
type PDFExtractor struct {
	MaxPages int
}

func (p *PDFExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	if len(content) < 4 || string(content[:4]) != "%PDF" {
		return "", &ExtractionError{
			Format:  "pdf",
			Message: "missing %PDF header",
		}
	}

	reader := bytes.NewReader(content)
	doc, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", &ExtractionError{
			Format:  "pdf",
			Message: fmt.Sprintf("parse error: %v", err),
		}
	}

	var textBuilder strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if p.MaxPages > 0 && i > p.MaxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", &ExtractionError{
			Format:  "pdf",
			Message: "document contains no extractable text",
		}
	}

	return text, nil
}
