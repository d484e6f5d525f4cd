package permits

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor produces plain text from a PDF document. The loader takes
// the interface so tests can feed report text directly.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// PDFExtractor extracts text page by page with ledongthuc/pdf.
type PDFExtractor struct{}

// Extract concatenates the plain text of every page.
func (PDFExtractor) Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
