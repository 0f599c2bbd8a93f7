package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageSeparator is appended after each extracted PDF page. Parsers use it to
// keep meal-plan and assessment sections from bleeding into each other across
// page boundaries.
const PageSeparator = "\n--- FIM DA PÁGINA ---\n"

func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		buf.WriteString(PageSeparator)
	}
	return buf.String(), nil
}
