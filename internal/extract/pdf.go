package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFPages returns the plain text of each page in order. The slice index
// plus one is the page number. Pages that cannot be decoded come back as
// empty strings so numbering stays aligned; only an unreadable document is
// an error.
func PDFPages(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPDF(content []byte) (string, error) {
	pages, err := PDFPages(content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
