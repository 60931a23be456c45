package index

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// docPage is one page of extracted text, tagged with its 1-based page number.
type docPage struct {
	Number int
	Text   string
}

// extractPages pulls plain text out of a PDF, page by page. Pages that fail
// extraction are skipped rather than failing the whole document.
func extractPages(data []byte) ([]docPage, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	var pages []docPage
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, docPage{Number: i, Text: text})
	}
	return pages, nil
}
