package pdfextract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page holds the extracted plain text of one PDF page.
type Page struct {
	Number int    `json:"page"`
	Text   string `json:"text"`
}

// Result is the page-level extraction output. TotalPages counts every page
// in the file, including pages that yielded no text.
type Result struct {
	Pages      []Page
	TotalPages int
}

// ExtractPages reads the entire content of r and extracts plain text per
// page. Pages with no extractable text are skipped; unreadable pages are
// skipped rather than failing the whole document.
func ExtractPages(r io.Reader) (*Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return &Result{}, nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return nil, err
	}

	total := pdfReader.NumPage()
	result := &Result{TotalPages: total}
	for i := 1; i <= total; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		result.Pages = append(result.Pages, Page{Number: i, Text: text})
	}
	return result, nil
}
