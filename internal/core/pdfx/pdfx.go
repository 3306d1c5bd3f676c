// Package pdfx extracts plain text from PDF files, one string per page.
package pdfx

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
)

// Extractor reads page text with the pure-Go pdf parser.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Pages returns the plain text of up to maxPages pages (all pages when
// maxPages <= 0). Work is bounded by maxPages, independent of document
// length. Parser failures map to errs.ErrProcessing.
func (e *Extractor) Pages(path string, maxPages int) (pages []string, err error) {
	// The pdf package panics on some malformed files instead of
	// returning an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: pdf parser panic on %s: %v", errs.ErrProcessing, path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrProcessing, path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	if maxPages <= 0 || maxPages > total {
		maxPages = total
	}

	pages = make([]string, 0, maxPages)
	for i := 1; i <= maxPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: extract page %d of %s: %v", errs.ErrProcessing, i, path, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

var _ core.PageExtractor = (*Extractor)(nil)
