// Package processor turns document references into provenance-stamped
// text chunks: resolve the source, probe for extractable text, load the
// document page by page, and split within the configured chunk size.
package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/core/splitter"
	"github.com/davidemeka/ragstore/internal/models"
)

// probePages bounds the text-availability check to a fixed page
// prefix, independent of document length.
const probePages = 3

type DocumentProcessor struct {
	resolver core.SourceResolver
	pages    core.PageExtractor
	split    *splitter.Splitter
}

func NewDocumentProcessor(resolver core.SourceResolver, pages core.PageExtractor, split *splitter.Splitter) *DocumentProcessor {
	return &DocumentProcessor{resolver: resolver, pages: pages, split: split}
}

// Process loads the referenced PDF and returns its chunks. Chunks carry
// the original reference (never a temporary download path), a 0-based
// contiguous chunk index, and the 1-based page their text came from.
func (p *DocumentProcessor) Process(ctx context.Context, ref string) ([]models.Chunk, error) {
	resolved, err := p.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer resolved.Cleanup()

	// Probe before full extraction; an image-only scan must fail
	// before any chunking work starts.
	if err := p.ensureText(resolved.LocalPath, ref); err != nil {
		return nil, err
	}

	pages, err := p.pages.Pages(resolved.LocalPath, 0)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for pageNo, pageText := range pages {
		for _, text := range p.split.Split(pageText) {
			chunks = append(chunks, models.Chunk{
				Text:       text,
				Source:     ref,
				ChunkIndex: len(chunks),
				Page:       pageNo + 1,
			})
		}
	}
	return chunks, nil
}

// ensureText fails with errs.ErrOCRRequired when the first pages yield
// no machine-extractable text, carrying ref for diagnostics.
func (p *DocumentProcessor) ensureText(path, ref string) error {
	pages, err := p.pages.Pages(path, probePages)
	if err != nil {
		return fmt.Errorf("%w: %s has no extractable text: %v", errs.ErrOCRRequired, ref, err)
	}
	if strings.TrimSpace(strings.Join(pages, "")) == "" {
		return fmt.Errorf("%w: %s has no extractable text", errs.ErrOCRRequired, ref)
	}
	return nil
}

var _ core.Processor = (*DocumentProcessor)(nil)
