// Package splitter breaks text into bounded, overlapping chunks. It
// prefers paragraph boundaries, then line breaks, then sentence ends,
// then spaces, and only cuts mid-word when nothing coarser fits within
// the chunk size.
package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/davidemeka/ragstore/internal/core/errs"
)

// Boundary separators in priority order. A finer separator is only
// consulted when the text has no occurrence of a coarser one or a
// single piece still exceeds the chunk size.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

type Splitter struct {
	chunkSize int
	overlap   int
}

// New builds a splitter producing chunks of at most chunkSize runes
// with up to overlap runes shared between consecutive chunks.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", errs.ErrConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", errs.ErrConfig, overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split chunks text. Whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	return s.split(text, separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}
	if len(seps) == 0 {
		return s.hardSplit(text)
	}
	if !strings.Contains(text, seps[0]) {
		return s.split(text, seps[1:])
	}
	// SplitAfter keeps the separator attached to the preceding piece,
	// so joining pieces reconstructs the original text.
	return s.merge(strings.SplitAfter(text, seps[0]), seps[1:])
}

// merge greedily packs pieces into chunks of at most chunkSize runes,
// seeding each new chunk with a tail of at most overlap runes from the
// previous one. Pieces that alone exceed chunkSize are re-split with
// the finer separators.
func (s *Splitter) merge(pieces []string, finer []string) []string {
	var (
		out   []string
		buf   []string
		total int
	)

	emit := func() {
		if total == 0 {
			return
		}
		if chunk := strings.TrimSpace(strings.Join(buf, "")); chunk != "" {
			out = append(out, chunk)
		}
		for total > s.overlap && len(buf) > 0 {
			total -= utf8.RuneCountInString(buf[0])
			buf = buf[1:]
		}
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if n > s.chunkSize {
			emit()
			buf, total = nil, 0
			out = append(out, s.split(piece, finer)...)
			continue
		}
		if total+n > s.chunkSize {
			emit()
			for total+n > s.chunkSize && len(buf) > 0 {
				total -= utf8.RuneCountInString(buf[0])
				buf = buf[1:]
			}
		}
		buf = append(buf, piece)
		total += n
	}
	emit()
	return out
}

// hardSplit cuts at arbitrary rune offsets, the last resort when no
// boundary exists within the chunk size.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	stride := s.chunkSize - s.overlap

	var out []string
	for start := 0; start < len(runes); start += stride {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
