// Package errs defines the error taxonomy shared by the ingestion and
// retrieval pipeline. Callers classify failures with errors.Is against
// these sentinels; producers wrap them with fmt.Errorf("...: %w", ...).
package errs

import "errors"

var (
	// ErrNotFound signals a missing file or bucket object.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedFormat signals a reference that is not a .pdf.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrOCRRequired signals a PDF with no machine-extractable text.
	ErrOCRRequired = errors.New("ocr required")
	// ErrConnectivity signals a failed remote access (download, list).
	ErrConnectivity = errors.New("connectivity error")
	// ErrProcessing signals a parser failure unrelated to OCR.
	ErrProcessing = errors.New("processing failed")
	// ErrConfig signals missing or contradictory configuration.
	ErrConfig = errors.New("configuration error")
	// ErrEmbedding signals an embedding backend call failure.
	ErrEmbedding = errors.New("embedding failed")
)
