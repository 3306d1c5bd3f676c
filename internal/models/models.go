package models

// Chunk is one bounded span of document text with its provenance.
// Source is the original reference the document was loaded from (a
// local path or an s3:// URI), never a temporary download path.
type Chunk struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`    // 0-based, contiguous per source
	Page       int    `json:"page,omitempty"` // 1-based PDF page, 0 = unknown
}

// EmbeddedChunk is a Chunk plus its embedding vector. A store rejects
// an EmbeddedChunk whose vector length does not match the store's
// configured dimensionality.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32 `json:"embedding"`
}

// Tier selects which half of the tiered store a write goes to.
type Tier string

const (
	// TierHot is the low-latency local store, always available.
	TierHot Tier = "hot"
	// TierCold is the durable remote store; it may be unconfigured.
	TierCold Tier = "cold"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierHot || t == TierCold
}

// IngestionResult accumulates the outcome of one bulk ingestion run.
// It is always returned, even when every document failed.
type IngestionResult struct {
	Processed int      `json:"processed_count"`
	Errors    []string `json:"errors"`
}
