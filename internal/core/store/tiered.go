package store

import (
	"context"
	"fmt"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/models"
)

// TieredStore routes writes by explicit tier and composes reads across
// the hot and cold tiers. The hot tier is always present; the cold
// tier may be nil (unconfigured), in which case cold writes fail and
// reads degrade to hot-only results.
type TieredStore struct {
	hot  core.VectorStore
	cold core.VectorStore
}

// NewTieredStore wires the two tiers. Pass cold == nil when no durable
// tier is configured.
func NewTieredStore(hot core.VectorStore, cold core.VectorStore) (*TieredStore, error) {
	if hot == nil {
		return nil, fmt.Errorf("%w: hot tier store is required", errs.ErrConfig)
	}
	return &TieredStore{hot: hot, cold: cold}, nil
}

// ColdEnabled reports whether the durable tier is configured.
func (t *TieredStore) ColdEnabled() bool {
	return t.cold != nil
}

// Add appends chunks to the selected tier. Writing to the cold tier
// while it is unconfigured fails with errs.ErrConfig and leaves the hot
// tier untouched.
func (t *TieredStore) Add(ctx context.Context, chunks []models.EmbeddedChunk, tier models.Tier) error {
	switch tier {
	case models.TierHot:
		return t.hot.Add(ctx, chunks)
	case models.TierCold:
		if t.cold == nil {
			return fmt.Errorf("%w: cold tier is not configured (DATABASE_URL unset)", errs.ErrConfig)
		}
		return t.cold.Add(ctx, chunks)
	default:
		return fmt.Errorf("%w: unknown tier %q", errs.ErrConfig, tier)
	}
}

// Search queries the hot tier for up to k results. When the hot tier
// alone satisfies k the cold tier is never queried; otherwise the cold
// tier fills the shortfall and its results rank after every hot result.
// Results are never interleaved across tiers by distance.
func (t *TieredStore) Search(ctx context.Context, query []float32, k int) ([]models.EmbeddedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	hot, err := t.hot.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	if len(hot) >= k {
		return hot[:k], nil
	}

	if t.cold == nil {
		// Shortfall is allowed when no cold tier exists.
		return hot, nil
	}

	cold, err := t.cold.Search(ctx, query, k-len(hot))
	if err != nil {
		return nil, err
	}
	return append(hot, cold...), nil
}
