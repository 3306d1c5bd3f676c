// Package source normalizes document references into readable local
// files. A reference is either an ordinary filesystem path or an
// s3://bucket/key URI; remote objects are downloaded to a private
// temporary file whose cleanup is guaranteed by the returned handle.
package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
)

const bucketScheme = "s3://"

// Resolver turns references into local files. The object store may be
// nil, in which case only local references can be resolved.
type Resolver struct {
	objects core.ObjectStore
}

func NewResolver(objects core.ObjectStore) *Resolver {
	return &Resolver{objects: objects}
}

// ParseBucketURI splits an s3://bucket/key reference. ok is false when
// ref does not carry the bucket scheme.
func ParseBucketURI(ref string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(ref, bucketScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(ref, bucketScheme)
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, key, true
}

// Resolve classifies ref and returns a handle to a readable local copy.
// The extension check runs before any network access; a non-PDF
// reference is rejected without a remote round trip.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*core.Resolved, error) {
	if !strings.EqualFold(path.Ext(ref), ".pdf") {
		return nil, fmt.Errorf("%w: %q is not a .pdf", errs.ErrUnsupportedFormat, ref)
	}

	bucket, key, remote := ParseBucketURI(ref)
	if !remote {
		return r.resolveLocal(ref)
	}
	return r.resolveRemote(ctx, ref, bucket, key)
}

func (r *Resolver) resolveLocal(ref string) (*core.Resolved, error) {
	info, err := os.Stat(ref)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, ref)
	}
	return &core.Resolved{Ref: ref, LocalPath: ref}, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, ref, bucket, key string) (*core.Resolved, error) {
	if r.objects == nil {
		return nil, fmt.Errorf("%w: no object store configured for %s", errs.ErrConfig, ref)
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: malformed bucket reference %q", errs.ErrNotFound, ref)
	}

	if err := r.objects.Head(ctx, bucket, key); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "ragstore-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := r.objects.DownloadTo(ctx, bucket, key, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	return &core.Resolved{Ref: ref, LocalPath: tmpPath, Temp: true}, nil
}

var _ core.SourceResolver = (*Resolver)(nil)
