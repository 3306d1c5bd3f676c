package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidemeka/ragstore/internal/core/errs"
)

type fakeObjects struct {
	headErr       error
	headCalls     int
	downloadErr   error
	downloadCalls int
	content       []byte
}

func (f *fakeObjects) Head(_ context.Context, bucket, key string) error {
	f.headCalls++
	return f.headErr
}

func (f *fakeObjects) DownloadTo(_ context.Context, bucket, key, dest string) error {
	f.downloadCalls++
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(dest, f.content, 0o600)
}

func (f *fakeObjects) List(_ context.Context, bucket string) ([]string, error) {
	return nil, nil
}

func TestParseBucketURI(t *testing.T) {
	bucket, key, ok := ParseBucketURI("s3://my-bucket/dir/doc.pdf")
	require.True(t, ok)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "dir/doc.pdf", key)

	_, _, ok = ParseBucketURI("/local/doc.pdf")
	assert.False(t, ok)
}

func TestResolve_RejectsNonPDFBeforeAnyIO(t *testing.T) {
	objects := &fakeObjects{}
	r := NewResolver(objects)

	for _, ref := range []string{"notes.txt", "s3://bucket/notes.txt", "report.docx"} {
		_, err := r.Resolve(context.Background(), ref)
		require.Error(t, err, ref)
		assert.ErrorIs(t, err, errs.ErrUnsupportedFormat, ref)
	}
	assert.Zero(t, objects.headCalls)
	assert.Zero(t, objects.downloadCalls)
}

func TestResolve_LocalMissingFile(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestResolve_LocalDirectoryIsNotAFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "looks-like.pdf")
	require.NoError(t, os.Mkdir(dir, 0o755))

	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), dir)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestResolve_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	r := NewResolver(nil)
	resolved, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved.Ref)
	assert.Equal(t, path, resolved.LocalPath)
	assert.False(t, resolved.Temp)

	// Cleanup must never delete the caller's own file.
	resolved.Cleanup()
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestResolve_RemoteDownloadsAndCleansUp(t *testing.T) {
	objects := &fakeObjects{content: []byte("%PDF-1.4 remote")}
	r := NewResolver(objects)

	resolved, err := r.Resolve(context.Background(), "s3://bucket/docs/manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/docs/manual.pdf", resolved.Ref)
	assert.True(t, resolved.Temp)
	assert.NotEqual(t, resolved.Ref, resolved.LocalPath)

	data, err := os.ReadFile(resolved.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, objects.content, data)

	local := resolved.LocalPath
	resolved.Cleanup()
	_, err = os.Stat(local)
	assert.True(t, os.IsNotExist(err))

	// double Cleanup is harmless
	resolved.Cleanup()
}

func TestResolve_RemoteMissingObject(t *testing.T) {
	objects := &fakeObjects{headErr: fmt.Errorf("%w: s3://bucket/missing.pdf", errs.ErrNotFound)}
	r := NewResolver(objects)

	_, err := r.Resolve(context.Background(), "s3://bucket/missing.pdf")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NotErrorIs(t, err, errs.ErrConnectivity)
	assert.Zero(t, objects.downloadCalls)
}

func TestResolve_RemoteDownloadFailure(t *testing.T) {
	objects := &fakeObjects{downloadErr: fmt.Errorf("%w: connection reset", errs.ErrConnectivity)}
	r := NewResolver(objects)

	_, err := r.Resolve(context.Background(), "s3://bucket/doc.pdf")
	assert.ErrorIs(t, err, errs.ErrConnectivity)
}

func TestResolve_RemoteWithoutObjectStore(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.Resolve(context.Background(), "s3://bucket/doc.pdf")
	assert.ErrorIs(t, err, errs.ErrConfig)
}
