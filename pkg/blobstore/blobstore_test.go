package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain key", key: "reports/u1/1700000000000_0.jpg", want: "reports/u1/1700000000000_0.jpg"},
		{name: "leading slash", key: "/reports/u1/a.jpg", want: "reports/u1/a.jpg"},
		{name: "empty", key: "", wantErr: true},
		{name: "parent traversal", key: "reports/../../etc/passwd", wantErr: true},
		{name: "double slash", key: "reports//a.jpg", wantErr: true},
		{name: "backslash", key: "reports\\a.jpg", wantErr: true},
		{name: "dot segment", key: "reports/./a.jpg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	uploader := NewUploader(store, "https://reports.example.com/")
	key := PhotoKey("uid-1", 1700000000000, 1)
	assert.Equal(t, "reports/uid-1/1700000000000_1.jpg", key)

	url, err := uploader.Upload(context.Background(), key, []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://reports.example.com/v1/photos/reports/uid-1/1700000000000_1.jpg", url)

	rc, contentType, err := uploader.Open(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, "image/jpeg", contentType)
}

func TestFilesystemStoreMissingKey(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	_, _, err = store.Open(context.Background(), "reports/nobody/0_0.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemStoreMissingRoot(t *testing.T) {
	_, err := NewFilesystemStore(t.TempDir() + "/does-not-exist")
	assert.Error(t, err)
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return errors.New("bucket unavailable")
}

func (failingStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return nil, "", ErrNotFound
}

func TestUploadErrorWrapsCause(t *testing.T) {
	uploader := NewUploader(failingStore{}, "http://localhost")
	_, err := uploader.Upload(context.Background(), "reports/u/1_0.jpg", nil, "image/jpeg")

	var uploadErr *UploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, "reports/u/1_0.jpg", uploadErr.Key)

	_, err = uploader.Upload(context.Background(), "../x", nil, "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestUploadRespectsCancelledContext(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewUploader(store, "").Upload(ctx, "reports/u/1_0.jpg", []byte("x"), "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}
