package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store keeps binary objects addressed by a slash separated key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// CleanKey validates a key and returns its canonical form.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "\\") || strings.ContainsRune(key, 0) {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	cleaned := path.Clean(key)
	if cleaned != key {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// Uploader writes blobs to a store and resolves the public URL they are served from.
type Uploader struct {
	store         Store
	publicBaseURL string
}

func NewUploader(store Store, publicBaseURL string) *Uploader {
	return &Uploader{
		store:         store,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (u *Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", &UploadError{Key: key, Err: err}
	}
	if err := u.store.Put(ctx, cleaned, data, contentType); err != nil {
		slog.Error("failed to upload blob", slog.String("key", cleaned), slog.String("error", err.Error()))
		return "", &UploadError{Key: cleaned, Err: err}
	}
	return u.ResolveURL(cleaned), nil
}

// ResolveURL returns the retrievable URL for a stored key.
func (u *Uploader) ResolveURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return u.publicBaseURL + "/v1/photos/" + strings.Join(parts, "/")
}

func (u *Uploader) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return nil, "", err
	}
	return u.store.Open(ctx, cleaned)
}

// PhotoKey builds the storage key for one normalized report photo.
func PhotoKey(uid string, unixMillis int64, slot int) string {
	return fmt.Sprintf("reports/%s/%d_%d.jpg", uid, unixMillis, slot)
}
