// Package media is the boundary to the hosted image service: raw bytes in,
// public URL out.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// GCSUploader stores objects in a Cloud Storage bucket and returns the
// public object URL.
type GCSUploader struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSUploader(ctx context.Context, bucket, baseURL string) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	object := uuid.NewString() + path.Ext(filename)
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	return fmt.Sprintf("%s/%s/%s", u.baseURL, u.bucket, object), nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }
