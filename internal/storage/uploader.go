package storage

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes a blob and returns a publicly fetchable URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

type gcsUploader struct {
	client *storage.Client
	bucket string
}

func NewGCSUploader(ctx context.Context, bucket string) (Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	return &gcsUploader{client: client, bucket: bucket}, nil
}

// Upload writes the object with a firebase download token so the frontend can
// fetch it without signed URLs.
func (u *gcsUploader) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	token := uuid.NewString()
	obj := u.client.Bucket(u.bucket).Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	escapedPath := url.PathEscape(objectPath)
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucket, escapedPath, token), nil
}
