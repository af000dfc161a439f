package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

// GCSStore uploads to Google Cloud Storage buckets. Buckets are expected to
// grant allUsers object-viewer access so uploaded objects are publicly
// readable without per-object ACLs.
type GCSStore struct {
	client        *storage.Client
	publicBaseURL string
}

func NewGCSStore(client *storage.Client) *GCSStore {
	return &GCSStore{client: client, publicBaseURL: defaultPublicBaseURL}
}

func (s *GCSStore) Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error) {
	if s.client == nil {
		return "", errors.New("gcs store: storage client is nil")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return "", errors.New("gcs store: bucket is empty")
	}

	w := s.client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s/%s: %w", bucket, objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s/%s: %w", bucket, objectPath, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, bucket, objectPath), nil
}
