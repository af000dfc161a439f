package blob

import "context"

// Store writes binaries to bucket-addressed object storage and returns a
// durable public URL.
type Store interface {
	Upload(ctx context.Context, bucket, objectPath string, data []byte, contentType string) (string, error)
}
