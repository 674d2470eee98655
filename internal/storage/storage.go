package storage

import (
	"context"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows a PUT of
	// the object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// PublicURL resolves a stored object key to the URL clients load it from.
	PublicURL(objectKey string) string

	DeleteObject(ctx context.Context, objectKey string) error
}

// JoinPublicURL joins a base URL and an object key with exactly one slash.
// Keys that are already absolute URLs are returned untouched, as is an empty key.
func JoinPublicURL(base, objectKey string) string {
	if objectKey == "" {
		return ""
	}
	if strings.HasPrefix(objectKey, "http://") || strings.HasPrefix(objectKey, "https://") {
		return objectKey
	}
	if base == "" {
		return "/" + strings.TrimLeft(objectKey, "/")
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(objectKey, "/")
}
