package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the blob-store capability the pipeline depends on. Synthesized
// audio is uploaded here and the resulting public URL is handed to the video
// providers.
type Storage interface {
	// Upload stores data under key and returns a publicly reachable URL.
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download opens the object for reading.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL returns a temporary download URL.
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete removes the object.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetStorageType returns the backend type.
	GetStorageType() string
}

// StorageType enumerates supported backends.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeOSS   StorageType = "oss"
)
