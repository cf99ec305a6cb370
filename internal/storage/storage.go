// Package storage abstracts where rendered quote documents are archived.
//
// Two implementations exist: LocalStorage writes to the filesystem for
// development, R2Storage writes to Cloudflare R2 (S3-compatible) in
// production.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for archive storage operations.
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key. Returns ErrKeyExists when the
	// key is taken and overwrite is disabled.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key. The caller must close
	// the reader. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key. Idempotent.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for accessing the object: permanent for public
	// objects, presigned for the given duration otherwise.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. If empty it is derived from the key's
	// extension.
	ContentType string

	// MaxSize caps the object size in bytes. 0 means no limit. Oversized
	// writes return ErrTooLarge.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where archives are stored.
	BasePath string

	// BaseURL is the public URL prefix for accessing files,
	// e.g. "http://localhost:8080/files".
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's custom domain, if any. When empty all
	// access goes through presigned URLs.
	PublicURL string

	// Region is required by the AWS SDK; R2 accepts "auto".
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// =============================================================================
// Key Helpers
// =============================================================================

// QuoteArchiveKey is the storage key for a quote request's rendered HTML.
// Format: quotes/{quoteRequestID}.html
func QuoteArchiveKey(quoteRequestID uuid.UUID) string {
	return fmt.Sprintf("quotes/%s.html", quoteRequestID)
}

// contentTypeForKey derives a MIME type from the key's extension. Archives
// are HTML documents; everything else falls back to octet-stream.
func contentTypeForKey(key string) string {
	switch path.Ext(key) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
