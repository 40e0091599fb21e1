// Package object provides the blob storage backends used to persist
// submitted career documents. MinIO is the default backend; GCS is used when
// a bucket is configured.
package object

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hirebridge/recruit-backend/pkg/constant"
)

// Storage defines the interface for object storage operations.
// Implementations: MinIO (default), GCS.
type Storage interface {
	// UploadFile stores the content under path with the given content type
	// and returns a publicly retrievable URL for it.
	UploadFile(ctx context.Context, path string, content []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, path string) error
	GetFile(ctx context.Context, path string) ([]byte, error)

	// GetBucket returns the bucket name this backend writes to.
	GetBucket() string
}

// DocumentPath builds the object path for an uploaded career document,
// namespaced by candidate, document tag, and upload time.
// Format: candidate-{uid}/{tag}/{unixnano}-{index}{ext}
func DocumentPath(candidateUID fmt.Stringer, tag constant.DocumentTag, uploadedAt time.Time, index int, ext string) string {
	filename := fmt.Sprintf("%d-%d%s", uploadedAt.UnixNano(), index, ext)
	return filepath.Join("candidate-"+candidateUID.String(), string(tag), filename)
}
