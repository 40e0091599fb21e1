package object

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/hirebridge/recruit-backend/config"

	"github.com/cockroachdb/errors"
)

// gcsStorage implements Storage interface for Google Cloud Storage
type gcsStorage struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSStorage creates a new object.Storage implementation using GCS
func NewGCSStorage(ctx context.Context, cfg config.GCSConfig, logger *zap.Logger) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("GCS bucket name is required")
	}

	var opts []option.ClientOption
	if cfg.SAKey != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.SAKey)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCS client")
	}

	logger = logger.With(
		zap.String("storage", "gcs"),
		zap.String("project", cfg.ProjectID),
		zap.String("bucket", cfg.Bucket))

	return &gcsStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// UploadFile implements object.Storage.UploadFile
func (g *gcsStorage) UploadFile(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		g.logger.Error("Failed to write object to GCS", zap.String("path", path), zap.Error(err))
		return "", errors.Wrap(err, "writing object to GCS")
	}
	if err := w.Close(); err != nil {
		g.logger.Error("Failed to finalize GCS upload", zap.String("path", path), zap.Error(err))
		return "", errors.Wrap(err, "finalizing GCS upload")
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, path), nil
}

// DeleteFile implements object.Storage.DeleteFile
func (g *gcsStorage) DeleteFile(ctx context.Context, path string) error {
	if err := g.client.Bucket(g.bucket).Object(path).Delete(ctx); err != nil {
		return errors.Wrap(err, "deleting object from GCS")
	}
	return nil
}

// GetFile implements object.Storage.GetFile
func (g *gcsStorage) GetFile(ctx context.Context, path string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening object from GCS")
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading object from GCS")
	}
	return content, nil
}

// GetBucket returns the GCS bucket name
func (g *gcsStorage) GetBucket() string {
	return g.bucket
}
