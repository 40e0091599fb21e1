package object

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/hirebridge/recruit-backend/config"

	"github.com/cockroachdb/errors"
)

type minioStorage struct {
	client       *minio.Client
	bucket       string
	blobHostPort string
	logger       *zap.Logger
}

// NewMinIOStorage creates a new object.Storage implementation using MinIO
// and ensures the document bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinioConfig, blobHostPort string, logger *zap.Logger) (Storage, error) {
	logger = logger.With(
		zap.String("host:port", cfg.Host+":"+cfg.Port),
		zap.String("user", cfg.RootUser),
	)

	client, err := minio.New(cfg.Host+":"+cfg.Port, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.RootUser, cfg.RootPwd, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to MinIO")
	}

	{
		log := logger.With(zap.String("bucket", cfg.BucketName))

		exists, err := client.BucketExists(ctx, cfg.BucketName)
		if err != nil {
			return nil, errors.Wrap(err, "checking bucket existence")
		}

		if !exists {
			if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
				return nil, errors.Wrap(err, "creating bucket")
			}
			log.Info("Successfully created bucket")
		} else {
			log.Info("Bucket already exists")
		}
	}

	return &minioStorage{
		client:       client,
		bucket:       cfg.BucketName,
		blobHostPort: strings.TrimRight(blobHostPort, "/"),
		logger:       logger,
	}, nil
}

// UploadFile implements object.Storage.UploadFile
func (m *minioStorage) UploadFile(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	size := int64(len(content))
	var err error
	// Retry loop with fresh reader on each attempt
	for attempt := 1; attempt <= 3; attempt++ {
		contentReader := bytes.NewReader(content)
		_, err = m.client.PutObject(ctx, m.bucket, path, contentReader, size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err == nil {
			break
		}
		m.logger.Error("Failed to upload file to MinIO, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		m.logger.Error("Failed to upload file to MinIO after retries", zap.Error(err))
		return "", errors.Wrap(err, "uploading file to MinIO")
	}

	return fmt.Sprintf("%s/%s/%s", m.blobHostPort, m.bucket, path), nil
}

// DeleteFile implements object.Storage.DeleteFile
func (m *minioStorage) DeleteFile(ctx context.Context, path string) error {
	for attempt := 1; attempt <= 3; attempt++ {
		err := m.client.RemoveObject(ctx, m.bucket, path, minio.RemoveObjectOptions{})
		if err == nil {
			return nil
		}
		m.logger.Error("Failed to delete file from MinIO, retrying...", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return errors.New("failed to delete file from MinIO after 3 attempts")
}

// GetFile implements object.Storage.GetFile
func (m *minioStorage) GetFile(ctx context.Context, path string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, m.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		m.logger.Error("Failed to get file from MinIO", zap.String("path", path), zap.Error(err))
		return nil, errors.Wrap(err, "getting file from MinIO")
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(object); err != nil {
		m.logger.Error("Failed to read file from MinIO", zap.Error(err))
		return nil, errors.Wrap(err, "reading file from MinIO")
	}

	return buf.Bytes(), nil
}

// GetBucket returns the MinIO bucket name
func (m *minioStorage) GetBucket() string {
	return m.bucket
}
