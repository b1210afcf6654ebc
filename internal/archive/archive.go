// Package archive keeps the original scanned documents in S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/common"
)

// Archiver stores a decoded document and returns its object key.
type Archiver interface {
	Put(ctx context.Context, kind constants.DocumentKind, id uuid.UUID, data []byte) (string, error)
}

type MinioArchiver struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

func NewMinioArchiver(cfg common.ArchiveConfig, logger *slog.Logger) (*MinioArchiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "us-east-1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioArchiver{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With("component", "archive"),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *MinioArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		a.logger.Info("archive.bucket.created", "bucket", a.bucket)
	}
	return nil
}

func (a *MinioArchiver) Put(ctx context.Context, kind constants.DocumentKind, id uuid.UUID, data []byte) (string, error) {
	contentType := DetectContentType(data)
	key := ObjectKey(kind, id, contentType)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	a.logger.Debug("archive.put.ok", "key", key, "bytes", len(data), "content_type", contentType)
	return key, nil
}

// DetectContentType sniffs the first bytes of a document.
func DetectContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// ObjectKey builds "<kind>/<id><ext>".
func ObjectKey(kind constants.DocumentKind, id uuid.UUID, contentType string) string {
	return string(kind) + "/" + id.String() + extFor(contentType)
}

func extFor(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}
