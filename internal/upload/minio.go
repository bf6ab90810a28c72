package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/config"
)

// objectPutter is the part of *minio.Client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIO uploads images to a bucket on an S3-compatible object store.
// Objects must be publicly readable under baseURL for the returned links to
// work; that is a bucket policy concern, not handled here.
type MinIO struct {
	client  objectPutter
	bucket  string
	baseURL string
	logger  *slog.Logger
}

func NewMinIO(ctx context.Context, cfg config.MinIOConfig, logger *slog.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: configuring minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("upload: checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("upload: creating bucket %q: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", slog.String("bucket", cfg.Bucket))
	}

	base := publicBaseURL(cfg)
	logger.Info("image upload via minio",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("bucket", cfg.Bucket),
		slog.String("public_url", base),
	)
	return &MinIO{client: client, bucket: cfg.Bucket, baseURL: base, logger: logger}, nil
}

// publicBaseURL is the prefix every object key is appended to.
func publicBaseURL(cfg config.MinIOConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
}

func (m *MinIO) Upload(ctx context.Context, file File) (*Result, error) {
	name := objectName(file.Name)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucket, name, file.Body, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.logger.Error("minio upload failed",
			slog.String("object", name),
			slog.String("error", err.Error()),
		)
		return nil, apperror.UploadFailed(err)
	}

	m.logger.Info("image uploaded",
		slog.String("provider", config.UploadMinIO),
		slog.String("object", name),
	)
	return &Result{URL: m.baseURL + "/" + name, PublicID: name}, nil
}
