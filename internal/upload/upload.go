// Package upload forwards article images to an external image host.
//
// Two hosts are supported, chosen by UPLOAD_PROVIDER: Cloudinary and any
// S3-compatible object store reachable through the MinIO client. With no
// provider configured, New returns an Uploader that always fails, so the
// endpoint answers "Failed to upload image" without contacting anything.
//
// Uploads are never retried. Every failure comes back as
// apperror.UploadFailed; the cause is kept for the server log only.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/config"
)

// ErrDisabled is the cause of every upload when no provider is configured.
var ErrDisabled = errors.New("upload: no provider configured")

// File is one image received from the client.
type File struct {
	Name        string // original filename, only its extension is kept
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.Reader
}

// Result is what the client gets back.
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Uploader stores an image and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, file File) (*Result, error)
}

// New builds the Uploader selected by cfg.UploadProvider.
//
// The MinIO provider checks (and if needed creates) its bucket here, so a
// wrong endpoint or key fails at startup rather than on the first upload.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Uploader, error) {
	switch cfg.UploadProvider {
	case config.UploadNone:
		logger.Warn("no upload provider configured, image upload disabled")
		return disabled{}, nil
	case config.UploadCloudinary:
		return NewCloudinary(cfg.Cloudinary, logger)
	case config.UploadMinIO:
		return NewMinIO(ctx, cfg.MinIO, logger)
	default:
		return nil, fmt.Errorf("upload: unknown provider %q", cfg.UploadProvider)
	}
}

type disabled struct{}

func (disabled) Upload(context.Context, File) (*Result, error) {
	return nil, apperror.UploadFailed(ErrDisabled)
}

// objectName returns a fresh, collision-free key for an uploaded file:
// images/<uuid><ext>. The client's filename is not trusted beyond its
// extension.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return "images/" + uuid.NewString() + ext
}
