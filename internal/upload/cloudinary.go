package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/config"
)

// cloudinaryAPI is the part of the Cloudinary SDK used here.
// *uploader.API satisfies it.
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary uploads images to a Cloudinary account.
type Cloudinary struct {
	api    cloudinaryAPI
	folder string
	logger *slog.Logger
}

func NewCloudinary(cfg config.CloudinaryConfig, logger *slog.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("upload: configuring cloudinary: %w", err)
	}

	logger.Info("image upload via cloudinary",
		slog.String("cloud", cfg.CloudName),
		slog.String("folder", cfg.Folder),
	)
	return &Cloudinary{api: &cld.Upload, folder: cfg.Folder, logger: logger}, nil
}

// Upload sends the file with resource_type=auto, so Cloudinary detects the
// media type itself.
func (c *Cloudinary) Upload(ctx context.Context, file File) (*Result, error) {
	resp, err := c.api.Upload(ctx, file.Body, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "auto",
	})
	if err == nil && resp != nil && resp.Error.Message != "" {
		err = errors.New(resp.Error.Message)
	}
	if err == nil && (resp == nil || resp.SecureURL == "") {
		err = errors.New("cloudinary returned no URL")
	}
	if err != nil {
		c.logger.Error("cloudinary upload failed",
			slog.String("filename", file.Name),
			slog.String("error", err.Error()),
		)
		return nil, apperror.UploadFailed(err)
	}

	c.logger.Info("image uploaded",
		slog.String("provider", config.UploadCloudinary),
		slog.String("public_id", resp.PublicID),
	)
	return &Result{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}
