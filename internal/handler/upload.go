package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/upload"
)

// imageField is the multipart form field carrying the file.
const imageField = "image"

// UploadHandler forwards one image to the configured image host.
type UploadHandler struct {
	uploader upload.Uploader
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadHandler(uploader upload.Uploader, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, maxBytes: maxBytes, logger: logger}
}

// HandleUpload accepts a multipart/form-data body with an "image" file.
//
// HTTP: POST /api/upload
// RESPONSE: {"url": "...", "public_id": "..."}
//
// The body is capped at maxBytes. A failure at the image host is reported as
// 500 "Failed to upload image" and not retried.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, apperror.ValidationFailed(imageField,
				fmt.Sprintf("Image must be %d bytes or smaller", h.maxBytes)))
			return
		}
		writeError(w, h.logger, apperror.ValidationFailed(imageField, "No image file provided"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed(imageField, "No image file provided"))
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(r.Context(), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
