package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/service"
)

// CommentHandler serves the comment threads.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	Content string `json:"content"`
	Name    string `json:"name"` // guests only
}

// HandleList returns an article's comments, oldest first.
//
// HTTP: GET /api/articles/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate adds a comment. No session needed: guests may comment under a
// name of their choosing, or as "Guest".
//
// HTTP: POST /api/articles/{id}/comments
// REQUEST BODY: {"content": "...", "name": "..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())

	comment, err := h.comments.Create(r.Context(), actor, r.PathValue("id"), req.Content, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleDelete removes a comment. Admin only.
//
// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}
