package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/service"
)

type CategoryHandler struct {
	categories *service.CategoryService
	logger     *slog.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// HandleList returns the category names as a plain JSON array of strings.
//
// HTTP: GET /api/categories
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	names, err := h.categories.Names(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// HandleCreate adds a category. Admin only; an existing name is not an
// error.
//
// HTTP: POST /api/categories
// REQUEST BODY: {"name": "..."}
// RESPONSE: 201 {"name": "..."}
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())

	category, err := h.categories.Create(r.Context(), actor, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryRequest{Name: category.Name})
}
