package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/service"
)

// ArticleHandler serves /api/articles.
type ArticleHandler struct {
	articles *service.ArticleService
	logger   *slog.Logger
}

func NewArticleHandler(articles *service.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, logger: logger}
}

type createArticleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	ImageURL string `json:"imageUrl"`
}

// HandleList returns articles, newest first.
//
// HTTP: GET /api/articles?category=<name>
//
// An unknown category name yields [] rather than an error.
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HandleGet returns one article.
//
// HTTP: GET /api/articles/{id}
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// HandleCreate publishes an article as the signed-in user.
//
// HTTP: POST /api/articles
// REQUEST BODY: {"title": "...", "content": "...", "category": "...", "imageUrl": "..."}
// RESPONSE: 201 with the article
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())

	article, err := h.articles.Create(r.Context(), actor, service.NewArticle{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// HandleDelete removes an article and its comments. Admin only.
//
// HTTP: DELETE /api/articles/{id}
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	if err := h.articles.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Article deleted successfully"})
}
