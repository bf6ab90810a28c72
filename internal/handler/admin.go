package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/service"
)

// AdminHandler serves /api/admin/*.
type AdminHandler struct {
	admins *service.AdminService
	logger *slog.Logger
}

func NewAdminHandler(admins *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admins: admins, logger: logger}
}

type promoteRequest struct {
	Phone string `json:"phone"`
}

// accountView is the user shape returned by the admin endpoints (no
// createdAt, matching what the client expects there).
type accountView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func newAccountView(u *model.User) accountView {
	return accountView{ID: u.ID, Name: u.Name, Phone: u.Phone, Role: u.Role}
}

// HandleCreate creates an admin account. Allowed for admins, or for anyone
// while the database has no users yet.
//
// HTTP: POST /api/admin/create
// REQUEST BODY: {"name": "...", "phone": "...", "password": "..."}
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())

	user, err := h.admins.CreateAdmin(r.Context(), actor, req.Name, req.Phone, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountView(user))
}

// HandlePromote grants the admin role to an existing account.
//
// HTTP: POST /api/admin/promote
// REQUEST BODY: {"phone": "..."}
func (h *AdminHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())

	user, err := h.admins.Promote(r.Context(), actor, req.Phone)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountView(user))
}
