// Package handler contains the HTTP handlers of the JSON API.
//
// Handlers are thin: decode the request, take the caller from the context
// (auth.UserFromContext, nil for guests), call one service method, encode
// the result. Permission checks and validation live in the services.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/service"
)

// AuthHandler serves /api/auth/*.
type AuthHandler struct {
	accounts *service.AuthService
	logger   *slog.Logger
}

func NewAuthHandler(accounts *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type signinRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type adminTokenRequest struct {
	Token string `json:"token"`
}

// HandleSignup registers an account.
//
// HTTP: POST /api/auth/signup
// REQUEST BODY: {"name": "...", "phone": "...", "password": "..."}
// RESPONSE: 201 with the new user (never the password)
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.Signup(r.Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleSignin opens a session.
//
// HTTP: POST /api/auth/signin
// RESPONSE: {"token": "...", "user": {...}}
//
// The token goes into "Authorization: Bearer <token>" on later requests.
// Signing in again invalidates the previous token.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.Signin(r.Context(), req.Phone, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleMe returns the signed-in user.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	user, err := h.accounts.Me(actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleAdminToken exchanges the shared admin secret for a session.
//
// HTTP: POST /api/auth/admin-token
// REQUEST BODY: {"token": "<ADMIN_TOKEN>"}
func (h *AuthHandler) HandleAdminToken(w http.ResponseWriter, r *http.Request) {
	var req adminTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.AdminTokenSignin(r.Context(), req.Token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleSignout ends the caller's session.
//
// HTTP: POST /api/auth/signout
// RESPONSE: 204 No Content
func (h *AuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	token, _ := auth.TokenFromContext(r.Context())

	if err := h.accounts.Signout(r.Context(), actor, token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
