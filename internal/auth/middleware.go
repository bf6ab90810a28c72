package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue accepts any key. With a plain string, any package that
// knows the string can read or shadow the value. Only this package can
// create a contextKey, so only this package can read these values.
type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// SessionResolver turns a bearer token into the user it belongs to.
//
// Implementations return an error wrapping apperror.ErrUnauthorized for an
// unknown token. Any other error is a store failure.
type SessionResolver interface {
	UserForToken(ctx context.Context, token string) (*model.User, error)
}

// Authenticate is a middleware that identifies the caller, if it can.
//
// It reads "Authorization: Bearer <token>" and resolves it through the
// session table. A missing or unknown token is not an error here: the
// request continues as a guest, and the service layer decides whether the
// operation needs a user (see RequireUser / RequireAdmin). Guests may read
// articles and post comments.
//
// A store failure while resolving the token ends the request with 500.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware takes an http.Handler and returns a new one that wraps it.
// Chi applies them in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func Authenticate(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.UserForToken(r.Context(), token)
			switch {
			case err == nil:
				ctx := context.WithValue(r.Context(), userKey, user)
				ctx = context.WithValue(ctx, tokenKey, token)
				r = r.WithContext(ctx)
			case errors.Is(err, apperror.ErrUnauthorized):
				// Unknown or replaced token: continue as a guest.
			default:
				logger.Error("resolving session",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "Internal error", "code": "internal"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively. Returns "" when the
// header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserFromContext returns the user resolved by Authenticate.
//
// Returns (nil, false) for guests. Handlers usually pass the pointer straight
// to a service, which treats nil as "guest":
//
//	user, _ := auth.UserFromContext(r.Context())
//	err := h.articles.Delete(ctx, user, id)
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// TokenFromContext returns the session token that authenticated the request.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// WithUser returns a copy of ctx carrying user, as Authenticate would.
// Used by tests that call handlers directly.
func WithUser(ctx context.Context, user *model.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}
