package auth

import (
	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
)

// RequireUser is the capability check for "any signed-in user".
// actor is the user resolved from the request's session, nil for guests.
func RequireUser(actor *model.User) error {
	if actor == nil {
		return apperror.Unauthorized("Unauthorized")
	}
	return nil
}

// RequireAdmin is the capability check for admin-only operations. Guests get
// Unauthorized (401), signed-in non-admins get Forbidden (403).
func RequireAdmin(actor *model.User) error {
	if err := RequireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperror.Forbidden("Forbidden")
	}
	return nil
}
