// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services never see *http.Request. They take primitives plus the acting
// user (nil for a guest) and return domain errors from apperror, which the
// handlers translate to status codes. The same methods back the HTTP API and
// the articlectl admin CLI.
//
// AUTHORIZATION:
// Every mutating method starts with one of the capability checks from the
// auth package (auth.RequireUser, auth.RequireAdmin). Handlers do not check
// roles themselves.
//
// DEPENDENCY INJECTION:
// Each service takes a repository.Store (interface), not a concrete backend.
// Tests pass an in-memory fake; production passes SQLite or the GORM store.
package service

import (
	"strings"

	"github.com/sakif/article-hub/internal/apperror"
)

// field is a named input value for requireFields.
type field struct {
	name  string
	value string
}

// requireFields returns a ValidationFailed for the first value that is empty
// after trimming. The message is shared because the API reports missing
// fields as one sentence ("name, phone and password required").
func requireFields(message string, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperror.ValidationFailed(f.name, message)
		}
	}
	return nil
}
