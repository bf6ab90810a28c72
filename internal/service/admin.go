package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

// AdminService manages admin accounts.
//
// CreateAdmin and Promote are the HTTP operations and check the caller.
// ProvisionAdmin and PromoteByPhone are for the articlectl CLI, which runs
// with direct database access and has no session.
type AdminService struct {
	store  repository.Store
	users  *AuthService
	logger *slog.Logger
}

func NewAdminService(store repository.Store, users *AuthService, logger *slog.Logger) *AdminService {
	return &AdminService{store: store, users: users, logger: logger}
}

// CreateAdmin creates an account with the admin role.
//
// Allowed when actor is an admin, or when no account exists at all (so a
// fresh deployment can bootstrap its first admin over HTTP). Input is
// validated before the permission check.
func (s *AdminService) CreateAdmin(ctx context.Context, actor *model.User, name, phone, password string) (*model.User, error) {
	if err := validateAccount("name, phone, password required", name, phone, password); err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		count, err := s.store.Users().Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting users: %w", err)
		}
		if count > 0 {
			// Guests and plain users alike: only the bootstrap case is open.
			return nil, apperror.Forbidden("Forbidden")
		}
	}

	return s.ProvisionAdmin(ctx, name, phone, password)
}

// ProvisionAdmin creates an admin account without any permission check.
func (s *AdminService) ProvisionAdmin(ctx context.Context, name, phone, password string) (*model.User, error) {
	if err := validateAccount("name, phone, password required", name, phone, password); err != nil {
		return nil, err
	}

	user, err := s.users.createUser(ctx, name, phone, password, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin created", slog.String("id", user.ID))
	return user, nil
}

// Promote grants the admin role to the account registered with phone.
// Admin only.
func (s *AdminService) Promote(ctx context.Context, actor *model.User, phone string) (*model.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, _, err := s.PromoteByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user promoted",
		slog.String("id", user.ID),
		slog.String("by", actor.ID),
	)
	return user, nil
}

// PromoteByPhone grants the admin role without any permission check.
// changed is false when the user already was an admin.
func (s *AdminService) PromoteByPhone(ctx context.Context, phone string) (user *model.User, changed bool, err error) {
	if err := requireFields("phone required", field{"phone", phone}); err != nil {
		return nil, false, err
	}

	user, err = s.store.Users().GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, false, err
	}
	if user.IsAdmin() {
		return user, false, nil
	}

	if err := s.store.Users().UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return nil, false, fmt.Errorf("promoting user: %w", err)
	}
	user.Role = model.RoleAdmin
	return user, true, nil
}

// validateAccount checks the fields every new account needs.
func validateAccount(message, name, phone, password string) error {
	if err := requireFields(message,
		field{"name", name}, field{"phone", phone}, field{"password", password},
	); err != nil {
		return err
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}
	return nil
}
