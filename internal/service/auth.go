package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

// Account created on demand by admin-token signin when no admin exists yet.
const (
	bootstrapAdminName  = "Administrator"
	bootstrapAdminPhone = "admin"
)

// AuthService handles sign-up, sign-in and session resolution.
//
// It also implements auth.SessionResolver, so the Authenticate middleware
// resolves bearer tokens through it.
type AuthService struct {
	store      repository.Store
	passwords  *auth.PasswordService
	adminToken string
	logger     *slog.Logger
}

var _ auth.SessionResolver = (*AuthService)(nil)

// NewAuthService creates an AuthService. adminToken is the shared secret for
// admin-token signin; empty disables that path.
func NewAuthService(
	store repository.Store,
	passwords *auth.PasswordService,
	adminToken string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:      store,
		passwords:  passwords,
		adminToken: adminToken,
		logger:     logger,
	}
}

// AuthResult is returned by the sign-in operations: the new session token and
// the user it belongs to.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Signup registers a new account. The very first account becomes admin.
func (s *AuthService) Signup(ctx context.Context, name, phone, password string) (*model.User, error) {
	if err := validateAccount("name, phone and password required", name, phone, password); err != nil {
		return nil, err
	}

	count, err := s.store.Users().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	role := model.RoleUser
	if count == 0 {
		role = model.RoleAdmin
	}

	user, err := s.createUser(ctx, name, phone, password, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("id", user.ID),
		slog.String("role", user.Role),
	)
	return user, nil
}

// createUser hashes the password and inserts the account. A duplicate phone
// comes back from the store as apperror.Conflict.
func (s *AuthService) createUser(ctx context.Context, name, phone, password, role string) (*model.User, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(name),
		Phone:    strings.TrimSpace(phone),
		Password: hash,
		Role:     role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Signin checks the credentials and opens a new session, replacing any
// session the user already had.
//
// Unknown phone and wrong password produce the same error so the response
// does not reveal which phones are registered.
func (s *AuthService) Signin(ctx context.Context, phone, password string) (*AuthResult, error) {
	if err := requireFields("phone and password required",
		field{"phone", phone}, field{"password", password},
	); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	rehash, err := s.passwords.Verify(user.Password, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if rehash {
		s.upgradePassword(ctx, user, password)
	}

	return s.openSession(ctx, user)
}

// upgradePassword replaces a legacy plaintext (or cheaper) password with a
// fresh hash. Failure is logged, not returned: the user proved who they are.
func (s *AuthService) upgradePassword(ctx context.Context, user *model.User, password string) {
	hash, err := s.passwords.Hash(password)
	if err == nil {
		err = s.store.Users().UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn("failed to upgrade stored password",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	user.Password = hash
	s.logger.Info("stored password upgraded", slog.String("user_id", user.ID))
}

func (s *AuthService) openSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	session := &model.Session{Token: auth.NewSessionToken(), UserID: user.ID}
	if err := s.store.Sessions().Replace(ctx, session); err != nil {
		s.logger.Error("failed to open session",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("opening session: %w", err)
	}

	s.logger.Info("user signed in", slog.String("user_id", user.ID))
	return &AuthResult{Token: session.Token, User: user}, nil
}

// Me returns the calling user.
func (s *AuthService) Me(actor *model.User) (*model.User, error) {
	if err := auth.RequireUser(actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// Signout ends the caller's session.
func (s *AuthService) Signout(ctx context.Context, actor *model.User, token string) error {
	if err := auth.RequireUser(actor); err != nil {
		return err
	}
	if err := s.store.Sessions().Delete(ctx, token); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	s.logger.Info("user signed out", slog.String("user_id", actor.ID))
	return nil
}

// UserForToken resolves a bearer token to its user. An unknown token, or one
// whose user no longer exists, is apperror.Unauthorized.
func (s *AuthService) UserForToken(ctx context.Context, token string) (*model.User, error) {
	session, err := s.store.Sessions().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Unauthorized")
		}
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Unauthorized")
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	return user, nil
}

// AdminTokenSignin exchanges the configured shared secret for a session on
// the oldest admin account. If no admin exists yet one is created
// ("Administrator", phone "admin") with a random password nobody knows.
func (s *AuthService) AdminTokenSignin(ctx context.Context, secret string) (*AuthResult, error) {
	if s.adminToken == "" {
		return nil, apperror.Forbidden("Admin token signin is disabled")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminToken)) != 1 {
		s.logger.Warn("admin token signin rejected")
		return nil, apperror.Unauthorized("invalid admin token")
	}

	admin, err := s.store.Users().FirstAdmin(ctx)
	if errors.Is(err, apperror.ErrNotFound) {
		admin, err = s.bootstrapAdmin(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("finding admin account: %w", err)
	}

	return s.openSession(ctx, admin)
}

func (s *AuthService) bootstrapAdmin(ctx context.Context) (*model.User, error) {
	admin, err := s.createUser(ctx, bootstrapAdminName, bootstrapAdminPhone, auth.NewSecret(), model.RoleAdmin)
	if err == nil {
		s.logger.Info("bootstrap admin created", slog.String("id", admin.ID))
		return admin, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, err
	}

	// Someone registered the "admin" phone as a normal user: promote it.
	existing, err := s.store.Users().GetByPhone(ctx, bootstrapAdminPhone)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().UpdateRole(ctx, existing.ID, model.RoleAdmin); err != nil {
		return nil, err
	}
	existing.Role = model.RoleAdmin
	s.logger.Info("bootstrap admin promoted", slog.String("id", existing.ID))
	return existing, nil
}
