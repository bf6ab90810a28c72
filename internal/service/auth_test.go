package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/model"
)

// newTestAuthService returns an AuthService over a fresh fake store.
// Cost 4 is the bcrypt minimum, so hashing stays fast in tests.
func newTestAuthService(t *testing.T, adminToken string) (*AuthService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	ps := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	return NewAuthService(store, ps, adminToken, testLogger()), store
}

// =========================================================================
// Signup TESTS
// =========================================================================

func TestSignup_FirstUserIsAdmin(t *testing.T) {
	svc, _ := newTestAuthService(t, "")
	ctx := context.Background()

	first, err := svc.Signup(ctx, "Alice", "111", "pw")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if first.Role != model.RoleAdmin {
		t.Errorf("first user role = %q, want %q", first.Role, model.RoleAdmin)
	}

	second, err := svc.Signup(ctx, "Bob", "222", "pw")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if second.Role != model.RoleUser {
		t.Errorf("second user role = %q, want %q", second.Role, model.RoleUser)
	}
}

func TestSignup_StoresHashNotPlaintext(t *testing.T) {
	svc, store := newTestAuthService(t, "")

	user, err := svc.Signup(context.Background(), "Alice", "111", "secret")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	stored := store.users[user.ID]
	if stored.Password == "secret" {
		t.Fatal("password stored in plaintext")
	}
	if !auth.IsHash(stored.Password) {
		t.Errorf("stored password %q is not a bcrypt hash", stored.Password)
	}
}

func TestSignup_TrimsNameAndPhone(t *testing.T) {
	svc, _ := newTestAuthService(t, "")

	user, err := svc.Signup(context.Background(), "  Alice ", " 111 ", "pw")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.Name != "Alice" || user.Phone != "111" {
		t.Errorf("got name=%q phone=%q, want trimmed values", user.Name, user.Phone)
	}
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		phone    string
		password string
	}{
		{"missing name", "", "111", "pw"},
		{"blank name", "   ", "111", "pw"},
		{"missing phone", "Alice", "", "pw"},
		{"missing password", "Alice", "111", ""},
		{"password too long", "Alice", "111", strings.Repeat("x", auth.MaxPasswordBytes+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestAuthService(t, "")

			_, err := svc.Signup(context.Background(), tt.userName, tt.phone, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Signup() error = %v, want ErrValidation", err)
			}
			if len(store.users) != 0 {
				t.Error("no user should be stored when validation fails")
			}
		})
	}
}

func TestSignup_DuplicatePhone(t *testing.T) {
	svc, _ := newTestAuthService(t, "")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "111", "pw"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := svc.Signup(ctx, "Other", "111", "pw")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Signup() error = %v, want ErrConflict", err)
	}
	if err.Error() != "phone already registered" {
		t.Errorf("message = %q, want %q", err.Error(), "phone already registered")
	}
}

func TestSignup_RepositoryError(t *testing.T) {
	svc, store := newTestAuthService(t, "")
	store.failWith = errors.New("database is on fire")

	_, err := svc.Signup(context.Background(), "Alice", "111", "pw")
	if err == nil {
		t.Fatal("Signup() should propagate repository errors")
	}
	if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict) {
		t.Errorf("repository failure must not look like a client error: %v", err)
	}
}

// =========================================================================
// Signin TESTS
// =========================================================================

func TestSignin_ReturnsTokenAndUser(t *testing.T) {
	svc, _ := newTestAuthService(t, "")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "111", "pw"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.Signin(ctx, "111", "pw")
	if err != nil {
		t.Fatalf("Signin() error = %v", err)
	}
	if result.Token == "" {
		t.Fatal("Signin() returned empty token")
	}
	if result.User.Phone != "111" {
		t.Errorf("User.Phone = %q, want %q", result.User.Phone, "111")
	}

	user, err := svc.UserForToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("UserForToken() error = %v", err)
	}
	if user.ID != result.User.ID {
		t.Errorf("token resolves to %q, want %q", user.ID, result.User.ID)
	}
}

func TestSignin_SecondSigninInvalidatesFirstToken(t *testing.T) {
	svc, _ := newTestAuthService(t, "")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "111", "pw"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	first, err := svc.Signin(ctx, "111", "pw")
	if err != nil {
		t.Fatalf("first Signin() error = %v", err)
	}
	second, err := svc.Signin(ctx, "111", "pw")
	if err != nil {
		t.Fatalf("second Signin() error = %v", err)
	}

	if first.Token == second.Token {
		t.Fatal("each signin should issue a new token")
	}
	if _, err := svc.UserForToken(ctx, first.Token); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("old token: error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.UserForToken(ctx, second.Token); err != nil {
		t.Errorf("new token: error = %v", err)
	}
}

func TestSignin_BadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t, "")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "111", "pw"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name     string
		phone    string
		password string
	}{
		{"wrong password", "111", "nope"},
		{"unknown phone", "999", "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signin(ctx, tt.phone, tt.password)
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Fatalf("Signin() error = %v, want ErrUnauthorized", err)
			}
			// Same message for both, so phones cannot be enumerated.
			if err.Error() != "invalid credentials" {
				t.Errorf("message = %q, want %q", err.Error(), "invalid credentials")
			}
		})
	}
}

func TestSignin_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(t, "")

	_, err := svc.Signin(context.Background(), "", "pw")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Signin() error = %v, want ErrValidation", err)
	}
	if err.Error() != "phone and password required" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestSignin_UpgradesLegacyPlaintextPassword(t *testing.T) {
	svc, store := newTestAuthService(t, "")
	ctx := context.Background()

	// A row imported from an older deployment: password stored as-is.
	legacy := &model.User{Name: "Old", Phone: "111", Password: "pw", Role: model.RoleUser}
	if err := store.Users().Create(ctx, legacy); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := svc.Signin(ctx, "111", "pw"); err != nil {
		t.Fatalf("Signin() error = %v", err)
	}

	stored := store.users[legacy.ID].Password
	if !auth.IsHash(stored) {
		t.Fatalf("password not upgraded, stored value = %q", stored)
	}

	// The upgraded hash must still accept the same password.
	if _, err := svc.Signin(ctx, "111", "pw"); err != nil {
		t.Errorf("Signin() after upgrade error = %v", err)
	}
}

// =========================================================================
// Me / Signout / UserForToken TESTS
// =========================================================================

func TestMe(t *testing.T) {
	svc, _ := newTestAuthService(t, "")

	if _, err := svc.Me(nil); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Me(nil) error = %v, want ErrUnauthorized", err)
	}

	user := &model.User{ID: "u1", Name: "Alice"}
	got, err := svc.Me(user)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if got != user {
		t.Error("Me() should return the acting user")
	}
}

func TestSignout_EndsSession(t *testing.T) {
	svc, _ := newTestAuthService(t, "")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "111", "pw"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	result, err := svc.Signin(ctx, "111", "pw")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := svc.Signout(ctx, result.User, result.Token); err != nil {
		t.Fatalf("Signout() error = %v", err)
	}
	if _, err := svc.UserForToken(ctx, result.Token); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("UserForToken() after signout error = %v, want ErrUnauthorized", err)
	}
}

func TestSignout_RequiresUser(t *testing.T) {
	svc, _ := newTestAuthService(t, "")

	err := svc.Signout(context.Background(), nil, "whatever")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Signout(nil) error = %v, want ErrUnauthorized", err)
	}
}

func TestUserForToken_UnknownToken(t *testing.T) {
	svc, _ := newTestAuthService(t, "")

	_, err := svc.UserForToken(context.Background(), "not-a-session")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("UserForToken() error = %v, want ErrUnauthorized", err)
	}
}

func TestUserForToken_StoreFailureIsNotUnauthorized(t *testing.T) {
	svc, store := newTestAuthService(t, "")
	store.failWith = errors.New("database is on fire")

	_, err := svc.UserForToken(context.Background(), "token")
	if err == nil {
		t.Fatal("UserForToken() should fail")
	}
	if errors.Is(err, apperror.ErrUnauthorized) {
		t.Error("a broken store must not be reported as an unknown token")
	}
}

// =========================================================================
// AdminTokenSignin TESTS
// =========================================================================

func TestAdminTokenSignin_Disabled(t *testing.T) {
	svc, _ := newTestAuthService(t, "")

	_, err := svc.AdminTokenSignin(context.Background(), "")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("AdminTokenSignin() error = %v, want ErrForbidden", err)
	}
}

func TestAdminTokenSignin_WrongSecret(t *testing.T) {
	svc, _ := newTestAuthService(t, "s3cret")

	_, err := svc.AdminTokenSignin(context.Background(), "guess")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("AdminTokenSignin() error = %v, want ErrUnauthorized", err)
	}
}

func TestAdminTokenSignin_CreatesAdminWhenNoneExists(t *testing.T) {
	svc, store := newTestAuthService(t, "s3cret")
	ctx := context.Background()

	result, err := svc.AdminTokenSignin(ctx, "s3cret")
	if err != nil {
		t.Fatalf("AdminTokenSignin() error = %v", err)
	}
	if result.User.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", result.User.Role)
	}
	if result.User.Phone != "admin" || result.User.Name != "Administrator" {
		t.Errorf("bootstrap admin = %q/%q, want Administrator/admin", result.User.Name, result.User.Phone)
	}
	if len(store.users) != 1 {
		t.Errorf("users = %d, want 1", len(store.users))
	}

	// A second exchange reuses the same account.
	again, err := svc.AdminTokenSignin(ctx, "s3cret")
	if err != nil {
		t.Fatalf("second AdminTokenSignin() error = %v", err)
	}
	if again.User.ID != result.User.ID {
		t.Errorf("second signin used %q, want %q", again.User.ID, result.User.ID)
	}
	if len(store.users) != 1 {
		t.Errorf("users after second signin = %d, want 1", len(store.users))
	}
}

func TestAdminTokenSignin_UsesOldestAdmin(t *testing.T) {
	svc, store := newTestAuthService(t, "s3cret")

	oldest := seedUser(store, "First", "111", model.RoleAdmin)
	seedUser(store, "Plain", "222", model.RoleUser)
	seedUser(store, "Second", "333", model.RoleAdmin)

	result, err := svc.AdminTokenSignin(context.Background(), "s3cret")
	if err != nil {
		t.Fatalf("AdminTokenSignin() error = %v", err)
	}
	if result.User.ID != oldest.ID {
		t.Errorf("signed in as %q, want oldest admin %q", result.User.ID, oldest.ID)
	}
}

func TestAdminTokenSignin_PromotesExistingAdminPhone(t *testing.T) {
	svc, store := newTestAuthService(t, "s3cret")

	squatter := seedUser(store, "Someone", "admin", model.RoleUser)

	result, err := svc.AdminTokenSignin(context.Background(), "s3cret")
	if err != nil {
		t.Fatalf("AdminTokenSignin() error = %v", err)
	}
	if result.User.ID != squatter.ID {
		t.Errorf("signed in as %q, want %q", result.User.ID, squatter.ID)
	}
	if store.users[squatter.ID].Role != model.RoleAdmin {
		t.Error("existing \"admin\" account should have been promoted")
	}
}
