package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
	"github.com/sakif/article-hub/internal/repository/sqlite"
)

// useTempDB points openStore at a file database in t.TempDir. Every command
// opens and closes its own handle, like the real binary does.
func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.db")

	orig := openStore
	openStore = func(*slog.Logger) (repository.Store, error) {
		return sqlite.New(path)
	}
	t.Cleanup(func() { openStore = orig })
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func userByPhone(t *testing.T, path, phone string) *model.User {
	t.Helper()
	store, err := sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.Users().GetByPhone(context.Background(), phone)
	require.NoError(t, err)
	return user
}

func TestCreateAdmin(t *testing.T) {
	path := useTempDB(t)

	out, err := run(t, "create-admin", "Root", "0100", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin Root")

	user := userByPhone(t, path, "0100")
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.NotEqual(t, "s3cret", user.Password)
}

func TestCreateAdmin_DuplicatePhone(t *testing.T) {
	useTempDB(t)

	_, err := run(t, "create-admin", "Root", "0100", "s3cret")
	require.NoError(t, err)

	_, err = run(t, "create-admin", "Other", "0100", "s3cret")
	assert.Error(t, err)
}

func TestCreateAdmin_WrongArgs(t *testing.T) {
	useTempDB(t)

	_, err := run(t, "create-admin", "Root", "0100")
	assert.Error(t, err)
}

func TestPromote(t *testing.T) {
	path := useTempDB(t)

	// The first account is admin already; promote the second.
	_, err := run(t, "create-admin", "Root", "0100", "s3cret")
	require.NoError(t, err)

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), &model.User{
		Name: "Alice", Phone: "0200", Password: "x", Role: model.RoleUser,
	}))
	require.NoError(t, store.Close())

	out, err := run(t, "promote", "0200")
	require.NoError(t, err)
	assert.Contains(t, out, "promoted 0200")
	assert.Equal(t, model.RoleAdmin, userByPhone(t, path, "0200").Role)

	out, err = run(t, "promote", "0200")
	require.NoError(t, err)
	assert.Contains(t, out, "0200 is already admin")
}

func TestPromote_UnknownPhone(t *testing.T) {
	useTempDB(t)

	_, err := run(t, "promote", "0999")
	assert.Error(t, err)
}

func TestGenAdminToken(t *testing.T) {
	out, err := run(t, "gen-admin-token")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), token)

	again, err := run(t, "gen-admin-token")
	require.NoError(t, err)
	assert.NotEqual(t, token, strings.TrimSpace(again))
}
