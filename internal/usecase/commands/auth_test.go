//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/pkg/errs"
	"openbook/internal/pkg/jwt"
	"openbook/internal/pkg/password"
	"openbook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentialStore struct {
	users map[string]*user.User
}

func (s *fakeCredentialStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return u, nil
}

func seedUser(t *testing.T, store *fakeCredentialStore, email, rawPassword string, group user.Group, active bool) *user.User {
	t.Helper()
	hash, err := password.HashPassword(rawPassword)
	require.NoError(t, err)
	u, err := user.ReconstructUser(uuid.New(), "Alice", email, hash, group, active)
	require.NoError(t, err)
	store.users[email] = u
	return u
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	jwtService := jwt.NewService("test-secret", time.Hour)
	store := &fakeCredentialStore{users: make(map[string]*user.User)}
	auth := commands.NewAuthCommands(store, jwtService)

	alice := seedUser(t, store, "alice@example.com", "s3cret", user.GroupPremium, true)
	seedUser(t, store, "bob@example.com", "hunter2", user.GroupStandard, false)

	t.Run("valid credentials mint a verifiable token", func(t *testing.T) {
		token, identity, err := auth.Login(ctx, "alice@example.com", "s3cret")
		require.NoError(t, err)

		assert.Equal(t, alice.ID(), identity.UserID)
		assert.Equal(t, user.GroupPremium, identity.Group)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, alice.ID(), claims.UserID)
		assert.Equal(t, "premium", claims.Group)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "nobody@example.com", "s3cret")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "bob@example.com", "hunter2")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})
}
