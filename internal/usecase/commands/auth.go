package commands

import (
	"context"

	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/pkg/errs"
	"openbook/internal/pkg/jwt"
	"openbook/internal/pkg/password"
	"openbook/internal/usecase/shared"
)

// UserCredentialStore is the credential lookup auth needs. Defined here,
// implemented by the read store.
type UserCredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type AuthCommands interface {
	// Login verifies credentials and mints a session token. A wrong
	// password, an unknown email and an inactive account all report the
	// same error.
	Login(ctx context.Context, email, rawPassword string) (string, shared.Identity, error)
}

type authCommandsImpl struct {
	store UserCredentialStore
	jwt   *jwt.Service
}

func NewAuthCommands(store UserCredentialStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{store: store, jwt: jwtService}
}

func (c *authCommandsImpl) Login(ctx context.Context, email, rawPassword string) (string, shared.Identity, error) {
	u, err := c.store.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", shared.Identity{}, errs.Mark(err, errs.ErrInvalidCredentials)
		}
		return "", shared.Identity{}, err
	}

	if !u.IsActive() {
		return "", shared.Identity{}, errs.Wrap(errs.ErrInvalidCredentials, "account disabled")
	}
	if err := password.ComparePassword(u.PasswordHash(), rawPassword); err != nil {
		return "", shared.Identity{}, errs.Mark(err, errs.ErrInvalidCredentials)
	}

	token, err := c.jwt.GenerateToken(u.ID(), u.Group())
	if err != nil {
		return "", shared.Identity{}, errs.Wrap(err, "failed to generate token")
	}

	return token, shared.Identity{UserID: u.ID(), Group: u.Group()}, nil
}
