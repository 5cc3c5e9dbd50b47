package user

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrEmptyName    = errors.New("name must not be empty")
	ErrInvalidGroup = errors.New("invalid user group")
	ErrInactive     = errors.New("user is inactive")
)

type User struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	group        Group
	active       bool
}

func ReconstructUser(id uuid.UUID, name, email, passwordHash string, group Group, active bool) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !group.IsValid() {
		return nil, ErrInvalidGroup
	}
	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		group:        group,
		active:       active,
	}, nil
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Group() Group         { return u.group }
func (u *User) IsActive() bool       { return u.active }

// Policy resolves the caller-side limit table for this user's group.
func (u *User) Policy() Policy {
	return PolicyFor(u.group)
}
