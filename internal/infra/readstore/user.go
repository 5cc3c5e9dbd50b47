package readstore

import (
	"context"

	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"
	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserReadStore struct {
	dbtx db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{dbtx: dbtx}
}

var _ queries.UserReadStore = (*UserReadStore)(nil)

const findUserByIDQuery = `
SELECT id, name, email, user_group, created_at
FROM users
WHERE id = $1
`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.UserView, error) {
	row := s.dbtx.QueryRow(ctx, findUserByIDQuery, pgconv.UUIDToPgtype(id))

	var (
		pgID      pgtype.UUID
		createdAt pgtype.Timestamptz
		view      queries.UserView
	)
	if err := row.Scan(&pgID, &view.Name, &view.Email, &view.Group, &createdAt); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read user", err)
	}

	view.ID = uuid.UUID(pgID.Bytes)
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt).UTC()
	return &view, nil
}

const findUserByEmailQuery = `
SELECT id, name, email, password_hash, user_group, is_active
FROM users
WHERE email = $1
`

// FindByEmail rehydrates the full user entity, password hash included,
// for credential verification.
func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.dbtx.QueryRow(ctx, findUserByEmailQuery, email)

	var (
		pgID             pgtype.UUID
		name, mail, hash string
		group            string
		active           bool
	)
	if err := row.Scan(&pgID, &name, &mail, &hash, &group, &active); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read user", err)
	}

	u, err := user.ReconstructUser(uuid.UUID(pgID.Bytes), name, mail, hash, user.Group(group), active)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt user row", err)
	}
	return u, nil
}
