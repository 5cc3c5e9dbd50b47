package repository

import (
	"context"
	"time"

	"openbook/internal/domain/resource"
	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ResourceRepository struct{}

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{}
}

const insertResourceQuery = `
INSERT INTO resources (id, name, description, total_memory_gb, is_active)
VALUES ($1, $2, $3, $4, $5)
`

func (r *ResourceRepository) Create(ctx context.Context, dbtx db.DBTX, res *resource.Resource) error {
	_, err := dbtx.Exec(ctx, insertResourceQuery,
		pgconv.UUIDToPgtype(res.ID()),
		res.Name(),
		res.Description(),
		res.TotalMemoryGB(),
		res.IsActive(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert resource", err)
	}
	return nil
}

const updateResourceQuery = `
UPDATE resources
SET total_memory_gb = $2, is_active = $3, updated_at = $4
WHERE id = $1
`

func (r *ResourceRepository) Update(ctx context.Context, dbtx db.DBTX, id uuid.UUID, totalMemoryGB int32, active bool, now time.Time) (bool, error) {
	tag, err := dbtx.Exec(ctx, updateResourceQuery,
		pgconv.UUIDToPgtype(id),
		totalMemoryGB,
		active,
		pgconv.TimeToPgtype(now),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update resource", err)
	}
	return tag.RowsAffected() == 1, nil
}
