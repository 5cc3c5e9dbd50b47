package readstore

import (
	"context"
	"time"

	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"
	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ResourceReadStore struct {
	dbtx db.DBTX
}

func NewResourceReadStore(dbtx db.DBTX) *ResourceReadStore {
	return &ResourceReadStore{dbtx: dbtx}
}

var _ queries.ResourceReadStore = (*ResourceReadStore)(nil)

const resourceViewColumns = `
    id, name, description, total_memory_gb, is_active, created_at, updated_at
`

const findResourceByIDQuery = `
SELECT` + resourceViewColumns + `
FROM resources
WHERE id = $1
`

func (s *ResourceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ResourceView, error) {
	row := s.dbtx.QueryRow(ctx, findResourceByIDQuery, pgconv.UUIDToPgtype(id))
	view, err := scanResourceView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("resource not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read resource", err)
	}
	return view, nil
}

const findAllResourcesQuery = `
SELECT` + resourceViewColumns + `
FROM resources
WHERE ($1::boolean = false OR is_active)
ORDER BY name
`

func (s *ResourceReadStore) FindAll(ctx context.Context, activeOnly bool) ([]*queries.ResourceView, error) {
	rows, err := s.dbtx.Query(ctx, findAllResourcesQuery, activeOnly)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query resources", err)
	}
	defer rows.Close()

	views := make([]*queries.ResourceView, 0)
	for rows.Next() {
		view, err := scanResourceView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan resource", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate resources", err)
	}
	return views, nil
}

// Calendar and stats read completed bookings too; only cancelled ones
// vanish from the views.
const findInWindowQuery = `
SELECT` + bookingViewColumns + `
FROM bookings b
JOIN resources r ON r.id = b.resource_id
WHERE b.status <> 'cancelled'
  AND b.start_time < $2
  AND b.end_time > $1
  AND ($3::uuid IS NULL OR b.resource_id = $3)
ORDER BY b.start_time
`

func (s *ResourceReadStore) FindInWindow(ctx context.Context, resourceID *uuid.UUID, start, end time.Time) ([]*queries.BookingView, error) {
	var resFilter pgtype.UUID
	if resourceID != nil {
		resFilter = pgconv.UUIDToPgtype(*resourceID)
	}

	rows, err := s.dbtx.Query(ctx, findInWindowQuery,
		pgconv.TimeToPgtype(start), pgconv.TimeToPgtype(end), resFilter)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query bookings in window", err)
	}
	defer rows.Close()
	return collectBookingViews(rows)
}

func scanResourceView(row pgx.Row) (*queries.ResourceView, error) {
	var (
		id                   pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
		view                 queries.ResourceView
	)
	err := row.Scan(&id, &view.Name, &view.Description, &view.TotalMemoryGB, &view.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	view.ID = uuid.UUID(id.Bytes)
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt).UTC()
	view.UpdatedAt = pgconv.TimeFromPgtype(updatedAt).UTC()
	return &view, nil
}
