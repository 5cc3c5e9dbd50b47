package readstore

import (
	"context"

	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"
	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingReadStore struct {
	dbtx db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{dbtx: dbtx}
}

var _ queries.BookingReadStore = (*BookingReadStore)(nil)

const bookingViewColumns = `
    b.id, b.user_id, b.resource_id, r.name, b.task_name, b.memory_gb,
    b.start_time, b.end_time, b.original_end_time, b.status, b.created_at, b.updated_at
`

const findBookingByIDQuery = `
SELECT` + bookingViewColumns + `
FROM bookings b
JOIN resources r ON r.id = b.resource_id
WHERE b.id = $1
`

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := s.dbtx.QueryRow(ctx, findBookingByIDQuery, pgconv.UUIDToPgtype(id))
	view, err := scanBookingView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read booking", err)
	}
	return view, nil
}

const findBookingsByUserQuery = `
SELECT` + bookingViewColumns + `
FROM bookings b
JOIN resources r ON r.id = b.resource_id
WHERE b.user_id = $1
ORDER BY b.start_time DESC
LIMIT $2 OFFSET $3
`

func (s *BookingReadStore) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*queries.BookingView, error) {
	rows, err := s.dbtx.Query(ctx, findBookingsByUserQuery, pgconv.UUIDToPgtype(userID), limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query user bookings", err)
	}
	defer rows.Close()
	return collectBookingViews(rows)
}

const countByStatusQuery = `
SELECT status, count(*)
FROM bookings
GROUP BY status
`

func (s *BookingReadStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.dbtx.Query(ctx, countByStatusQuery)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count bookings by status", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan status count", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate status counts", err)
	}
	return counts, nil
}

func collectBookingViews(rows pgx.Rows) ([]*queries.BookingView, error) {
	views := make([]*queries.BookingView, 0)
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return views, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		id, userID, resourceID  pgtype.UUID
		start, end, originalEnd pgtype.Timestamptz
		createdAt, updatedAt    pgtype.Timestamptz
		view                    queries.BookingView
	)
	err := row.Scan(
		&id, &userID, &resourceID, &view.ResourceName, &view.TaskName, &view.MemoryGB,
		&start, &end, &originalEnd, &view.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	view.ID = uuid.UUID(id.Bytes)
	view.UserID = uuid.UUID(userID.Bytes)
	view.ResourceID = uuid.UUID(resourceID.Bytes)
	view.StartTime = pgconv.TimeFromPgtype(start).UTC()
	view.EndTime = pgconv.TimeFromPgtype(end).UTC()
	view.OriginalEnd = pgconv.TimeFromPgtype(originalEnd).UTC()
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt).UTC()
	view.UpdatedAt = pgconv.TimeFromPgtype(updatedAt).UTC()
	return &view, nil
}
