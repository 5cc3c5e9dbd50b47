package repository

import (
	"context"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

const insertBookingQuery = `
INSERT INTO bookings (
    id, user_id, resource_id, task_name, memory_gb,
    start_time, end_time, original_end_time, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (r *BookingRepository) Create(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error {
	_, err := dbtx.Exec(ctx, insertBookingQuery,
		pgconv.UUIDToPgtype(b.ID()),
		pgconv.UUIDToPgtype(b.UserID()),
		pgconv.UUIDToPgtype(b.ResourceID()),
		b.TaskName().String(),
		b.MemoryGB(),
		pgconv.TimeToPgtype(b.TimeRange().Start()),
		pgconv.TimeToPgtype(b.TimeRange().End()),
		pgconv.TimeToPgtype(b.OriginalEnd()),
		b.Status().String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	return nil
}

const saveBookingQuery = `
UPDATE bookings
SET task_name = $2, end_time = $3, status = $4, updated_at = $5
WHERE id = $1 AND status = $6
`

// Save persists the mutable columns guarded by the status the aggregate
// was loaded with. Zero rows touched means the guard was lost to a
// concurrent writer, reported as (false, nil) so callers can decide.
func (r *BookingRepository) Save(ctx context.Context, dbtx db.DBTX, b *booking.Booking, expected booking.Status, now time.Time) (bool, error) {
	tag, err := dbtx.Exec(ctx, saveBookingQuery,
		pgconv.UUIDToPgtype(b.ID()),
		b.TaskName().String(),
		pgconv.TimeToPgtype(b.TimeRange().End()),
		b.Status().String(),
		pgconv.TimeToPgtype(now),
		expected.String(),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to save booking", err)
	}
	return tag.RowsAffected() == 1, nil
}
