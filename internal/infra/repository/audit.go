package repository

import (
	"context"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// AuditRepository is append-only. Rows in booking_logs are never updated
// or deleted, even for cancelled bookings.
type AuditRepository struct{}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

const insertAuditQuery = `
INSERT INTO booking_logs (booking_id, action, details, created_at)
VALUES ($1, $2, $3, $4)
`

func (r *AuditRepository) Append(ctx context.Context, dbtx db.DBTX, bookingID uuid.UUID, action booking.Action, details string, at time.Time) error {
	_, err := dbtx.Exec(ctx, insertAuditQuery,
		pgconv.UUIDToPgtype(bookingID),
		action.String(),
		details,
		pgconv.TimeToPgtype(at),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append audit log", err)
	}
	return nil
}
