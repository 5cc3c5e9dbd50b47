package readstore

import (
	"context"

	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"
	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditReadStore struct {
	dbtx db.DBTX
}

func NewAuditReadStore(dbtx db.DBTX) *AuditReadStore {
	return &AuditReadStore{dbtx: dbtx}
}

var _ queries.AuditReadStore = (*AuditReadStore)(nil)

const listAuditByBookingQuery = `
SELECT id, booking_id, action, details, created_at
FROM booking_logs
WHERE booking_id = $1
ORDER BY created_at, id
`

func (s *AuditReadStore) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*queries.AuditEventView, error) {
	rows, err := s.dbtx.Query(ctx, listAuditByBookingQuery, pgconv.UUIDToPgtype(bookingID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query audit log", err)
	}
	defer rows.Close()

	views := make([]*queries.AuditEventView, 0)
	for rows.Next() {
		var (
			pgID      pgtype.UUID
			createdAt pgtype.Timestamptz
			view      queries.AuditEventView
		)
		if err := rows.Scan(&view.ID, &pgID, &view.Action, &view.Details, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan audit row", err)
		}
		view.BookingID = uuid.UUID(pgID.Bytes)
		view.CreatedAt = pgconv.TimeFromPgtype(createdAt).UTC()
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate audit rows", err)
	}
	return views, nil
}
