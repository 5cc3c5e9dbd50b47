package queries

import (
	"context"
	"time"

	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type AuditEventView struct {
	ID        int64     `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditReadStore interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*AuditEventView, error)
}

type AuditQueries interface {
	ListByBooking(ctx context.Context, actor shared.Identity, bookingID uuid.UUID) ([]*AuditEventView, error)
}

type auditQueriesImpl struct {
	store    AuditReadStore
	bookings BookingQueries
}

func NewAuditQueries(store AuditReadStore, bookings BookingQueries) AuditQueries {
	return &auditQueriesImpl{store: store, bookings: bookings}
}

func (q *auditQueriesImpl) ListByBooking(ctx context.Context, actor shared.Identity, bookingID uuid.UUID) ([]*AuditEventView, error) {
	// Ownership gate is the same as reading the booking itself.
	if _, err := q.bookings.GetByID(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return q.store.ListByBooking(ctx, bookingID)
}
