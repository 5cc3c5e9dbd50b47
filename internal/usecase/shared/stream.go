package shared

import (
	"context"
	"time"

	"openbook/internal/domain/booking"

	"github.com/google/uuid"
)

// AuditEvent mirrors one booking_logs row for downstream consumers.
type AuditEvent struct {
	BookingID  uuid.UUID      `json:"booking_id"`
	UserID     uuid.UUID      `json:"user_id"`
	ResourceID uuid.UUID      `json:"resource_id"`
	Action     booking.Action `json:"action"`
	Details    string         `json:"details"`
	At         time.Time      `json:"at"`
}

// AuditPublisher fans audit events out to the event stream after the
// owning transaction committed. Publishing is best-effort: the database
// audit log is the source of truth and a publish failure never fails the
// command.
type AuditPublisher interface {
	Publish(ctx context.Context, events ...AuditEvent) error
}
