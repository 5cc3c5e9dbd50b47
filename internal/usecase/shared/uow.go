package shared

import (
	"context"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/domain/resource"
	"openbook/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// Reads: Command-side reads outside any transaction
	Reads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Resources() ResourceRepository
	Audit() AuditRepository
	Reads() CommandReads
	// LockResource serializes admission decisions for one resource via a
	// transaction-scoped advisory lock. Released automatically at
	// commit/rollback.
	LockResource(ctx context.Context, resourceID uuid.UUID) error
	DB() db.DBTX
}

// CommandReads are the validation reads the admission path needs. A Tx
// hands out a transaction-bound instance so check and act share one
// isolation scope.
type CommandReads interface {
	ResourceByID(ctx context.Context, id uuid.UUID) (*ResourceSnapshot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	// OverlappingDemands is the time-range overlap detector: every
	// non-terminal booking on the resource whose [start,end) intersects
	// rng, optionally excluding one booking for self-update checks.
	OverlappingDemands(ctx context.Context, resourceID uuid.UUID, rng booking.TimeRange, excludeID *uuid.UUID) ([]booking.Demand, error)
	// DueTransitions lists bookings whose time-driven transition is due
	// at instant now.
	DueTransitions(ctx context.Context, now time.Time, limit int32) ([]*BookingSnapshot, error)
	CountNonTerminalByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type BookingRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error
	// Save persists mutable booking state (task name, end time, status)
	// guarded by the expected current status. Returns false when the
	// guard did not match, i.e. the optimistic pre-condition was lost.
	Save(ctx context.Context, dbtx db.DBTX, b *booking.Booking, expected booking.Status, now time.Time) (bool, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, r *resource.Resource) error
	Update(ctx context.Context, dbtx db.DBTX, id uuid.UUID, totalMemoryGB int32, active bool, now time.Time) (bool, error)
}

type AuditRepository interface {
	Append(ctx context.Context, dbtx db.DBTX, bookingID uuid.UUID, action booking.Action, details string, at time.Time) error
}
