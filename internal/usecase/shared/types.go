package shared

import (
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/domain/user"

	"github.com/google/uuid"
)

type ResourceSnapshot struct {
	ID            uuid.UUID
	Name          string
	TotalMemoryGB int32
	IsActive      bool
}

// Minimal snapshot for command read operations
type BookingSnapshot struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ResourceID  uuid.UUID
	TaskName    string
	MemoryGB    int32
	StartTime   time.Time
	EndTime     time.Time
	OriginalEnd time.Time
	Status      booking.Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Entity rehydrates the domain aggregate from a snapshot row.
func (s *BookingSnapshot) Entity() (*booking.Booking, error) {
	name, err := booking.NewTaskName(s.TaskName)
	if err != nil {
		return nil, err
	}
	rng, err := booking.NewTimeRange(s.StartTime, s.EndTime)
	if err != nil {
		return nil, err
	}
	return booking.ReconstructBooking(
		s.ID, s.UserID, s.ResourceID,
		name, s.MemoryGB, rng, s.OriginalEnd,
		s.Status, s.CreatedAt, s.UpdatedAt,
	), nil
}

// Identity is the authenticated caller as supplied by the identity
// collaborator: a stable user id plus a group label that only scales
// caller-side limits.
type Identity struct {
	UserID uuid.UUID
	Group  user.Group
}

func (i Identity) Policy() user.Policy {
	return user.PolicyFor(i.Group)
}
