package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStartInPast       = errors.New("start time cannot be in the past")
	ErrSessionTooLong    = errors.New("session exceeds maximum duration")
	ErrInvalidDemand     = errors.New("capacity demand must be positive")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidExtension  = errors.New("extension hours must be positive")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
)

// InvalidTransitionError names the attempted action and the status that
// refused it. It matches ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	Action Action
	Status Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking in status %q", e.Action, e.Status)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Booking is the aggregate owning the lifecycle state machine.
// Resource and user references are immutable after creation.
type Booking struct {
	id          uuid.UUID
	userID      uuid.UUID
	resourceID  uuid.UUID
	taskName    TaskName
	memoryGB    int32
	timeRange   TimeRange
	originalEnd time.Time
	status      Status
	createdAt   time.Time
	updatedAt   time.Time
}

// NewBooking admits a new upcoming booking at instant now. Window policy:
// the start must not be in the past and the session must not exceed
// maxSession. Capacity admission against the resource total happens in
// the ledger, not here.
func NewBooking(
	now time.Time,
	userID, resourceID uuid.UUID,
	taskName TaskName,
	memoryGB int32,
	rng TimeRange,
	maxSession time.Duration,
) (*Booking, error) {
	if memoryGB <= 0 {
		return nil, ErrInvalidDemand
	}
	if rng.Start().Before(now.UTC()) {
		return nil, ErrStartInPast
	}
	if maxSession > 0 && rng.Duration() > maxSession {
		return nil, ErrSessionTooLong
	}

	return &Booking{
		id:          uuid.New(),
		userID:      userID,
		resourceID:  resourceID,
		taskName:    taskName,
		memoryGB:    memoryGB,
		timeRange:   rng,
		originalEnd: rng.End(),
		status:      StatusUpcoming,
	}, nil
}

func ReconstructBooking(
	id, userID, resourceID uuid.UUID,
	taskName TaskName,
	memoryGB int32,
	rng TimeRange,
	originalEnd time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		userID:      userID,
		resourceID:  resourceID,
		taskName:    taskName,
		memoryGB:    memoryGB,
		timeRange:   rng,
		originalEnd: originalEnd,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Activate moves upcoming -> active once the interval has opened.
func (b *Booking) Activate(now time.Time) error {
	now = now.UTC()
	if b.status != StatusUpcoming {
		return &InvalidTransitionError{Action: "activate", Status: b.status}
	}
	if now.Before(b.timeRange.Start()) || !now.Before(b.timeRange.End()) {
		return &InvalidTransitionError{Action: "activate", Status: b.status}
	}
	b.status = StatusActive
	return nil
}

// CompleteExpired closes a booking whose end has passed. Both active and
// upcoming bookings complete this way; an upcoming one skips straight to
// completed when its whole interval elapsed unobserved.
func (b *Booking) CompleteExpired(now time.Time) error {
	now = now.UTC()
	if b.status != StatusUpcoming && b.status != StatusActive {
		return &InvalidTransitionError{Action: "complete", Status: b.status}
	}
	if now.Before(b.timeRange.End()) {
		return &InvalidTransitionError{Action: "complete", Status: b.status}
	}
	b.status = StatusCompleted
	return nil
}

// Extend pushes the end time of an active booking by whole hours and
// returns the delta interval [old_end, new_end) that still needs
// capacity re-validation. The original end time is preserved.
func (b *Booking) Extend(hours int) (TimeRange, error) {
	if b.status != StatusActive {
		return TimeRange{}, &InvalidTransitionError{Action: ActionExtended, Status: b.status}
	}
	if hours <= 0 {
		return TimeRange{}, ErrInvalidExtension
	}

	oldEnd := b.timeRange.End()
	newEnd := oldEnd.Add(time.Duration(hours) * time.Hour)
	delta, err := NewTimeRange(oldEnd, newEnd)
	if err != nil {
		return TimeRange{}, err
	}

	b.timeRange = TimeRange{start: b.timeRange.Start(), end: newEnd}
	return delta, nil
}

// Release ends an active booking immediately, rewriting the end time to
// the release instant.
func (b *Booking) Release(now time.Time) error {
	if b.status != StatusActive {
		return &InvalidTransitionError{Action: ActionReleased, Status: b.status}
	}
	b.timeRange = TimeRange{start: b.timeRange.Start(), end: now.UTC()}
	b.status = StatusCompleted
	return nil
}

// UpdatePlan changes the label and/or end time of an upcoming booking.
// A new end time yields the full interval [start, new_end) for
// re-validation, unlike Extend which only re-checks the delta.
func (b *Booking) UpdatePlan(taskName *TaskName, newEnd *time.Time) (*TimeRange, error) {
	if b.status != StatusUpcoming {
		return nil, &InvalidTransitionError{Action: ActionUpdated, Status: b.status}
	}

	if taskName != nil {
		b.taskName = *taskName
	}

	if newEnd == nil {
		return nil, nil
	}

	rng, err := NewTimeRange(b.timeRange.Start(), newEnd.UTC())
	if err != nil {
		return nil, ErrEndBeforeStart
	}
	b.timeRange = rng
	return &rng, nil
}

// Cancel soft-deletes an upcoming booking. Cancelled is terminal; the
// row and its audit trail are never physically removed.
func (b *Booking) Cancel() error {
	if b.status != StatusUpcoming {
		return &InvalidTransitionError{Action: ActionCancelled, Status: b.status}
	}
	b.status = StatusCancelled
	return nil
}

func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) UserID() uuid.UUID      { return b.userID }
func (b *Booking) ResourceID() uuid.UUID  { return b.resourceID }
func (b *Booking) TaskName() TaskName     { return b.taskName }
func (b *Booking) MemoryGB() int32        { return b.memoryGB }
func (b *Booking) TimeRange() TimeRange   { return b.timeRange }
func (b *Booking) OriginalEnd() time.Time { return b.originalEnd }
func (b *Booking) Status() Status         { return b.status }
func (b *Booking) CreatedAt() time.Time   { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time   { return b.updatedAt }
