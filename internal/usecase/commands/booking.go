package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/pkg/clock"
	"openbook/internal/pkg/config"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateBookingInput struct {
	ResourceID uuid.UUID
	TaskName   string
	MemoryGB   int32
	StartTime  time.Time
	EndTime    time.Time
}

type UpdateBookingInput struct {
	TaskName *string
	EndTime  *time.Time
}

// CapacityExceededError carries the full admission verdict so callers
// can report what was asked against what remained. Matches
// errs.ErrCapacityExceeded under errors.Is.
type CapacityExceededError struct {
	Availability booking.Availability
	RequestedGB  int32
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf(
		"capacity exceeded: requested %dGB, available %dGB of %dGB (%d conflicting bookings)",
		e.RequestedGB, e.Availability.AvailableGB, e.Availability.TotalGB, len(e.Availability.ConflictIDs),
	)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == errs.ErrCapacityExceeded
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, actor shared.Identity, in CreateBookingInput) (uuid.UUID, error)
	UpdateBooking(ctx context.Context, actor shared.Identity, id uuid.UUID, in UpdateBookingInput) error
	ExtendBooking(ctx context.Context, actor shared.Identity, id uuid.UUID, hours int) error
	ReleaseBooking(ctx context.Context, actor shared.Identity, id uuid.UUID) error
	CancelBooking(ctx context.Context, actor shared.Identity, id uuid.UUID) error
}

type bookingCommandsImpl struct {
	uow       shared.UnitOfWork
	publisher shared.AuditPublisher
	clk       clock.Clock
	cfg       config.BookingConfig
	logger    *slog.Logger
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	publisher shared.AuditPublisher,
	clk clock.Clock,
	cfg config.BookingConfig,
	logger *slog.Logger,
) BookingCommands {
	return &bookingCommandsImpl{uow: uow, publisher: publisher, clk: clk, cfg: cfg, logger: logger}
}

// CreateBooking admits a new booking. The whole check-and-act sequence
// runs inside one transaction under the resource's advisory lock, so two
// concurrent creates on the same resource serialize and the loser sees
// the winner's demand.
func (c *bookingCommandsImpl) CreateBooking(ctx context.Context, actor shared.Identity, in CreateBookingInput) (uuid.UUID, error) {
	taskName, err := booking.NewTaskName(in.TaskName)
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrInvalidInput)
	}
	rng, err := booking.NewTimeRange(in.StartTime, in.EndTime)
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrInvalidBookingWindow)
	}

	policy := actor.Policy()
	if !policy.AllowsDuration(rng.Duration()) {
		return uuid.Nil, errs.Wrap(errs.ErrPolicyViolation, "booking duration exceeds group limit")
	}
	if !policy.AllowsAdvance(c.clk.Now(), rng.Start()) {
		return uuid.Nil, errs.Wrap(errs.ErrPolicyViolation, "booking starts too far in advance")
	}

	var (
		bookingID uuid.UUID
		event     shared.AuditEvent
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.LockResource(ctx, in.ResourceID); err != nil {
			return err
		}

		res, err := tx.Reads().ResourceByID(ctx, in.ResourceID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrResourceNotFound)
			}
			return err
		}
		if !res.IsActive {
			return errs.Wrap(errs.ErrResourceUnavailable, "resource is not accepting bookings")
		}

		current, err := tx.Reads().CountNonTerminalByUser(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if !policy.AllowsConcurrent(current) {
			return errs.Wrap(errs.ErrPolicyViolation, "concurrent booking limit reached")
		}

		now := c.clk.Now()
		b, err := booking.NewBooking(
			now, actor.UserID, in.ResourceID,
			taskName, in.MemoryGB, rng,
			time.Duration(c.cfg.MaxSessionHours)*time.Hour,
		)
		if err != nil {
			return markBookingErr(err)
		}

		demands, err := tx.Reads().OverlappingDemands(ctx, in.ResourceID, rng, nil)
		if err != nil {
			return err
		}
		avail := booking.ComputeAvailability(res.TotalMemoryGB, demands, in.MemoryGB)
		if !avail.CanBook {
			return &CapacityExceededError{Availability: avail, RequestedGB: in.MemoryGB}
		}

		if err := tx.Bookings().Create(ctx, tx.DB(), b); err != nil {
			return err
		}

		details := fmt.Sprintf("task=%q window=%s memory_gb=%d", taskName, rng, in.MemoryGB)
		if err := tx.Audit().Append(ctx, tx.DB(), b.ID(), booking.ActionCreated, details, now); err != nil {
			return err
		}

		bookingID = b.ID()
		event = shared.AuditEvent{
			BookingID:  b.ID(),
			UserID:     actor.UserID,
			ResourceID: in.ResourceID,
			Action:     booking.ActionCreated,
			Details:    details,
			At:         now,
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	c.publish(ctx, event)
	return bookingID, nil
}

// UpdateBooking edits the task name and/or end time of an upcoming
// booking. A changed end time re-validates capacity over the whole
// interval, excluding the booking's own demand.
func (c *bookingCommandsImpl) UpdateBooking(ctx context.Context, actor shared.Identity, id uuid.UUID, in UpdateBookingInput) error {
	var taskName *booking.TaskName
	if in.TaskName != nil {
		name, err := booking.NewTaskName(*in.TaskName)
		if err != nil {
			return errs.Mark(err, errs.ErrInvalidInput)
		}
		taskName = &name
	}

	var event shared.AuditEvent
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := c.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		if err := tx.LockResource(ctx, b.ResourceID()); err != nil {
			return err
		}

		rng, err := b.UpdatePlan(taskName, in.EndTime)
		if err != nil {
			return markBookingErr(err)
		}

		if rng != nil {
			policy := actor.Policy()
			if !policy.AllowsDuration(rng.Duration()) {
				return errs.Wrap(errs.ErrPolicyViolation, "booking duration exceeds group limit")
			}
			if err := c.checkCapacity(ctx, tx, b, *rng); err != nil {
				return err
			}
		}

		now := c.clk.Now()
		if err := c.save(ctx, tx, b, booking.StatusUpcoming, now); err != nil {
			return err
		}

		details := fmt.Sprintf("task=%q window=%s", b.TaskName(), b.TimeRange())
		if err := tx.Audit().Append(ctx, tx.DB(), b.ID(), booking.ActionUpdated, details, now); err != nil {
			return err
		}
		event = c.eventFor(b, booking.ActionUpdated, details, now)
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ctx, event)
	return nil
}

// ExtendBooking pushes the end of an active booking by whole hours.
// Only the delta interval [old_end, new_end) is re-validated; the
// already-held interval is never re-contested.
func (c *bookingCommandsImpl) ExtendBooking(ctx context.Context, actor shared.Identity, id uuid.UUID, hours int) error {
	if hours <= 0 {
		return errs.Wrap(errs.ErrInvalidBookingWindow, "extension hours must be positive")
	}
	policy := actor.Policy()
	if !policy.AllowsExtension(hours) {
		return errs.Wrap(errs.ErrPolicyViolation, "extension exceeds group limit")
	}

	var event shared.AuditEvent
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := c.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		if err := tx.LockResource(ctx, b.ResourceID()); err != nil {
			return err
		}

		oldEnd := b.TimeRange().End()
		delta, err := b.Extend(hours)
		if err != nil {
			return markBookingErr(err)
		}

		if err := c.checkCapacity(ctx, tx, b, delta); err != nil {
			return err
		}

		now := c.clk.Now()
		if err := c.save(ctx, tx, b, booking.StatusActive, now); err != nil {
			return err
		}

		details := fmt.Sprintf("end %s -> %s (+%dh, original end %s)",
			oldEnd.Format(time.RFC3339), b.TimeRange().End().Format(time.RFC3339),
			hours, b.OriginalEnd().Format(time.RFC3339))
		if err := tx.Audit().Append(ctx, tx.DB(), b.ID(), booking.ActionExtended, details, now); err != nil {
			return err
		}
		event = c.eventFor(b, booking.ActionExtended, details, now)
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ctx, event)
	return nil
}

// ReleaseBooking ends an active booking now, freeing its remaining
// interval for others.
func (c *bookingCommandsImpl) ReleaseBooking(ctx context.Context, actor shared.Identity, id uuid.UUID) error {
	var event shared.AuditEvent
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := c.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		now := c.clk.Now()
		scheduledEnd := b.TimeRange().End()
		if err := b.Release(now); err != nil {
			return markBookingErr(err)
		}

		if err := c.save(ctx, tx, b, booking.StatusActive, now); err != nil {
			return err
		}

		details := fmt.Sprintf("released at %s, %s ahead of scheduled end",
			now.Format(time.RFC3339), scheduledEnd.Sub(now).Round(time.Second))
		if err := tx.Audit().Append(ctx, tx.DB(), b.ID(), booking.ActionReleased, details, now); err != nil {
			return err
		}
		event = c.eventFor(b, booking.ActionReleased, details, now)
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ctx, event)
	return nil
}

// CancelBooking soft-deletes an upcoming booking. The row stays for the
// audit trail but stops counting against capacity and concurrency.
func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, actor shared.Identity, id uuid.UUID) error {
	var event shared.AuditEvent
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := c.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		if err := b.Cancel(); err != nil {
			return markBookingErr(err)
		}

		now := c.clk.Now()
		if err := c.save(ctx, tx, b, booking.StatusUpcoming, now); err != nil {
			return err
		}

		details := fmt.Sprintf("cancelled before start %s", b.TimeRange().Start().Format(time.RFC3339))
		if err := tx.Audit().Append(ctx, tx.DB(), b.ID(), booking.ActionCancelled, details, now); err != nil {
			return err
		}
		event = c.eventFor(b, booking.ActionCancelled, details, now)
		return nil
	})
	if err != nil {
		return err
	}

	c.publish(ctx, event)
	return nil
}

// loadOwned fetches the booking and enforces ownership. Someone else's
// booking is indistinguishable from a missing one.
func (c *bookingCommandsImpl) loadOwned(ctx context.Context, tx shared.Tx, actor shared.Identity, id uuid.UUID) (*booking.Booking, error) {
	snap, err := tx.Reads().BookingByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, err
	}
	if actor.Group != user.GroupAdmin && snap.UserID != actor.UserID {
		return nil, errs.ErrBookingNotFound
	}
	return snap.Entity()
}

func (c *bookingCommandsImpl) checkCapacity(ctx context.Context, tx shared.Tx, b *booking.Booking, rng booking.TimeRange) error {
	res, err := tx.Reads().ResourceByID(ctx, b.ResourceID())
	if err != nil {
		return err
	}

	selfID := b.ID()
	demands, err := tx.Reads().OverlappingDemands(ctx, b.ResourceID(), rng, &selfID)
	if err != nil {
		return err
	}

	avail := booking.ComputeAvailability(res.TotalMemoryGB, demands, b.MemoryGB())
	if !avail.CanBook {
		return &CapacityExceededError{Availability: avail, RequestedGB: b.MemoryGB()}
	}
	return nil
}

// save persists the mutated aggregate guarded by the status it had when
// loaded. A lost guard means a concurrent transition won the race.
func (c *bookingCommandsImpl) save(ctx context.Context, tx shared.Tx, b *booking.Booking, expected booking.Status, now time.Time) error {
	matched, err := tx.Bookings().Save(ctx, tx.DB(), b, expected, now)
	if err != nil {
		return err
	}
	if !matched {
		return errs.Wrap(errs.ErrInvalidStateTransition, "booking state changed concurrently")
	}
	return nil
}

func (c *bookingCommandsImpl) eventFor(b *booking.Booking, action booking.Action, details string, at time.Time) shared.AuditEvent {
	return shared.AuditEvent{
		BookingID:  b.ID(),
		UserID:     b.UserID(),
		ResourceID: b.ResourceID(),
		Action:     action,
		Details:    details,
		At:         at,
	}
}

func (c *bookingCommandsImpl) publish(ctx context.Context, event shared.AuditEvent) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish audit event",
			"booking_id", event.BookingID, "action", event.Action.String(), "error", err)
	}
}

func markBookingErr(err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidTransition):
		return errs.Mark(err, errs.ErrInvalidStateTransition)
	case errors.Is(err, booking.ErrStartInPast),
		errors.Is(err, booking.ErrSessionTooLong),
		errors.Is(err, booking.ErrInvalidDemand),
		errors.Is(err, booking.ErrInvalidExtension),
		errors.Is(err, booking.ErrEndBeforeStart),
		errors.Is(err, booking.ErrInvalidTimeRange):
		return errs.Mark(err, errs.ErrInvalidBookingWindow)
	default:
		return err
	}
}
