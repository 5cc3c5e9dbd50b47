package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"openbook/internal/domain/booking"
	"openbook/internal/infra"
	"openbook/internal/pkg/clock"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// sweepBatchLimit caps how many due bookings one sweep pass processes.
const sweepBatchLimit = 500

type SweepResult struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// StatusSweeper drives the time-based transitions: upcoming bookings
// whose interval opened become active, and bookings whose end passed
// become completed. An upcoming booking whose whole interval elapsed
// unobserved goes straight to completed.
type StatusSweeper interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type statusSweeperImpl struct {
	uow       shared.UnitOfWork
	publisher shared.AuditPublisher
	clk       clock.Clock
	logger    *slog.Logger
}

func NewStatusSweeper(uow shared.UnitOfWork, publisher shared.AuditPublisher, clk clock.Clock, logger *slog.Logger) StatusSweeper {
	return &statusSweeperImpl{uow: uow, publisher: publisher, clk: clk, logger: logger}
}

// Sweep runs each transition in its own transaction so one failing
// booking never rolls back the rest of the batch. The transition and its
// audit row commit together. A transient store failure on a booking is
// logged and counted; the sweep keeps going and the next tick retries.
func (s *statusSweeperImpl) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.clk.Now()

	due, err := s.uow.Reads().DueTransitions(ctx, now, sweepBatchLimit)
	if err != nil {
		// A transient store hiccup makes this pass a no-op; the next
		// tick picks the same bookings up again.
		if errors.Is(err, errs.ErrTransientStoreFailure) {
			s.logger.Warn("due-transitions query failed transiently, skipping sweep pass", "error", err)
			return SweepResult{}, nil
		}
		return SweepResult{}, errs.Wrap(err, "failed to list due transitions")
	}

	var (
		result SweepResult
		events []shared.AuditEvent
	)
	for _, snap := range due {
		event, to, err := s.sweepOne(ctx, snap.ID)
		if err != nil {
			result.Failed++
			s.logger.Warn("sweep transition failed",
				"booking_id", snap.ID, "status", snap.Status.String(), "error", err)
			continue
		}
		switch to {
		case booking.StatusActive:
			result.Activated++
		case booking.StatusCompleted:
			result.Completed++
		default:
			continue
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish sweep audit events", "count", len(events), "error", err)
		}
	}
	return result, nil
}

// sweepOne re-reads the booking inside its own transaction and applies
// whichever transition is due. A booking that no longer needs one (a
// concurrent sweep or release got there first) is skipped, not an error.
func (s *statusSweeperImpl) sweepOne(ctx context.Context, id uuid.UUID) (shared.AuditEvent, booking.Status, error) {
	var (
		event shared.AuditEvent
		to    booking.Status
	)
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().BookingByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}

		b, err := snap.Entity()
		if err != nil {
			return err
		}

		now := s.clk.Now()
		from := b.Status()

		switch {
		case !now.Before(b.TimeRange().End()):
			err = b.CompleteExpired(now)
		case from == booking.StatusUpcoming && b.TimeRange().Contains(now):
			err = b.Activate(now)
		default:
			return nil
		}
		if err != nil {
			// Status moved under us between the due query and this
			// transaction. Nothing left to do.
			return nil
		}

		matched, err := tx.Bookings().Save(ctx, tx.DB(), b, from, now)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}

		details := transitionDetails(from, b.Status())
		if err := tx.Audit().Append(ctx, tx.DB(), b.ID(), booking.ActionStatusChange, details, now); err != nil {
			return err
		}

		event = shared.AuditEvent{
			BookingID:  b.ID(),
			UserID:     b.UserID(),
			ResourceID: b.ResourceID(),
			Action:     booking.ActionStatusChange,
			Details:    details,
			At:         now,
		}
		to = b.Status()
		return nil
	})
	return event, to, err
}

func transitionDetails(from, to booking.Status) string {
	return fmt.Sprintf("%s -> %s", from, to)
}
