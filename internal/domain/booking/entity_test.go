//go:build unit

package booking_test

import (
	"testing"
	"time"

	"openbook/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T, status booking.Status, start, end time.Time) *booking.Booking {
	t.Helper()
	name, err := booking.NewTaskName("training run")
	require.NoError(t, err)
	rng, err := booking.NewTimeRange(start, end)
	require.NoError(t, err)
	return booking.ReconstructBooking(
		uuid.New(), uuid.New(), uuid.New(),
		name, 16, rng, rng.End(), status,
		testNow, testNow,
	)
}

func TestNewBooking(t *testing.T) {
	name, err := booking.NewTaskName("training run")
	require.NoError(t, err)
	rng, err := booking.NewTimeRange(testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	require.NoError(t, err)

	t.Run("admits a valid upcoming booking", func(t *testing.T) {
		b, err := booking.NewBooking(testNow, uuid.New(), uuid.New(), name, 16, rng, 8*time.Hour)
		require.NoError(t, err)

		assert.Equal(t, booking.StatusUpcoming, b.Status())
		assert.Equal(t, rng.End(), b.OriginalEnd())
		assert.NotEqual(t, uuid.Nil, b.ID())
	})

	t.Run("rejects non-positive demand", func(t *testing.T) {
		_, err := booking.NewBooking(testNow, uuid.New(), uuid.New(), name, 0, rng, 8*time.Hour)
		assert.ErrorIs(t, err, booking.ErrInvalidDemand)
	})

	t.Run("rejects a start in the past", func(t *testing.T) {
		past, err := booking.NewTimeRange(testNow.Add(-time.Minute), testNow.Add(time.Hour))
		require.NoError(t, err)

		_, err = booking.NewBooking(testNow, uuid.New(), uuid.New(), name, 16, past, 8*time.Hour)
		assert.ErrorIs(t, err, booking.ErrStartInPast)
	})

	t.Run("rejects a session over the cap", func(t *testing.T) {
		long, err := booking.NewTimeRange(testNow.Add(time.Hour), testNow.Add(10*time.Hour))
		require.NoError(t, err)

		_, err = booking.NewBooking(testNow, uuid.New(), uuid.New(), name, 16, long, 8*time.Hour)
		assert.ErrorIs(t, err, booking.ErrSessionTooLong)
	})

	t.Run("zero cap means no session limit", func(t *testing.T) {
		long, err := booking.NewTimeRange(testNow.Add(time.Hour), testNow.AddDate(0, 0, 30))
		require.NoError(t, err)

		_, err = booking.NewBooking(testNow, uuid.New(), uuid.New(), name, 16, long, 0)
		assert.NoError(t, err)
	})
}

func TestBookingActivate(t *testing.T) {
	start := testNow
	end := testNow.Add(2 * time.Hour)

	t.Run("activates once the interval opened", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)

		require.NoError(t, b.Activate(start.Add(time.Minute)))
		assert.Equal(t, booking.StatusActive, b.Status())
	})

	t.Run("refuses before the start", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)

		err := b.Activate(start.Add(-time.Second))
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.Equal(t, booking.StatusUpcoming, b.Status())
	})

	t.Run("refuses at or after the end", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)

		assert.ErrorIs(t, b.Activate(end), booking.ErrInvalidTransition)
	})

	t.Run("refuses from non-upcoming statuses", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusActive, booking.StatusCompleted, booking.StatusCancelled} {
			b := newTestBooking(t, st, start, end)
			assert.ErrorIs(t, b.Activate(start.Add(time.Minute)), booking.ErrInvalidTransition, st)
		}
	})
}

func TestBookingCompleteExpired(t *testing.T) {
	start := testNow
	end := testNow.Add(2 * time.Hour)

	t.Run("completes an active booking past its end", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusActive, start, end)

		require.NoError(t, b.CompleteExpired(end))
		assert.Equal(t, booking.StatusCompleted, b.Status())
	})

	t.Run("completes an upcoming booking whose window fully elapsed", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)

		require.NoError(t, b.CompleteExpired(end.Add(time.Hour)))
		assert.Equal(t, booking.StatusCompleted, b.Status())
	})

	t.Run("refuses before the end", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusActive, start, end)

		assert.ErrorIs(t, b.CompleteExpired(end.Add(-time.Second)), booking.ErrInvalidTransition)
	})

	t.Run("refuses from terminal statuses", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusCompleted, booking.StatusCancelled} {
			b := newTestBooking(t, st, start, end)
			assert.ErrorIs(t, b.CompleteExpired(end.Add(time.Hour)), booking.ErrInvalidTransition, st)
		}
	})
}

func TestBookingExtend(t *testing.T) {
	start := testNow
	end := testNow.Add(2 * time.Hour)

	t.Run("pushes the end and returns the delta interval", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusActive, start, end)
		originalEnd := b.OriginalEnd()

		delta, err := b.Extend(3)
		require.NoError(t, err)

		assert.Equal(t, end, delta.Start())
		assert.Equal(t, end.Add(3*time.Hour), delta.End())
		assert.Equal(t, end.Add(3*time.Hour), b.TimeRange().End())
		assert.Equal(t, originalEnd, b.OriginalEnd(), "original end is preserved")
	})

	t.Run("extensions stack but original end stays", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusActive, start, end)

		_, err := b.Extend(1)
		require.NoError(t, err)
		_, err = b.Extend(2)
		require.NoError(t, err)

		assert.Equal(t, end.Add(3*time.Hour), b.TimeRange().End())
		assert.Equal(t, end, b.OriginalEnd())
	})

	t.Run("rejects non-positive hours", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusActive, start, end)

		_, err := b.Extend(0)
		assert.ErrorIs(t, err, booking.ErrInvalidExtension)
	})

	t.Run("refuses outside active", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusUpcoming, booking.StatusCompleted, booking.StatusCancelled} {
			b := newTestBooking(t, st, start, end)
			_, err := b.Extend(1)
			assert.ErrorIs(t, err, booking.ErrInvalidTransition, st)
		}
	})
}

func TestBookingRelease(t *testing.T) {
	start := testNow
	end := testNow.Add(4 * time.Hour)

	t.Run("rewrites the end to the release instant", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusActive, start, end)
		releaseAt := start.Add(90 * time.Minute)

		require.NoError(t, b.Release(releaseAt))
		assert.Equal(t, booking.StatusCompleted, b.Status())
		assert.Equal(t, releaseAt, b.TimeRange().End())
		assert.Equal(t, end, b.OriginalEnd(), "original end records the plan")
	})

	t.Run("refuses outside active", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusUpcoming, booking.StatusCompleted, booking.StatusCancelled} {
			b := newTestBooking(t, st, start, end)
			assert.ErrorIs(t, b.Release(start.Add(time.Hour)), booking.ErrInvalidTransition, st)
		}
	})
}

func TestBookingUpdatePlan(t *testing.T) {
	start := testNow.Add(time.Hour)
	end := testNow.Add(3 * time.Hour)

	t.Run("renames without touching the window", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)
		name, err := booking.NewTaskName("renamed")
		require.NoError(t, err)

		revalidate, err := b.UpdatePlan(&name, nil)
		require.NoError(t, err)

		assert.Nil(t, revalidate, "no window change means no re-validation")
		assert.Equal(t, "renamed", b.TaskName().String())
		assert.Equal(t, end, b.TimeRange().End())
	})

	t.Run("new end yields the full interval for re-validation", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)
		newEnd := end.Add(2 * time.Hour)

		revalidate, err := b.UpdatePlan(nil, &newEnd)
		require.NoError(t, err)

		require.NotNil(t, revalidate)
		assert.Equal(t, start, revalidate.Start())
		assert.Equal(t, newEnd, revalidate.End())
		assert.Equal(t, newEnd, b.TimeRange().End())
	})

	t.Run("rejects an end at or before the start", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)

		_, err := b.UpdatePlan(nil, &start)
		assert.ErrorIs(t, err, booking.ErrEndBeforeStart)
		assert.Equal(t, end, b.TimeRange().End())
	})

	t.Run("refuses outside upcoming", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusActive, booking.StatusCompleted, booking.StatusCancelled} {
			b := newTestBooking(t, st, start, end)
			_, err := b.UpdatePlan(nil, nil)
			assert.ErrorIs(t, err, booking.ErrInvalidTransition, st)
		}
	})
}

func TestBookingCancel(t *testing.T) {
	start := testNow.Add(time.Hour)
	end := testNow.Add(3 * time.Hour)

	t.Run("cancels an upcoming booking", func(t *testing.T) {
		b := newTestBooking(t, booking.StatusUpcoming, start, end)

		require.NoError(t, b.Cancel())
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.True(t, b.Status().IsTerminal())
	})

	t.Run("refuses outside upcoming", func(t *testing.T) {
		for _, st := range []booking.Status{booking.StatusActive, booking.StatusCompleted, booking.StatusCancelled} {
			b := newTestBooking(t, st, start, end)
			assert.ErrorIs(t, b.Cancel(), booking.ErrInvalidTransition, st)
		}
	})
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, booking.StatusUpcoming.IsTerminal())
	assert.False(t, booking.StatusActive.IsTerminal())
	assert.True(t, booking.StatusCompleted.IsTerminal())
	assert.True(t, booking.StatusCancelled.IsTerminal())
}
