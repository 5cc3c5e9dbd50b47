package queries

import (
	"context"
	"time"

	"openbook/internal/pkg/clock"
	"openbook/internal/pkg/config"
	"openbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type CalendarSlot struct {
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Bookings    []*BookingView `json:"bookings"`
	IsAvailable bool           `json:"is_available"`
}

type CalendarView struct {
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	ResourceID *uuid.UUID      `json:"resource_id,omitempty"`
	Slots      []*CalendarSlot `json:"slots"`
}

type CalendarQueries interface {
	// GetCalendar materializes fixed-granularity slots over [start,end),
	// optionally scoped to one resource.
	GetCalendar(ctx context.Context, resourceID *uuid.UUID, start, end time.Time) (*CalendarView, error)
	// GetWeekCalendar is the 7-day convenience view starting at weekStart,
	// defaulting to the Monday of the current week.
	GetWeekCalendar(ctx context.Context, resourceID *uuid.UUID, weekStart *time.Time) (*CalendarView, error)
}

type calendarQueriesImpl struct {
	store ResourceReadStore
	clk   clock.Clock
	cfg   config.BookingConfig
}

func NewCalendarQueries(store ResourceReadStore, clk clock.Clock, cfg config.BookingConfig) CalendarQueries {
	return &calendarQueriesImpl{store: store, clk: clk, cfg: cfg}
}

func (q *calendarQueriesImpl) GetCalendar(ctx context.Context, resourceID *uuid.UUID, start, end time.Time) (*CalendarView, error) {
	start = start.UTC().Truncate(q.cfg.SlotGranularity)
	end = end.UTC()

	if !end.After(start) {
		return nil, errs.ErrInvalidBookingWindow
	}
	maxWindow := time.Duration(q.cfg.CalendarMaxDays) * 24 * time.Hour
	if end.Sub(start) > maxWindow {
		return nil, errs.Wrap(errs.ErrInvalidBookingWindow, "calendar window too large")
	}

	views, err := q.store.FindInWindow(ctx, resourceID, start, end)
	if err != nil {
		return nil, err
	}

	return &CalendarView{
		StartTime:  start,
		EndTime:    end,
		ResourceID: resourceID,
		Slots:      MaterializeSlots(start, end, q.cfg.SlotGranularity, views),
	}, nil
}

func (q *calendarQueriesImpl) GetWeekCalendar(ctx context.Context, resourceID *uuid.UUID, weekStart *time.Time) (*CalendarView, error) {
	var start time.Time
	if weekStart != nil {
		start = weekStart.UTC()
	} else {
		start = mondayOf(q.clk.Now())
	}
	return q.GetCalendar(ctx, resourceID, start, start.Add(7*24*time.Hour))
}

// MaterializeSlots walks [start,end) in steps of granularity and attaches
// every booking whose range covers the slot start. A slot is available
// when nothing covers it.
func MaterializeSlots(start, end time.Time, granularity time.Duration, bookings []*BookingView) []*CalendarSlot {
	var slots []*CalendarSlot
	for at := start; at.Before(end); at = at.Add(granularity) {
		slot := &CalendarSlot{
			StartTime: at,
			EndTime:   at.Add(granularity),
			Bookings:  []*BookingView{},
		}
		for _, b := range bookings {
			if !b.StartTime.After(at) && b.EndTime.After(at) {
				slot.Bookings = append(slot.Bookings, b)
			}
		}
		slot.IsAvailable = len(slot.Bookings) == 0
		slots = append(slots, slot)
	}
	return slots
}

func mondayOf(now time.Time) time.Time {
	now = now.UTC()
	day := now.Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7
	return day.Add(-time.Duration(offset) * 24 * time.Hour)
}
