package queries

import (
	"context"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/infra"
	"openbook/internal/pkg/clock"
	"openbook/internal/pkg/config"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type ResourceView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	TotalMemoryGB int32     `json:"total_memory_gb"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AvailabilityView is the capacity probe result for one resource and
// candidate window. UsedGB is the peak concurrent demand of overlapping
// bookings, so a false CanBook always names the conflicting load.
type AvailabilityView struct {
	ResourceID  uuid.UUID `json:"resource_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TotalGB     int32     `json:"total_memory_gb"`
	UsedGB      int32     `json:"used_memory_gb"`
	AvailableGB int32     `json:"available_memory_gb"`
	RequestedGB int32     `json:"requested_memory_gb"`
	CanBook     bool      `json:"can_book"`
}

type ResourceStatsView struct {
	ResourceID      uuid.UUID `json:"resource_id"`
	ResourceName    string    `json:"resource_name"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	TotalBookings   int       `json:"total_bookings"`
	TotalHoursUsed  float64   `json:"total_hours_used"`
	UtilizationRate float64   `json:"utilization_rate"`
}

type ResourceReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ResourceView, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*ResourceView, error)
	// FindInWindow lists bookings intersecting [start,end) in non-terminal
	// or completed state, optionally scoped to one resource.
	FindInWindow(ctx context.Context, resourceID *uuid.UUID, start, end time.Time) ([]*BookingView, error)
}

type ResourceQueries interface {
	List(ctx context.Context, activeOnly bool) ([]*ResourceView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ResourceView, error)
	CheckAvailability(ctx context.Context, resourceID uuid.UUID, start, end time.Time, requestedGB int32) (*AvailabilityView, error)
	GetStats(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (*ResourceStatsView, error)
}

type resourceQueriesImpl struct {
	store ResourceReadStore
	reads shared.CommandReads
	clk   clock.Clock
	cfg   config.BookingConfig
}

func NewResourceQueries(store ResourceReadStore, reads shared.CommandReads, clk clock.Clock, cfg config.BookingConfig) ResourceQueries {
	return &resourceQueriesImpl{store: store, reads: reads, clk: clk, cfg: cfg}
}

func (q *resourceQueriesImpl) List(ctx context.Context, activeOnly bool) ([]*ResourceView, error) {
	return q.store.FindAll(ctx, activeOnly)
}

func (q *resourceQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ResourceView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrResourceNotFound)
		}
		return nil, err
	}
	return view, nil
}

// CheckAvailability is advisory: it runs outside any admission
// transaction, so a positive answer can still lose the race against a
// concurrent create.
func (q *resourceQueriesImpl) CheckAvailability(ctx context.Context, resourceID uuid.UUID, start, end time.Time, requestedGB int32) (*AvailabilityView, error) {
	res, err := q.reads.ResourceByID(ctx, resourceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrResourceNotFound)
		}
		return nil, err
	}

	rng, err := booking.NewTimeRange(start, end)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidBookingWindow)
	}

	demands, err := q.reads.OverlappingDemands(ctx, resourceID, rng, nil)
	if err != nil {
		return nil, err
	}

	avail := booking.ComputeAvailability(res.TotalMemoryGB, demands, requestedGB)
	return &AvailabilityView{
		ResourceID:  resourceID,
		StartTime:   rng.Start(),
		EndTime:     rng.End(),
		TotalGB:     avail.TotalGB,
		UsedGB:      avail.UsedGB,
		AvailableGB: avail.AvailableGB,
		RequestedGB: requestedGB,
		CanBook:     avail.CanBook,
	}, nil
}

func (q *resourceQueriesImpl) GetStats(ctx context.Context, resourceID uuid.UUID, start, end time.Time) (*ResourceStatsView, error) {
	res, err := q.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if !end.After(start) {
		return nil, errs.ErrInvalidBookingWindow
	}
	maxWindow := time.Duration(q.cfg.StatsMaxDays) * 24 * time.Hour
	if end.Sub(start) > maxWindow {
		return nil, errs.Wrap(errs.ErrInvalidBookingWindow, "stats window too large")
	}

	views, err := q.store.FindInWindow(ctx, &resourceID, start, end)
	if err != nil {
		return nil, err
	}

	// Memory-hours actually reserved, clamped to the window, against the
	// resource's total capacity over the same window.
	var usedHours, memoryHours float64
	for _, v := range views {
		s, e := v.StartTime, v.EndTime
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		if !e.After(s) {
			continue
		}
		h := e.Sub(s).Hours()
		usedHours += h
		memoryHours += h * float64(v.MemoryGB)
	}

	windowHours := end.Sub(start).Hours()
	var utilization float64
	if res.TotalMemoryGB > 0 && windowHours > 0 {
		utilization = memoryHours / (windowHours * float64(res.TotalMemoryGB))
	}

	return &ResourceStatsView{
		ResourceID:      res.ID,
		ResourceName:    res.Name,
		PeriodStart:     start,
		PeriodEnd:       end,
		TotalBookings:   len(views),
		TotalHoursUsed:  usedHours,
		UtilizationRate: utilization,
	}, nil
}
