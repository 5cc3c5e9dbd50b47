package queries

import (
	"context"
	"time"

	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/pkg/config"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	TaskName     string    `json:"task_name"`
	MemoryGB     int32     `json:"memory_gb"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	OriginalEnd  time.Time `json:"original_end_time"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StatusSummaryView struct {
	Upcoming    int64     `json:"upcoming"`
	Active      int64     `json:"active"`
	Completed   int64     `json:"completed"`
	LastUpdated time.Time `json:"last_updated"`
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*BookingView, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor shared.Identity, id uuid.UUID) (*BookingView, error)
	ListOwn(ctx context.Context, actor shared.Identity, limit, offset int32) ([]*BookingView, error)
	StatusSummary(ctx context.Context, now time.Time) (*StatusSummaryView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
	cfg   config.BookingConfig
}

func NewBookingQueries(store BookingReadStore, cfg config.BookingConfig) BookingQueries {
	return &bookingQueriesImpl{store: store, cfg: cfg}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor shared.Identity, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, err
	}

	// Non-admin callers only see their own bookings; leaking existence
	// of someone else's booking is treated the same as absence.
	if actor.Group != user.GroupAdmin && view.UserID != actor.UserID {
		return nil, errs.ErrBookingNotFound
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListOwn(ctx context.Context, actor shared.Identity, limit, offset int32) ([]*BookingView, error) {
	if limit <= 0 {
		limit = int32(q.cfg.ListDefaultLimit)
	}
	return q.store.FindByUser(ctx, actor.UserID, limit, offset)
}

func (q *bookingQueriesImpl) StatusSummary(ctx context.Context, now time.Time) (*StatusSummaryView, error) {
	counts, err := q.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusSummaryView{
		Upcoming:    counts["upcoming"],
		Active:      counts["active"],
		Completed:   counts["completed"],
		LastUpdated: now,
	}, nil
}
