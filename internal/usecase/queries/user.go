package queries

import (
	"context"
	"time"

	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"created_at"`
}

// LimitsView exposes the caller's effective group policy. -1 means
// unlimited.
type LimitsView struct {
	Group              string `json:"group"`
	MaxBookingHours    int    `json:"max_booking_hours"`
	MaxAdvanceDays     int    `json:"max_advance_days"`
	MaxConcurrent      int    `json:"max_concurrent"`
	MaxExtendHours     int    `json:"max_extend_hours"`
	CurrentNonTerminal int    `json:"current_non_terminal"`
}

type UserReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UserView, error)
}

type UserQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*UserView, error)
	GetLimits(ctx context.Context, actor shared.Identity) (*LimitsView, error)
}

type userQueriesImpl struct {
	store UserReadStore
	reads shared.CommandReads
}

func NewUserQueries(store UserReadStore, reads shared.CommandReads) UserQueries {
	return &userQueriesImpl{store: store, reads: reads}
}

func (q *userQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*UserView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrUserNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *userQueriesImpl) GetLimits(ctx context.Context, actor shared.Identity) (*LimitsView, error) {
	current, err := q.reads.CountNonTerminalByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	policy := actor.Policy()
	return &LimitsView{
		Group:              actor.Group.String(),
		MaxBookingHours:    durationHours(policy.MaxBookingDuration),
		MaxAdvanceDays:     policy.MaxAdvanceDays,
		MaxConcurrent:      policy.MaxConcurrent,
		MaxExtendHours:     policy.MaxExtendHours,
		CurrentNonTerminal: current,
	}, nil
}

func durationHours(d time.Duration) int {
	if d < 0 {
		return user.Unlimited
	}
	return int(d.Hours())
}
