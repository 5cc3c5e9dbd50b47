//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"openbook/internal/domain/user"
	"openbook/internal/infra"
	"openbook/internal/pkg/config"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/queries"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingReadStore struct {
	views       map[uuid.UUID]*queries.BookingView
	counts      map[string]int64
	lastLimit   int32
	lastOffset  int32
	listedUsers []uuid.UUID
}

func (s *fakeBookingReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	v, ok := s.views[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (s *fakeBookingReadStore) FindByUser(_ context.Context, userID uuid.UUID, limit, offset int32) ([]*queries.BookingView, error) {
	s.listedUsers = append(s.listedUsers, userID)
	s.lastLimit = limit
	s.lastOffset = offset
	var out []*queries.BookingView
	for _, v := range s.views {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeBookingReadStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	return s.counts, nil
}

func TestBookingQueriesGetByID(t *testing.T) {
	ctx := context.Background()
	owner := shared.Identity{UserID: uuid.New(), Group: user.GroupStandard}
	stranger := shared.Identity{UserID: uuid.New(), Group: user.GroupStandard}
	admin := shared.Identity{UserID: uuid.New(), Group: user.GroupAdmin}

	view := &queries.BookingView{ID: uuid.New(), UserID: owner.UserID, Status: "upcoming"}
	store := &fakeBookingReadStore{views: map[uuid.UUID]*queries.BookingView{view.ID: view}}
	q := queries.NewBookingQueries(store, config.NewTestConfig().Booking)

	t.Run("owner sees their booking", func(t *testing.T) {
		got, err := q.GetByID(ctx, owner, view.ID)
		require.NoError(t, err)
		assert.Equal(t, view.ID, got.ID)
	})

	t.Run("someone else's booking reads as missing", func(t *testing.T) {
		_, err := q.GetByID(ctx, stranger, view.ID)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})

	t.Run("admin sees any booking", func(t *testing.T) {
		_, err := q.GetByID(ctx, admin, view.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := q.GetByID(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})
}

func TestBookingQueriesListOwn(t *testing.T) {
	ctx := context.Background()
	caller := shared.Identity{UserID: uuid.New(), Group: user.GroupStandard}
	store := &fakeBookingReadStore{views: map[uuid.UUID]*queries.BookingView{}}
	cfg := config.NewTestConfig().Booking
	cfg.ListDefaultLimit = 40
	q := queries.NewBookingQueries(store, cfg)

	_, err := q.ListOwn(ctx, caller, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(40), store.lastLimit, "non-positive limit falls back to the configured default")
	assert.Equal(t, []uuid.UUID{caller.UserID}, store.listedUsers, "listing is always scoped to the caller")

	_, err = q.ListOwn(ctx, caller, 25, 50)
	require.NoError(t, err)
	assert.Equal(t, int32(25), store.lastLimit)
	assert.Equal(t, int32(50), store.lastOffset)
}

func TestBookingQueriesStatusSummary(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	store := &fakeBookingReadStore{counts: map[string]int64{
		"upcoming":  3,
		"active":    1,
		"completed": 7,
		"cancelled": 2,
	}}
	q := queries.NewBookingQueries(store, config.NewTestConfig().Booking)

	summary, err := q.StatusSummary(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Upcoming)
	assert.Equal(t, int64(1), summary.Active)
	assert.Equal(t, int64(7), summary.Completed)
	assert.Equal(t, now, summary.LastUpdated)
}
