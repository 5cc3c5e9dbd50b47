//go:build unit

package commands_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/domain/resource"
	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// In-memory stand-ins for the persistence layer. They mirror the SQL
// semantics the real stores implement (half-open overlap, status guards,
// due-transition predicate) so command tests exercise the full
// check-and-act flow without a database.

type auditRow struct {
	bookingID uuid.UUID
	action    booking.Action
	details   string
	at        time.Time
}

type fakeStore struct {
	mu        sync.Mutex
	resources map[uuid.UUID]shared.ResourceSnapshot
	bookings  map[uuid.UUID]shared.BookingSnapshot
	audits    []auditRow
	locked    []uuid.UUID
	dueErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resources: make(map[uuid.UUID]shared.ResourceSnapshot),
		bookings:  make(map[uuid.UUID]shared.BookingSnapshot),
	}
}

func (s *fakeStore) addResource(totalGB int32, active bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.resources[id] = shared.ResourceSnapshot{
		ID:            id,
		Name:          "gpu-node",
		TotalMemoryGB: totalGB,
		IsActive:      active,
	}
	return id
}

func (s *fakeStore) addBooking(userID, resourceID uuid.UUID, memoryGB int32, start, end time.Time, status booking.Status) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.bookings[id] = shared.BookingSnapshot{
		ID:          id,
		UserID:      userID,
		ResourceID:  resourceID,
		TaskName:    "seeded task",
		MemoryGB:    memoryGB,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		OriginalEnd: end.UTC(),
		Status:      status,
	}
	return id
}

func (s *fakeStore) booking(id uuid.UUID) (shared.BookingSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.bookings[id]
	return snap, ok
}

func (s *fakeStore) auditActions(bookingID uuid.UUID) []booking.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	var actions []booking.Action
	for _, row := range s.audits {
		if row.bookingID == bookingID {
			actions = append(actions, row.action)
		}
	}
	return actions
}

type fakeUoW struct {
	st *fakeStore
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{st: u.st})
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) Reads() shared.CommandReads {
	return &fakeReads{st: u.st}
}

type fakeTx struct {
	st *fakeStore
}

func (t *fakeTx) Bookings() shared.BookingRepository   { return &fakeBookingRepo{st: t.st} }
func (t *fakeTx) Resources() shared.ResourceRepository { return &fakeResourceRepo{st: t.st} }
func (t *fakeTx) Audit() shared.AuditRepository        { return &fakeAuditRepo{st: t.st} }
func (t *fakeTx) Reads() shared.CommandReads           { return &fakeReads{st: t.st} }
func (t *fakeTx) DB() db.DBTX                          { return nil }

func (t *fakeTx) LockResource(_ context.Context, resourceID uuid.UUID) error {
	t.st.mu.Lock()
	defer t.st.mu.Unlock()
	t.st.locked = append(t.st.locked, resourceID)
	return nil
}

type fakeReads struct {
	st *fakeStore
}

func (r *fakeReads) ResourceByID(_ context.Context, id uuid.UUID) (*shared.ResourceSnapshot, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	snap, ok := r.st.resources[id]
	if !ok {
		return nil, infra.WrapRepoErr("resource not found", nil, infra.KindNotFound)
	}
	return &snap, nil
}

func (r *fakeReads) BookingByID(_ context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	snap, ok := r.st.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return &snap, nil
}

func (r *fakeReads) OverlappingDemands(_ context.Context, resourceID uuid.UUID, rng booking.TimeRange, excludeID *uuid.UUID) ([]booking.Demand, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var demands []booking.Demand
	for _, snap := range r.st.bookings {
		if snap.ResourceID != resourceID || snap.Status.IsTerminal() {
			continue
		}
		if excludeID != nil && snap.ID == *excludeID {
			continue
		}
		if snap.StartTime.Before(rng.End()) && rng.Start().Before(snap.EndTime) {
			demands = append(demands, booking.Demand{BookingID: snap.ID, MemoryGB: snap.MemoryGB})
		}
	}
	return demands, nil
}

func (r *fakeReads) DueTransitions(_ context.Context, now time.Time, limit int32) ([]*shared.BookingSnapshot, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.dueErr != nil {
		return nil, r.st.dueErr
	}
	var due []*shared.BookingSnapshot
	for _, snap := range r.st.bookings {
		snap := snap
		startDue := snap.Status == booking.StatusUpcoming && !snap.StartTime.After(now)
		endDue := !snap.Status.IsTerminal() && !snap.EndTime.After(now)
		if startDue || endDue {
			due = append(due, &snap)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].StartTime.Before(due[j].StartTime) })
	if int32(len(due)) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *fakeReads) CountNonTerminalByUser(_ context.Context, userID uuid.UUID) (int, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	count := 0
	for _, snap := range r.st.bookings {
		if snap.UserID == userID && !snap.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

type fakeBookingRepo struct {
	st *fakeStore
}

func (p *fakeBookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	p.st.mu.Lock()
	defer p.st.mu.Unlock()
	p.st.bookings[b.ID()] = shared.BookingSnapshot{
		ID:          b.ID(),
		UserID:      b.UserID(),
		ResourceID:  b.ResourceID(),
		TaskName:    b.TaskName().String(),
		MemoryGB:    b.MemoryGB(),
		StartTime:   b.TimeRange().Start(),
		EndTime:     b.TimeRange().End(),
		OriginalEnd: b.OriginalEnd(),
		Status:      b.Status(),
	}
	return nil
}

// Save mirrors the guarded UPDATE: only the mutable columns change, and
// only when the stored status still matches the expectation.
func (p *fakeBookingRepo) Save(_ context.Context, _ db.DBTX, b *booking.Booking, expected booking.Status, now time.Time) (bool, error) {
	p.st.mu.Lock()
	defer p.st.mu.Unlock()
	snap, ok := p.st.bookings[b.ID()]
	if !ok || snap.Status != expected {
		return false, nil
	}
	snap.TaskName = b.TaskName().String()
	snap.EndTime = b.TimeRange().End()
	snap.Status = b.Status()
	snap.UpdatedAt = now
	p.st.bookings[b.ID()] = snap
	return true, nil
}

type fakeResourceRepo struct {
	st *fakeStore
}

func (p *fakeResourceRepo) Create(_ context.Context, _ db.DBTX, r *resource.Resource) error {
	p.st.mu.Lock()
	defer p.st.mu.Unlock()
	p.st.resources[r.ID()] = shared.ResourceSnapshot{
		ID:            r.ID(),
		Name:          r.Name(),
		TotalMemoryGB: r.TotalMemoryGB(),
		IsActive:      r.IsActive(),
	}
	return nil
}

func (p *fakeResourceRepo) Update(_ context.Context, _ db.DBTX, id uuid.UUID, totalMemoryGB int32, active bool, _ time.Time) (bool, error) {
	p.st.mu.Lock()
	defer p.st.mu.Unlock()
	snap, ok := p.st.resources[id]
	if !ok {
		return false, nil
	}
	snap.TotalMemoryGB = totalMemoryGB
	snap.IsActive = active
	p.st.resources[id] = snap
	return true, nil
}

type fakeAuditRepo struct {
	st *fakeStore
}

func (p *fakeAuditRepo) Append(_ context.Context, _ db.DBTX, bookingID uuid.UUID, action booking.Action, details string, at time.Time) error {
	p.st.mu.Lock()
	defer p.st.mu.Unlock()
	p.st.audits = append(p.st.audits, auditRow{bookingID: bookingID, action: action, details: details, at: at})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.AuditEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, events ...shared.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) published() []shared.AuditEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.AuditEvent(nil), p.events...)
}
