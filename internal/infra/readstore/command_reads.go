package readstore

import (
	"context"
	"time"

	"openbook/internal/domain/booking"
	"openbook/internal/infra"
	"openbook/internal/infra/db"
	"openbook/internal/pkg/pgconv"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CommandReadStore serves the validation reads of the admission path.
// Bound to a DBTX so the same queries run inside an admission
// transaction or against the pool.
type CommandReadStore struct {
	dbtx db.DBTX
}

func NewCommandReadStore(dbtx db.DBTX) *CommandReadStore {
	return &CommandReadStore{dbtx: dbtx}
}

var _ shared.CommandReads = (*CommandReadStore)(nil)

const resourceByIDQuery = `
SELECT id, name, total_memory_gb, is_active
FROM resources
WHERE id = $1
`

func (s *CommandReadStore) ResourceByID(ctx context.Context, id uuid.UUID) (*shared.ResourceSnapshot, error) {
	row := s.dbtx.QueryRow(ctx, resourceByIDQuery, pgconv.UUIDToPgtype(id))

	var (
		pgID pgtype.UUID
		snap shared.ResourceSnapshot
	)
	if err := row.Scan(&pgID, &snap.Name, &snap.TotalMemoryGB, &snap.IsActive); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("resource not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read resource", err)
	}
	snap.ID = uuid.UUID(pgID.Bytes)
	return &snap, nil
}

const bookingColumns = `
    id, user_id, resource_id, task_name, memory_gb,
    start_time, end_time, original_end_time, status, created_at, updated_at
`

const bookingByIDQuery = `
SELECT` + bookingColumns + `
FROM bookings
WHERE id = $1
`

func (s *CommandReadStore) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	row := s.dbtx.QueryRow(ctx, bookingByIDQuery, pgconv.UUIDToPgtype(id))
	snap, err := scanBookingSnapshot(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to read booking", err)
	}
	return snap, nil
}

// Half-open interval overlap: [s1,e1) and [s2,e2) intersect iff
// s1 < e2 AND s2 < e1. Only non-terminal bookings hold capacity.
const overlappingDemandsQuery = `
SELECT id, memory_gb
FROM bookings
WHERE resource_id = $1
  AND status IN ('upcoming', 'active')
  AND start_time < $3
  AND end_time > $2
  AND ($4::uuid IS NULL OR id <> $4)
ORDER BY start_time
`

func (s *CommandReadStore) OverlappingDemands(ctx context.Context, resourceID uuid.UUID, rng booking.TimeRange, excludeID *uuid.UUID) ([]booking.Demand, error) {
	var exclude pgtype.UUID
	if excludeID != nil {
		exclude = pgconv.UUIDToPgtype(*excludeID)
	}

	rows, err := s.dbtx.Query(ctx, overlappingDemandsQuery,
		pgconv.UUIDToPgtype(resourceID),
		pgconv.TimeToPgtype(rng.Start()),
		pgconv.TimeToPgtype(rng.End()),
		exclude,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query overlapping bookings", err)
	}
	defer rows.Close()

	var demands []booking.Demand
	for rows.Next() {
		var (
			pgID pgtype.UUID
			d    booking.Demand
		)
		if err := rows.Scan(&pgID, &d.MemoryGB); err != nil {
			return nil, infra.WrapRepoErr("failed to scan overlapping booking", err)
		}
		d.BookingID = uuid.UUID(pgID.Bytes)
		demands = append(demands, d)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate overlapping bookings", err)
	}
	return demands, nil
}

// A due transition is an upcoming booking whose interval has opened or
// any non-terminal booking whose end has passed.
const dueTransitionsQuery = `
SELECT` + bookingColumns + `
FROM bookings
WHERE (status = 'upcoming' AND start_time <= $1)
   OR (status IN ('upcoming', 'active') AND end_time <= $1)
ORDER BY start_time
LIMIT $2
`

func (s *CommandReadStore) DueTransitions(ctx context.Context, now time.Time, limit int32) ([]*shared.BookingSnapshot, error) {
	rows, err := s.dbtx.Query(ctx, dueTransitionsQuery, pgconv.TimeToPgtype(now), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query due transitions", err)
	}
	defer rows.Close()

	var snaps []*shared.BookingSnapshot
	for rows.Next() {
		snap, err := scanBookingSnapshot(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan due booking", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate due bookings", err)
	}
	return snaps, nil
}

const countNonTerminalQuery = `
SELECT count(*)
FROM bookings
WHERE user_id = $1 AND status IN ('upcoming', 'active')
`

func (s *CommandReadStore) CountNonTerminalByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.dbtx.QueryRow(ctx, countNonTerminalQuery, pgconv.UUIDToPgtype(userID)).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count user bookings", err)
	}
	return count, nil
}

func scanBookingSnapshot(row pgx.Row) (*shared.BookingSnapshot, error) {
	var (
		id, userID, resourceID  pgtype.UUID
		start, end, originalEnd pgtype.Timestamptz
		createdAt, updatedAt    pgtype.Timestamptz
		status                  string
		snap                    shared.BookingSnapshot
	)
	err := row.Scan(
		&id, &userID, &resourceID, &snap.TaskName, &snap.MemoryGB,
		&start, &end, &originalEnd, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.ID = uuid.UUID(id.Bytes)
	snap.UserID = uuid.UUID(userID.Bytes)
	snap.ResourceID = uuid.UUID(resourceID.Bytes)
	snap.StartTime = pgconv.TimeFromPgtype(start).UTC()
	snap.EndTime = pgconv.TimeFromPgtype(end).UTC()
	snap.OriginalEnd = pgconv.TimeFromPgtype(originalEnd).UTC()
	snap.Status = booking.Status(status)
	snap.CreatedAt = pgconv.TimeFromPgtype(createdAt).UTC()
	snap.UpdatedAt = pgconv.TimeFromPgtype(updatedAt).UTC()
	return &snap, nil
}
