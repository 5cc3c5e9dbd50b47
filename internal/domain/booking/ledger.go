package booking

import "github.com/google/uuid"

// Demand is the capacity slice one overlapping booking holds.
type Demand struct {
	BookingID uuid.UUID
	MemoryGB  int32
}

// Availability is the structured result of a capacity admission check.
type Availability struct {
	TotalGB     int32
	UsedGB      int32
	AvailableGB int32
	CanBook     bool
	ConflictIDs []uuid.UUID
}

// ComputeAvailability aggregates the demand of every booking that
// temporally overlaps a candidate interval and tests whether requestedGB
// still fits. The boundary is inclusive: a request equal to the remaining
// capacity is admitted. An empty overlap set means the full capacity is
// free, so a non-overlapping candidate is always admissible regardless of
// demand elsewhere. With totalGB = 1 and every demand = 1 this degenerates
// to exclusive booking.
func ComputeAvailability(totalGB int32, overlapping []Demand, requestedGB int32) Availability {
	var used int32
	conflicts := make([]uuid.UUID, 0, len(overlapping))
	for _, d := range overlapping {
		used += d.MemoryGB
		conflicts = append(conflicts, d.BookingID)
	}

	available := totalGB - used
	return Availability{
		TotalGB:     totalGB,
		UsedGB:      used,
		AvailableGB: available,
		CanBook:     requestedGB <= available,
		ConflictIDs: conflicts,
	}
}
