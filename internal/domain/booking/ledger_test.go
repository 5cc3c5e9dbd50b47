//go:build unit

package booking_test

import (
	"testing"

	"openbook/internal/domain/booking"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeAvailability(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()

	tests := []struct {
		name        string
		totalGB     int32
		overlapping []booking.Demand
		requestedGB int32
		wantUsed    int32
		wantAvail   int32
		wantCanBook bool
	}{
		{
			name:    "fits below remaining capacity",
			totalGB: 80,
			overlapping: []booking.Demand{
				{BookingID: idA, MemoryGB: 30},
			},
			requestedGB: 40,
			wantUsed:    30,
			wantAvail:   50,
			wantCanBook: true,
		},
		{
			name:    "request equal to remaining capacity is admitted",
			totalGB: 80,
			overlapping: []booking.Demand{
				{BookingID: idA, MemoryGB: 30},
			},
			requestedGB: 50,
			wantUsed:    30,
			wantAvail:   50,
			wantCanBook: true,
		},
		{
			name:    "one over remaining capacity is rejected",
			totalGB: 80,
			overlapping: []booking.Demand{
				{BookingID: idA, MemoryGB: 30},
			},
			requestedGB: 51,
			wantUsed:    30,
			wantAvail:   50,
			wantCanBook: false,
		},
		{
			name:        "empty overlap set leaves full capacity free",
			totalGB:     80,
			overlapping: nil,
			requestedGB: 80,
			wantUsed:    0,
			wantAvail:   80,
			wantCanBook: true,
		},
		{
			name:    "demands aggregate across overlapping bookings",
			totalGB: 80,
			overlapping: []booking.Demand{
				{BookingID: idA, MemoryGB: 30},
				{BookingID: idB, MemoryGB: 45},
			},
			requestedGB: 10,
			wantUsed:    75,
			wantAvail:   5,
			wantCanBook: false,
		},
		{
			name:    "exclusive mode with unit capacity",
			totalGB: 1,
			overlapping: []booking.Demand{
				{BookingID: idA, MemoryGB: 1},
			},
			requestedGB: 1,
			wantUsed:    1,
			wantAvail:   0,
			wantCanBook: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := booking.ComputeAvailability(tt.totalGB, tt.overlapping, tt.requestedGB)

			assert.Equal(t, tt.totalGB, got.TotalGB)
			assert.Equal(t, tt.wantUsed, got.UsedGB)
			assert.Equal(t, tt.wantAvail, got.AvailableGB)
			assert.Equal(t, tt.wantCanBook, got.CanBook)
		})
	}
}

func TestComputeAvailabilityConflictIDs(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()

	got := booking.ComputeAvailability(80, []booking.Demand{
		{BookingID: idA, MemoryGB: 30},
		{BookingID: idB, MemoryGB: 60},
	}, 10)

	if diff := cmp.Diff([]uuid.UUID{idA, idB}, got.ConflictIDs); diff != "" {
		t.Errorf("ConflictIDs mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, booking.ComputeAvailability(80, nil, 10).ConflictIDs)
}
