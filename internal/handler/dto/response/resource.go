package response

import (
	"time"

	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type ResourceResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	TotalMemoryGB int32     `json:"totalMemoryGb"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateResourceResponse struct {
	ID uuid.UUID `json:"id"`
}

type AvailabilityResponse struct {
	ResourceID  uuid.UUID `json:"resourceId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	TotalGB     int32     `json:"totalMemoryGb"`
	UsedGB      int32     `json:"usedMemoryGb"`
	AvailableGB int32     `json:"availableMemoryGb"`
	RequestedGB int32     `json:"requestedMemoryGb"`
	CanBook     bool      `json:"canBook"`
}

type ResourceStatsResponse struct {
	ResourceID      uuid.UUID `json:"resourceId"`
	ResourceName    string    `json:"resourceName"`
	PeriodStart     time.Time `json:"periodStart"`
	PeriodEnd       time.Time `json:"periodEnd"`
	TotalBookings   int       `json:"totalBookings"`
	TotalHoursUsed  float64   `json:"totalHoursUsed"`
	UtilizationRate float64   `json:"utilizationRate"`
}

type CalendarSlotResponse struct {
	StartTime   time.Time          `json:"startTime"`
	EndTime     time.Time          `json:"endTime"`
	Bookings    []*BookingResponse `json:"bookings"`
	IsAvailable bool               `json:"isAvailable"`
}

type CalendarResponse struct {
	StartTime  time.Time               `json:"startTime"`
	EndTime    time.Time               `json:"endTime"`
	ResourceID *uuid.UUID              `json:"resourceId,omitempty"`
	Slots      []*CalendarSlotResponse `json:"slots"`
}

func FromResourceView(rm *queries.ResourceView) *ResourceResponse {
	return &ResourceResponse{
		ID:            rm.ID,
		Name:          rm.Name,
		Description:   rm.Description,
		TotalMemoryGB: rm.TotalMemoryGB,
		IsActive:      rm.IsActive,
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
	}
}

func FromAvailabilityView(rm *queries.AvailabilityView) *AvailabilityResponse {
	return &AvailabilityResponse{
		ResourceID:  rm.ResourceID,
		StartTime:   rm.StartTime,
		EndTime:     rm.EndTime,
		TotalGB:     rm.TotalGB,
		UsedGB:      rm.UsedGB,
		AvailableGB: rm.AvailableGB,
		RequestedGB: rm.RequestedGB,
		CanBook:     rm.CanBook,
	}
}

func FromResourceStatsView(rm *queries.ResourceStatsView) *ResourceStatsResponse {
	return &ResourceStatsResponse{
		ResourceID:      rm.ResourceID,
		ResourceName:    rm.ResourceName,
		PeriodStart:     rm.PeriodStart,
		PeriodEnd:       rm.PeriodEnd,
		TotalBookings:   rm.TotalBookings,
		TotalHoursUsed:  rm.TotalHoursUsed,
		UtilizationRate: rm.UtilizationRate,
	}
}

func FromCalendarView(rm *queries.CalendarView) *CalendarResponse {
	slots := make([]*CalendarSlotResponse, 0, len(rm.Slots))
	for _, slot := range rm.Slots {
		bookings := make([]*BookingResponse, 0, len(slot.Bookings))
		for _, b := range slot.Bookings {
			bookings = append(bookings, FromBookingView(b))
		}
		slots = append(slots, &CalendarSlotResponse{
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Bookings:    bookings,
			IsAvailable: slot.IsAvailable,
		})
	}
	return &CalendarResponse{
		StartTime:  rm.StartTime,
		EndTime:    rm.EndTime,
		ResourceID: rm.ResourceID,
		Slots:      slots,
	}
}
