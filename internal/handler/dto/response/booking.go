package response

import (
	"time"

	"openbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	ResourceID   uuid.UUID `json:"resourceId"`
	ResourceName string    `json:"resourceName"`
	TaskName     string    `json:"taskName"`
	MemoryGB     int32     `json:"memoryGb"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	OriginalEnd  time.Time `json:"originalEndTime"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateBookingResponse struct {
	ID uuid.UUID `json:"id"`
}

type StatusSummaryResponse struct {
	Upcoming    int64     `json:"upcoming"`
	Active      int64     `json:"active"`
	Completed   int64     `json:"completed"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type SweepResponse struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type AuditEventResponse struct {
	ID        int64     `json:"id"`
	BookingID uuid.UUID `json:"bookingId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromBookingView(rm *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:           rm.ID,
		UserID:       rm.UserID,
		ResourceID:   rm.ResourceID,
		ResourceName: rm.ResourceName,
		TaskName:     rm.TaskName,
		MemoryGB:     rm.MemoryGB,
		StartTime:    rm.StartTime,
		EndTime:      rm.EndTime,
		OriginalEnd:  rm.OriginalEnd,
		Status:       rm.Status,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

func FromStatusSummaryView(rm *queries.StatusSummaryView) *StatusSummaryResponse {
	return &StatusSummaryResponse{
		Upcoming:    rm.Upcoming,
		Active:      rm.Active,
		Completed:   rm.Completed,
		LastUpdated: rm.LastUpdated,
	}
}

func FromAuditEventView(rm *queries.AuditEventView) *AuditEventResponse {
	return &AuditEventResponse{
		ID:        rm.ID,
		BookingID: rm.BookingID,
		Action:    rm.Action,
		Details:   rm.Details,
		CreatedAt: rm.CreatedAt,
	}
}
