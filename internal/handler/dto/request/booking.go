package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	TaskName   string    `json:"task_name" binding:"required"`
	MemoryGB   int32     `json:"memory_gb" binding:"required,min=1"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

// UpdateBookingRequest patches an upcoming booking. Absent fields are
// left untouched.
type UpdateBookingRequest struct {
	TaskName *string    `json:"task_name,omitempty"`
	EndTime  *time.Time `json:"end_time,omitempty"`
}

type ExtendBookingRequest struct {
	Hours int `json:"hours" binding:"required,min=1"`
}
