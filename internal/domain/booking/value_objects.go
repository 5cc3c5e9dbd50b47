package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrEmptyTaskName    = errors.New("task name must not be empty")
	ErrTaskNameTooLong  = errors.New("task name too long")
)

const MaxTaskNameLength = 200

// TimeRange is a half-open interval [start, end). Both endpoints are
// normalized to UTC on construction so comparisons never mix zones.
type TimeRange struct {
	start time.Time
	end   time.Time
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{start: start, end: end}, nil
}

func (r TimeRange) Start() time.Time {
	return r.start
}

func (r TimeRange) End() time.Time {
	return r.end
}

func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

// Overlaps reports whether two half-open intervals intersect:
// [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// Contains reports whether t falls inside [start, end).
func (r TimeRange) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.start) && t.Before(r.end)
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s,%s)", r.start.Format(time.RFC3339), r.end.Format(time.RFC3339))
}

// TaskName is the human label attached to a booking.
type TaskName struct {
	value string
}

func NewTaskName(value string) (TaskName, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return TaskName{}, ErrEmptyTaskName
	}
	if len(trimmed) > MaxTaskNameLength {
		return TaskName{}, ErrTaskNameTooLong
	}
	return TaskName{value: trimmed}, nil
}

func (n TaskName) String() string {
	return n.value
}
