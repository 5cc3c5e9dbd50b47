package resource

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("resource name must not be empty")
	ErrInvalidCapacity = errors.New("total memory must be positive")
)

// Resource is a bookable device with a fixed scalar capacity (GB of
// memory). Capacity and active-flag edits by an operator never
// retroactively invalidate existing bookings.
type Resource struct {
	id            uuid.UUID
	name          string
	description   string
	totalMemoryGB int32
	active        bool
}

func NewResource(id uuid.UUID, name, description string, totalMemoryGB int32, active bool) (*Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if totalMemoryGB <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Resource{
		id:            id,
		name:          name,
		description:   description,
		totalMemoryGB: totalMemoryGB,
		active:        active,
	}, nil
}

func (r *Resource) ID() uuid.UUID        { return r.id }
func (r *Resource) Name() string         { return r.name }
func (r *Resource) Description() string  { return r.description }
func (r *Resource) TotalMemoryGB() int32 { return r.totalMemoryGB }
func (r *Resource) IsActive() bool       { return r.active }
