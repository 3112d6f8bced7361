package models

import (
	"time"

	"github.com/google/uuid"
)

// Pool represents a pool listing owned by a user
type Pool struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OwnerID     uuid.UUID       `json:"owner_id" db:"owner_id"` // immutable after creation
	Title       string          `json:"title" db:"title"`
	City        string          `json:"city" db:"city"`
	Capacity    int             `json:"capacity" db:"capacity"`
	Images      []string        `json:"images" db:"images"`
	PricePerDay *float64        `json:"price_per_day" db:"price_per_day"`
	Description *string         `json:"description" db:"description"`
	Filters     map[string]bool `json:"filters" db:"filters"` // e.g. heated, pets_allowed
	BusyDays    []string        `json:"busy_days" db:"busy_days"`

	// Public discoverability: the listing shows up in the public query iff
	// IsVisible and VisibleUntil (when set) has not passed. Evaluated at
	// read time, never persisted as a derived field.
	IsVisible    bool       `json:"is_visible" db:"is_visible"`
	VisibleUntil *time.Time `json:"visible_until" db:"visible_until"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
