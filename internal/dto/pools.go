package dto

// PoolRequest represents the payload for creating a pool listing and for
// the full-replacement update (PUT /pools/{pool_id})
type PoolRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=40"`
	City        string          `json:"city" validate:"required"`
	Capacity    int             `json:"capacity" validate:"required,min=1,max=100"`
	Images      []string        `json:"images" validate:"required,min=1,max=7"`
	PricePerDay *float64        `json:"price_per_day,omitempty"`
	Description *string         `json:"description,omitempty"`
	Filters     map[string]bool `json:"filters,omitempty"`
	BusyDays    []string        `json:"busy_days,omitempty"`
}

// PoolResponse represents pool data in API responses
type PoolResponse struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Title        string          `json:"title"`
	City         string          `json:"city"`
	Capacity     int             `json:"capacity"`
	Images       []string        `json:"images"`
	PricePerDay  *float64        `json:"price_per_day"`
	Description  *string         `json:"description"`
	Filters      map[string]bool `json:"filters"`
	BusyDays     []string        `json:"busy_days"`
	IsVisible    bool            `json:"is_visible"`
	VisibleUntil *string         `json:"visible_until"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

// PoolListResponse represents the pool listing response
type PoolListResponse struct {
	Pools []PoolResponse `json:"pools"`
	Total int            `json:"total"`
}

// SetVisibilityRequest represents the admin visibility toggle payload.
// VisibleUntil is RFC3339 or null for "no expiry while visible".
type SetVisibilityRequest struct {
	IsVisible    bool    `json:"is_visible"`
	VisibleUntil *string `json:"visible_until,omitempty"`
}

// PoolImageUploadResponse returns the listing after an image upload
type PoolImageUploadResponse struct {
	Pool PoolResponse `json:"pool"`
}
