// Package visibility holds the read-time rules deciding whether a pool
// listing may be returned to a caller. The functions are pure; the store
// translates ListFilter into its query so filtering happens in the
// database, not in memory.
package visibility

import (
	"time"

	"github.com/google/uuid"

	"POOLSHARE_BACK-END/internal/models"
)

// IsPubliclyVisible reports whether the listing is publicly discoverable
// at the given instant: visible flag on, and either no expiry or an expiry
// that has not passed yet.
func IsPubliclyVisible(pool *models.Pool, now time.Time) bool {
	if !pool.IsVisible {
		return false
	}
	return pool.VisibleUntil == nil || !pool.VisibleUntil.Before(now)
}

// CanView reports whether the caller may read the listing. Owners may
// preview their own non-public listings; callerID is nil for anonymous
// requests.
func CanView(pool *models.Pool, callerID *uuid.UUID, now time.Time) bool {
	if IsPubliclyVisible(pool, now) {
		return true
	}
	return callerID != nil && *callerID == pool.OwnerID
}

// ListFilter selects which listings a list query returns
type ListFilter struct {
	// OwnerID, when set, matches all listings of that owner regardless of
	// visibility (dashboard view). Otherwise the public predicate applies.
	OwnerID *uuid.UUID
}

// FilterFor builds the filter for a list request. A syntactically valid
// user id scopes the query to that owner's listings; anything else (empty
// or malformed) falls back to the public-only filter rather than a 400,
// so the public endpoint stays usable for anonymous callers.
func FilterFor(requestedOwnerID string) ListFilter {
	if id, err := uuid.Parse(requestedOwnerID); err == nil {
		return ListFilter{OwnerID: &id}
	}
	return ListFilter{}
}
