// Package store persists user accounts and pool listings in Postgres.
// Handlers depend on the interfaces so tests can substitute fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/visibility"
)

var (
	// ErrNotFound covers both a missing row and a row the caller does not
	// own; the two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail maps the unique-index violation on users.email
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrImageLimit is returned when a listing already carries the maximum
	// number of images
	ErrImageLimit = errors.New("image limit reached")
)

// UserStore persists user accounts
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error
	// ResetPassword consumes an unexpired reset token and installs the new
	// password hash in one conditional update.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error
	SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// PoolStore persists pool listings. Owner-scoped mutations match on both
// the listing id and the owner id in a single statement; a non-match is
// reported as ErrNotFound.
type PoolStore interface {
	CreatePool(ctx context.Context, p *models.Pool) error
	GetPoolByID(ctx context.Context, id uuid.UUID) (*models.Pool, error)
	ListPools(ctx context.Context, filter visibility.ListFilter, now time.Time) ([]models.Pool, error)
	UpdatePool(ctx context.Context, p *models.Pool, ownerID uuid.UUID) error
	DeletePool(ctx context.Context, id, ownerID uuid.UUID) error
	SetVisibility(ctx context.Context, id uuid.UUID, visible bool, until *time.Time) (*models.Pool, error)
	AppendImage(ctx context.Context, id, ownerID uuid.UUID, url string) (*models.Pool, error)
}
