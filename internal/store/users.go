package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"POOLSHARE_BACK-END/internal/models"
)

// PGUserStore is the Postgres implementation of UserStore
type PGUserStore struct {
	db *pgxpool.Pool
}

// NewPGUserStore creates a new PGUserStore
func NewPGUserStore(db *pgxpool.Pool) *PGUserStore {
	return &PGUserStore{db: db}
}

const userColumns = `id, first_name, last_name, email, mobile, password_hash, avatar_url,
	 reset_token, reset_token_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.PasswordHash,
		&u.AvatarURL, &u.ResetToken, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a Postgres unique-index violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts a new user. The unique index on lower(email) is the
// authority on duplicates; a violation maps to ErrDuplicateEmail even when
// a pre-check raced with another registration.
func (s *PGUserStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, mobile, password_hash, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Mobile, u.PasswordHash, u.AvatarURL, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetUserByEmail looks up a user by email, case-insensitively
func (s *PGUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// GetUserByID looks up a user by id
func (s *PGUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateUser replaces the mutable profile fields of the user row
func (s *PGUserStore) UpdateUser(ctx context.Context, u *models.User) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users
		    SET first_name = $1,
		        last_name = $2,
		        email = $3,
		        mobile = $4,
		        password_hash = $5,
		        updated_at = $6
		  WHERE id = $7`,
		u.FirstName, u.LastName, u.Email, u.Mobile, u.PasswordHash, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken stores a reset token with its expiry, overwriting any
// previous token so at most one stays live per user
func (s *PGUserStore) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET reset_token = $1, reset_token_expires_at = $2, updated_at = $3 WHERE id = $4`,
		token, expires, time.Now(), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword installs the new password hash and clears the token in one
// conditional update; an unknown or expired token affects zero rows.
func (s *PGUserStore) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users
		    SET password_hash = $2,
		        reset_token = NULL,
		        reset_token_expires_at = NULL,
		        updated_at = $3
		  WHERE reset_token = $1 AND reset_token_expires_at >= $3`,
		token, passwordHash, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAvatarURL stores the public URL of the user's uploaded avatar
func (s *PGUserStore) SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET avatar_url = $1, updated_at = $2 WHERE id = $3`,
		url, time.Now(), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns all users, newest first
func (s *PGUserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
