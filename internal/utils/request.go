package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// ContextWithUser attaches the authenticated user's identity to the context
func ContextWithUser(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, emailKey, email)
}

// GetUserIDFromContext extracts the authenticated user id set by the auth middleware
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// GetEmailFromContext extracts the authenticated user's email
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}

// DecodeJSONRequest decodes the request body into dst and writes a 400 on failure.
// Returns a non-nil error when the response has already been written.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return err
	}
	return nil
}

var (
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	mobileRe = regexp.MustCompile(`^[0-9]{9,15}$`)
	dayRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidMobile reports whether s is a digit string of 9-15 digits
func IsValidMobile(s string) bool {
	return mobileRe.MatchString(s)
}

// IsValidDay reports whether s is a YYYY-MM-DD date string
func IsValidDay(s string) bool {
	if !dayRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// FormatTimestamp formats a timestamp as ISO 8601 / RFC3339
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimestampPtr formats an optional timestamp, nil stays nil
func FormatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}
