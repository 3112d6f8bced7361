package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/dto"
	"POOLSHARE_BACK-END/internal/utils"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:         "unit-test-secret",
		AccessTokenTTL: time.Hour,
		ResetTokenTTL:  time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := GenerateToken(userID, "user@example.com", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(token, cfg)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute

	token, err := GenerateToken(uuid.New(), "user@example.com", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenInvalid(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	token, err := GenerateToken(uuid.New(), "user@example.com", cfg)
	require.NoError(t, err)

	wrong := testJWTConfig()
	wrong.Secret = "a-different-secret"
	_, err = ValidateToken(token, wrong)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateToken("not.a.token", cfg)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateToken("", cfg)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	userID := uuid.New()

	var gotID uuid.UUID
	var called bool
	next := func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = utils.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}
	handler := AuthMiddleware(next, cfg)

	t.Run("missing header", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token_missing", decodeErrorBody(t, rec).Code)
		require.False(t, called)
	})

	t.Run("malformed header", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req.Header.Set("Authorization", "Token abcdef")
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token_missing", decodeErrorBody(t, rec).Code)
		require.False(t, called)
	})

	t.Run("expired token", func(t *testing.T) {
		called = false
		expiredCfg := testJWTConfig()
		expiredCfg.AccessTokenTTL = -time.Minute
		token, err := GenerateToken(userID, "user@example.com", expiredCfg)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token_expired", decodeErrorBody(t, rec).Code)
		require.False(t, called)
	})

	t.Run("garbage token", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token_invalid", decodeErrorBody(t, rec).Code)
		require.False(t, called)
	})

	t.Run("valid token", func(t *testing.T) {
		called = false
		token, err := GenerateToken(userID, "user@example.com", cfg)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, called)
		require.Equal(t, userID, gotID)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	userID := uuid.New()

	var gotID *uuid.UUID
	next := func(w http.ResponseWriter, r *http.Request) {
		if id, ok := utils.GetUserIDFromContext(r.Context()); ok {
			gotID = &id
		} else {
			gotID = nil
		}
		w.WriteHeader(http.StatusOK)
	}
	handler := OptionalAuthMiddleware(next, cfg)

	t.Run("anonymous passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/pool", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, gotID)
	})

	t.Run("bad token treated as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pool", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, gotID)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		token, err := GenerateToken(userID, "user@example.com", cfg)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/pool", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotID)
		require.Equal(t, userID, *gotID)
	})
}
