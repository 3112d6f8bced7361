package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/utils"
)

// Token failure kinds. Callers may react differently, e.g. prompting a
// silent re-login on expiry versus rejecting outright.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTClaims represents the claims in the JWT token
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a signed bearer token for the given user,
// expiring after the configured access TTL
func GenerateToken(userID uuid.UUID, email string, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken validates a bearer token and returns the claims. It fails
// with ErrTokenExpired when the token's lifetime has passed and
// ErrTokenInvalid for a bad signature or malformed structure.
func ValidateToken(tokenString string, cfg *config.JWTConfig) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(cfg.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
// An empty result means the header was absent or malformed.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthMiddleware validates JWT tokens in the Authorization header and
// attaches the resolved identity to the request context
func AuthMiddleware(next http.HandlerFunc, cfg *config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractBearerToken(r)
		if tokenString == "" {
			utils.WriteAuthErrorResponse(w, "Authorization header with Bearer token required", "token_missing")
			return
		}

		claims, err := ValidateToken(tokenString, cfg)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				utils.WriteAuthErrorResponse(w, "Token has expired", "token_expired")
			} else {
				utils.WriteAuthErrorResponse(w, "Invalid token", "token_invalid")
			}
			return
		}

		ctx := utils.ContextWithUser(r.Context(), claims.UserID, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalAuthMiddleware attaches the caller identity when a valid bearer
// token is present and lets the request through anonymously otherwise.
// Used on single-listing reads so owners can preview their own hidden
// listings without locking the endpoint to authenticated callers.
func OptionalAuthMiddleware(next http.HandlerFunc, cfg *config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenString := extractBearerToken(r); tokenString != "" {
			if claims, err := ValidateToken(tokenString, cfg); err == nil {
				r = r.WithContext(utils.ContextWithUser(r.Context(), claims.UserID, claims.Email))
			}
		}
		next.ServeHTTP(w, r)
	}
}
