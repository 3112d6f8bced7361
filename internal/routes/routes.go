package routes

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/handlers"
	"POOLSHARE_BACK-END/internal/middleware"
)

// SetupRoutes configures all application routes. Each operation gets the
// gate the contract asks for: bearer for owner-scoped work, the shared
// secret for admin work, none for the public surface.
func SetupRoutes(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	usersHandler *handlers.UsersHandler,
	poolsHandler *handlers.PoolsHandler,
	googleAuthHandler *handlers.GoogleAuthHandler,
	healthHandler *handlers.HealthHandler,
) {
	jwtCfg := &cfg.JWT
	adminCfg := &cfg.Admin

	// Health check routes
	http.HandleFunc("/healthz", healthHandler.HealthCheck)
	http.HandleFunc("/livez", healthHandler.LivenessCheck)
	http.HandleFunc("/readyz", healthHandler.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/auth/register", authHandler.Register)
	http.HandleFunc("/auth/login", authHandler.Login)
	http.HandleFunc("/auth/forgot-password", authHandler.ForgotPassword)
	http.HandleFunc("/auth/reset-password", authHandler.ResetPassword)
	http.HandleFunc("/auth/google/login", googleAuthHandler.GoogleLogin)
	http.HandleFunc("/auth/google/callback", googleAuthHandler.GoogleCallback)

	// User routes
	http.HandleFunc("/user", middleware.AuthMiddleware(usersHandler.UpdateSelf, jwtCfg))
	http.HandleFunc("/user/avatar", middleware.AuthMiddleware(usersHandler.UploadAvatar, jwtCfg))
	http.HandleFunc("/admin/users", middleware.AdminSecretMiddleware(usersHandler.ListUsers, adminCfg))

	// Pool routes. Listing is public, creation needs a bearer token.
	http.HandleFunc("/pools", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			poolsHandler.ListPools(w, r)
		case http.MethodPost:
			middleware.AuthMiddleware(poolsHandler.CreatePool, jwtCfg)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	http.HandleFunc("/pools/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/visibility"):
			middleware.AdminSecretMiddleware(poolsHandler.SetVisibility, adminCfg)(w, r)
		case strings.HasSuffix(r.URL.Path, "/images"):
			middleware.AuthMiddleware(poolsHandler.UploadImage, jwtCfg)(w, r)
		default:
			middleware.AuthMiddleware(poolsHandler.PoolMutation, jwtCfg)(w, r)
		}
	})
	http.HandleFunc("/pool", middleware.OptionalAuthMiddleware(poolsHandler.GetPool, jwtCfg))

	// Swagger documentation
	http.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Poolshare backend is running."))
}
