// @title Poolshare Backend API
// @version 1.0
// @description Poolshare Backend API for short-term pool rentals

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	_ "POOLSHARE_BACK-END/docs" // This is required for swagger
	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/handlers"
	"POOLSHARE_BACK-END/internal/routes"
	"POOLSHARE_BACK-END/internal/storage"
	"POOLSHARE_BACK-END/internal/store"
	"POOLSHARE_BACK-END/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dsn := cfg.GetDSN()

	// pgxpool + simple protocol (needed when connecting through PgBouncer)
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("parse dsn: %v", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "poolshare-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = "30000" // 30s
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping: %v", err)
		}
		if err := store.RunMigrations(ctx, dsn); err != nil {
			log.Fatalf("migrations: %v", err)
		}
	}

	// --- Collaborators ---
	userStore := store.NewPGUserStore(pool)
	poolStore := store.NewPGPoolStore(pool)
	emailService := utils.NewEmailService(&cfg.Email)

	var uploader storage.Uploader
	if cfg.IsStorageConfigured() {
		uploader, err = storage.NewS3Uploader(context.Background(), &cfg.Storage)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
	}

	// --- HTTP Handlers ---
	authHandler := handlers.NewAuthHandler(userStore, emailService, cfg)
	usersHandler := handlers.NewUsersHandler(userStore, uploader, cfg)
	poolsHandler := handlers.NewPoolsHandler(poolStore, uploader, cfg)
	googleAuthHandler := handlers.NewGoogleAuthHandler(userStore, cfg)
	healthHandler := handlers.NewHealthHandler(pool)

	// Setup all routes
	routes.SetupRoutes(cfg, authHandler, usersHandler, poolsHandler, googleAuthHandler, healthHandler)

	// --- HTTP Server + Graceful Shutdown ---
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	handler := c.Handler(http.DefaultServeMux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}
