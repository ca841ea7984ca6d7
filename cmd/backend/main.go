// Package main provides the entry point for the Linkfolio profile page service.
//
//	@title			Linkfolio API
//	@version		1.0.0
//	@description	A link-in-bio profile page builder with sectioned link layouts and click analytics.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"Linkfolio-Backend/internal/analytics"
	"Linkfolio-Backend/internal/auth"
	"Linkfolio-Backend/internal/config"
	"Linkfolio-Backend/internal/database"
	httpHandler "Linkfolio-Backend/internal/handler/http"
	"Linkfolio-Backend/internal/repository/postgres"
	"Linkfolio-Backend/internal/service"
	"Linkfolio-Backend/pkg/logger"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting linkfolio service", zap.String("env", cfg.Env))

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	if cfg.Database.SeedData {
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	storage := postgres.New(db, log)

	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte(cfg.Auth.JWTSecret),
		AccessTokenDuration: cfg.Auth.AccessTokenDuration,
		Issuer:              cfg.Auth.Issuer,
	})
	passwordService := auth.NewPasswordServiceWithCost(cfg.Auth.BcryptCost)
	authService := auth.NewService(storage, passwordService, jwtService, log)
	authMiddleware := auth.NewMiddleware(jwtService, cfg.HTTPServer.AllowedOrigins, log)

	layoutService := service.NewLayoutService(storage, log)
	linkService := service.NewLinkService(storage, log)
	profileService := service.NewProfileService(storage, log)
	summaryService := analytics.NewSummaryService(storage, log)

	processor := analytics.NewProcessor(storage, log, cfg.Analytics)
	if err := processor.Start(); err != nil {
		log.Fatal("failed to start click processor", zap.Error(err))
	}

	server := httpHandler.NewServer(
		storage,
		authService,
		linkService,
		layoutService,
		profileService,
		summaryService,
		processor,
		authMiddleware,
		log,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      server.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down linkfolio service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if err := processor.Stop(); err != nil {
		log.Error("failed to stop click processor", zap.Error(err))
	}
}
