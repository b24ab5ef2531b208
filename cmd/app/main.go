package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-account-service/api"
	"user-account-service/internal/app"
	"user-account-service/internal/config"
	"user-account-service/internal/database"
	"user-account-service/internal/handler"
	"user-account-service/internal/logger"
	"user-account-service/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Конфиг
	cfg, err := config.LoadConfig()
	log := logger.New(cfg.LogLevel)
	if err != nil {
		log.Warnf(".env not found: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// База данных (database/sql)
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Info("Database connected")

	if err := database.MigrateDB(db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// SQLC queries
	queries := database.New(db)
	userRepo := repository.NewUserRepository(db, queries)

	// Redis: стримы событий и OTP
	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer redisClient.Close()

	sender, err := app.NewMailSender(cfg, log)
	if err != nil {
		log.Fatalf("Mail sender setup failed: %v", err)
	}
	composer, err := app.NewComposer(cfg)
	if err != nil {
		log.Fatalf("Mail templates failed: %v", err)
	}

	// Медиатор и use cases
	deps, err := app.NewAPI(cfg, userRepo, redisClient, sender, composer)
	if err != nil {
		log.Fatalf("Application setup failed: %v", err)
	}

	// Echo + Handlers
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(handler.LoggingMiddleware(log))

	apiHandler := handler.NewAPIHandler(deps.Users, deps.Auth, log, cfg.CookieSecure)
	api.RegisterHandlers(e, apiHandler)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Запуск сервера
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}

	log.Info("Server exited")
}
