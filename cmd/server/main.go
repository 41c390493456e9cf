package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/smarttransit/backend/internal/config"
	"github.com/smarttransit/backend/internal/es"
	"github.com/smarttransit/backend/internal/events"
	"github.com/smarttransit/backend/internal/handlers"
	"github.com/smarttransit/backend/internal/httpserver"
	"github.com/smarttransit/backend/internal/logging"
	loggingmw "github.com/smarttransit/backend/internal/middleware/logging"
	"github.com/smarttransit/backend/internal/repository"
	authsvc "github.com/smarttransit/backend/internal/service/auth"
	usersvc "github.com/smarttransit/backend/internal/service/user"
	"github.com/smarttransit/backend/pkg/db"
)

const userIndex = "users"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	config.MustNonEmpty(cfg.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	config.MustNonEmpty(cfg.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, "user_events")

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch error: %v", err)
	}

	userRepo := &repository.UserRepo{DB: database}
	refreshRepo := &repository.RefreshTokenRepo{DB: database}

	authService := &authsvc.Service{
		Users:         userRepo,
		Refresh:       refreshRepo,
		AccessSecret:  cfg.AccessTokenSecret,
		AccessExpiry:  cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshExpiry: cfg.RefreshTokenExpiry,
	}
	userService := &usersvc.Service{
		Users:    userRepo,
		Refresh:  refreshRepo,
		ES:       esClient,
		ESIndex:  userIndex,
		Producer: producer,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.HTTPErrorHandler = httpserver.ErrorHandler()

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Auth:          authService,
			Producer:      producer,
			AccessExpiry:  cfg.AccessTokenExpiry,
			RefreshExpiry: cfg.RefreshTokenExpiry,
		},
		UserHandler: &handlers.UserHandler{
			Users:        userService,
			AccessSecret: cfg.AccessTokenSecret,
		},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: userIndex},
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
