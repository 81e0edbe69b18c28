package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hrportal/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"hrportal/internal/app"
	"hrportal/internal/config"
	"hrportal/internal/db"
	"hrportal/internal/handler"
	"hrportal/internal/logging"
	"hrportal/internal/router"
)

// @title HR Document Portal API
// @version 1.0
// @description Employees list and open their pay slips; administrators provision users and upload documents.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := openRecords(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	portal, err := app.Build(ctx, cfg, logger, gormDB)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer portal.Close()

	e := echo.New()
	e.HideBanner = true

	var contentHandler *handler.ContentHandler
	if portal.SignedLinks != nil {
		contentHandler = handler.NewContentHandler(portal.Documents, portal.SignedLinks)
	}

	router.Register(
		e,
		cfg,
		logger,
		portal.JWT,
		portal.TokenStore,
		handler.NewAuthHandler(portal.Auth, logger),
		handler.NewUserHandler(portal.Users),
		handler.NewDocumentHandler(portal.Documents),
		contentHandler,
	)

	if cfg.SwaggerHost != "" {
		// SwaggerHost may already include scheme (http:// or https://)
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = "localhost:" + cfg.ServerPort
	}
	logger.Info(ctx, "swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "server listening", "addr", addr, "blob_backend", cfg.BlobBackend, "link_mode", cfg.BlobLinkMode, "public_url", cfg.PublicURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown", "error", err)
	}
}

// openRecords connects to the record store, dropping every table first when
// RESET_DB is set.
func openRecords(ctx context.Context, cfg *config.Config, logger logging.Logger) (*gorm.DB, error) {
	gormDB, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	if cfg.ResetDB {
		logger.Warn(ctx, "RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn(ctx, "failed to drop tables", "error", err)
		}
	}
	return gormDB, nil
}
