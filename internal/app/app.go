// Package app assembles the portal's stores and services from configuration.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hrportal/internal/auth"
	"hrportal/internal/blob"
	"hrportal/internal/cache"
	"hrportal/internal/config"
	"hrportal/internal/db"
	"hrportal/internal/logging"
	"hrportal/internal/repository"
	"hrportal/internal/service"
)

// App holds the wired dependencies shared by the server and the CLI.
type App struct {
	DB         *gorm.DB
	Cache      *cache.Client
	JWT        *auth.JWTService
	TokenStore *auth.TokenStore
	// SignedLinks is set when the portal serves document content itself.
	SignedLinks *blob.SignedLinker

	Auth      service.AuthService
	Users     service.UserService
	Documents service.DocumentService
}

// New opens the record store named by cfg and builds the services on it.
// RESET_DB is not honoured here; only the server drops tables.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	gormDB, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}
	a, err := Build(ctx, cfg, logger, gormDB)
	if err != nil {
		if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return a, nil
}

// Build migrates an already opened record store and builds the services.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger, gormDB *gorm.DB) (*App, error) {
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	blobs, linker, err := NewBlobBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(ctx); err != nil {
			logger.Warn(ctx, "redis unreachable, running without cache", "addr", cfg.RedisAddr, "error", err)
		}
	}

	userRepo := repository.NewUserRepository(gormDB)
	documentRepo := repository.NewDocumentRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	signedLinks, _ := linker.(*blob.SignedLinker)

	return &App{
		DB:          gormDB,
		Cache:       cacheClient,
		JWT:         jwtService,
		TokenStore:  tokenStore,
		SignedLinks: signedLinks,
		Auth:        service.NewAuthService(userRepo, jwtService, tokenStore),
		Users:       service.NewUserService(userRepo, auth.PasswordPolicy{MinLength: cfg.PasswordMinLength}),
		Documents: service.NewDocumentService(
			documentRepo,
			blobs,
			linker,
			cacheClient,
			logger.With("component", "documents"),
			cfg.UploadMaxBytes,
		),
	}, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return a.Cache.Close()
}

// NewBlobBackend selects the blob store and the link builder named by cfg.
func NewBlobBackend(ctx context.Context, cfg *config.Config) (blob.Store, blob.Linker, error) {
	var store blob.Store
	switch cfg.BlobBackend {
	case config.BlobBackendLocal:
		local, err := blob.NewLocalStore(cfg.BlobLocalRoot, cfg.BlobFolder)
		if err != nil {
			return nil, nil, fmt.Errorf("local blob store: %w", err)
		}
		store = local

	case config.BlobBackendS3:
		creds, err := cfg.LoadCredentials()
		if err != nil {
			return nil, nil, err
		}
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Folder:          cfg.BlobFolder,
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			SessionToken:    creds.SessionToken,
			UsePathStyle:    cfg.S3PathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("s3 blob store: %w", err)
		}
		store = s3Store

	default:
		return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}

	linker, err := newLinker(cfg, store)
	if err != nil {
		return nil, nil, err
	}
	return store, linker, nil
}

// newLinker picks how links are built. Presigned links come from S3 itself;
// for the local store the portal signs links and serves the content.
// Viewer links only make sense when an external viewer host is named.
func newLinker(cfg *config.Config, store blob.Store) (blob.Linker, error) {
	switch cfg.BlobLinkMode {
	case config.LinkModePresign, "":
		if s3Store, ok := store.(*blob.S3Store); ok {
			return s3Store, nil
		}
		linker, err := blob.NewSignedLinker(cfg.PublicURL, []byte(cfg.JWTSecret), 0)
		if err != nil {
			return nil, fmt.Errorf("signed links: %w", err)
		}
		return linker, nil

	case config.LinkModeViewer:
		if cfg.BlobViewerHost == "" {
			return nil, fmt.Errorf("link mode %q requires BLOB_VIEWER_HOST", config.LinkModeViewer)
		}
		return blob.NewViewerLinker(cfg.BlobViewerHost), nil

	default:
		return nil, fmt.Errorf("unknown link mode %q", cfg.BlobLinkMode)
	}
}
