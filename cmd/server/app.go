package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleanapi/cleanapi/internal/api/middleware"
	"github.com/cleanapi/cleanapi/internal/config"
	"github.com/cleanapi/cleanapi/internal/platform/objectstore"
	"github.com/cleanapi/cleanapi/internal/service"
	"github.com/cleanapi/cleanapi/internal/service/auth"
	"github.com/cleanapi/cleanapi/internal/store"
)

// limiterCleanupInterval is how often idle login rate limiter entries are
// evicted.
const limiterCleanupInterval = time.Minute

// dependencies are the storage collaborators of the application. Production
// uses PostgreSQL and the configured object store; tests substitute mocks.
type dependencies struct {
	// db is optional. When set the health check pings it.
	db          *sql.DB
	users       store.UserStore
	credentials store.CredentialStore
	devices     store.DeviceStore
	files       store.FileStore
	runTx       store.TxRunner
	objects     objectstore.Store
}

// application holds all the dependencies and components of the running
// server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService    auth.JWTService
	authenticator *auth.Authenticator
	userService   *service.UserServiceImpl
	deviceService *service.DeviceServiceImpl
	fileService   *service.FileServiceImpl
	loginLimiter  *middleware.RateLimiter
}

// newApplication wires services on top of deps.
func newApplication(cfg *config.Config, logger *slog.Logger, deps dependencies) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	return &application{
		config:        cfg,
		logger:        logger,
		db:            deps.db,
		jwtService:    jwtService,
		authenticator: auth.NewAuthenticator(deps.credentials, auth.NewBcryptVerifier(), hasher),
		userService:   service.NewUserService(deps.users, deps.credentials, hasher, deps.runTx, logger),
		deviceService: service.NewDeviceService(deps.devices, deps.runTx, logger),
		fileService:   service.NewFileService(deps.files, deps.objects, cfg.Storage.MaxUploadBytes, logger),
		loginLimiter:  middleware.NewRateLimiter(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginBurst),
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	app.loginLimiter.StartCleanup(limiterCleanupInterval)
	defer app.cleanup()

	return app.startHTTPServer(ctx, app.setupRouter())
}

// ping reports whether the database is reachable. Without a database the
// application is considered healthy.
func (app *application) ping(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

func (app *application) cleanup() {
	app.loginLimiter.Stop()
	app.logger.Info("application resources released")
}
