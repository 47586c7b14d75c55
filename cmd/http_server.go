package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/audit"
	auditPostgres "github.com/frahmantamala/travel-agency/internal/audit/postgres"
	"github.com/frahmantamala/travel-agency/internal/auth"
	authPostgres "github.com/frahmantamala/travel-agency/internal/auth/postgres"
	"github.com/frahmantamala/travel-agency/internal/core/events"
	"github.com/frahmantamala/travel-agency/internal/core/metrics"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	invitationPostgres "github.com/frahmantamala/travel-agency/internal/invitation/postgres"
	"github.com/frahmantamala/travel-agency/internal/notification"
	"github.com/frahmantamala/travel-agency/internal/role"
	rolePostgres "github.com/frahmantamala/travel-agency/internal/role/postgres"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/transport/middleware"
	"github.com/frahmantamala/travel-agency/internal/transport/rest"
	"github.com/frahmantamala/travel-agency/internal/transport/swagger"
	"github.com/frahmantamala/travel-agency/internal/user"
	userPostgres "github.com/frahmantamala/travel-agency/internal/user/postgres"
	"github.com/frahmantamala/travel-agency/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const openAPIPath = "./api/openapi.yml"

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API",
	Long:  `Serve the tenant, role, invitation and audit endpoints until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return fmt.Errorf("initialize dependencies: %w", err)
		}
		return serveHTTP(cmd.Context(), deps)
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

// serveHTTP blocks until ctx is cancelled or the listener fails, then stops
// accepting requests, flushes queued notifications and closes the pool.
func serveHTTP(ctx context.Context, deps *Dependencies) error {
	cfg := deps.Config.Server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	listenErr := make(chan error, 1)
	go func() {
		deps.Logger.Info("http server listening", "address", server.Addr)
		listenErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		deps.Logger.Info("shutdown requested")
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		deps.Logger.Error("http server shutdown", "error", err)
	}
	if err := deps.Bus.Drain(shutdownCtx); err != nil {
		deps.Logger.Warn("pending notifications dropped", "error", err)
	}
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("database close", "error", err)
	}

	deps.Logger.Info("server stopped")
	return runErr
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	db, err := initDB(ctx, config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Bus:    events.NewEventBus(log),
		Router: chi.NewRouter(),
		Logger: log,
	}
	setupRoutes(ctx, deps)
	return deps, nil
}

func setupRoutes(ctx context.Context, deps *Dependencies) {
	cfg := deps.Config
	log := deps.Logger
	base := transport.NewBaseHandler(log)

	notification.RegisterHandlers(deps.Bus, newNotificationClient(cfg.Notification, log))
	notifier := notification.NewAsyncNotifier(deps.Bus, log)

	auditService := audit.NewService(auditPostgres.NewAuditRepository(deps.DB), log)

	userRepo := userPostgres.NewUserRepository(deps.Gorm)
	userService := user.NewService(userRepo, log)

	roleService := role.NewService(rolePostgres.NewRoleRepository(deps.Gorm), userRepo, auditService, log)

	invitationService := invitation.NewService(
		invitationPostgres.NewInvitationRepository(deps.Gorm),
		roleService,
		notifier,
		auditService,
		invitation.Config{
			TTL:        cfg.Invitation.TTL,
			AcceptURL:  cfg.Invitation.AcceptURL,
			BCryptCost: cfg.Security.BCryptCost,
		},
		log,
	)

	authRepo := authPostgres.NewRepository(deps.Gorm)
	authService := auth.NewService(authRepo, auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration), log)
	resolver := auth.NewResolver(auth.ContextSessionProvider{}, authRepo, log)
	enforcer := auth.NewEnforcer(resolver, cfg.Security.LegacyAdminRole, log)

	routes := rest.Dependencies{
		Health:         rest.NewHealthHandler(deps.DB.DB),
		Auth:           auth.NewHandler(base, authService),
		RBAC:           auth.NewRBACAuthorization(enforcer, base),
		Users:          user.NewHandler(base, userService),
		Roles:          role.NewHandler(base, roleService),
		Invitations:    invitation.NewHandler(base, invitationService),
		Audit:          audit.NewHandler(base, auditService),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	}

	if cfg.RateLimit.RequestsPerSecond > 0 {
		routes.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy)
	}

	if cfg.Observability.Metrics.Enabled {
		metrics.Register(prometheus.DefaultRegisterer)
		middleware.RegisterMetrics(prometheus.DefaultRegisterer)
		routes.Metrics = promhttp.Handler()
		routes.MetricsPath = cfg.Observability.Metrics.Path
	}

	spec, err := swagger.LoadSpec(ctx, openAPIPath)
	if err != nil {
		log.Warn("openapi document unavailable, swagger ui disabled", "error", err)
	} else {
		routes.OpenAPI = spec
	}

	rest.RegisterAllRoutes(deps.Router, routes)
}

func newNotificationClient(cfg internal.NotificationConfig, log *slog.Logger) *notification.Client {
	return notification.NewClient(notification.Config{
		Enabled: cfg.Enabled,
		APIURL:  cfg.APIURL,
		APIKey:  cfg.APIKey,
		Sender:  cfg.Sender,
		Timeout: cfg.Timeout,
	}, log)
}

func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	dbConn, err := sqlx.ConnectContext(ctx, "pgx", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return dbConn, nil
}

// initGorm shares the sqlx pool. TranslateError is required for unique
// violations to surface as gorm.ErrDuplicatedKey.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
}
