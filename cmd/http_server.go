package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/staff-registry/internal"
	"github.com/frahmantamala/staff-registry/internal/auth"
	authPostgres "github.com/frahmantamala/staff-registry/internal/auth/postgres"
	authRedis "github.com/frahmantamala/staff-registry/internal/auth/redis"
	"github.com/frahmantamala/staff-registry/internal/core/events"
	"github.com/frahmantamala/staff-registry/internal/hospital"
	hospitalPostgres "github.com/frahmantamala/staff-registry/internal/hospital/postgres"
	"github.com/frahmantamala/staff-registry/internal/metrics"
	"github.com/frahmantamala/staff-registry/internal/notification"
	"github.com/frahmantamala/staff-registry/internal/registration"
	registrationPostgres "github.com/frahmantamala/staff-registry/internal/registration/postgres"
	"github.com/frahmantamala/staff-registry/internal/transport"
	"github.com/frahmantamala/staff-registry/internal/transport/rest"
	"github.com/frahmantamala/staff-registry/internal/transport/swagger"
	"github.com/frahmantamala/staff-registry/internal/user"
	userPostgres "github.com/frahmantamala/staff-registry/internal/user/postgres"
	"github.com/frahmantamala/staff-registry/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *goredis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "mode", deps.Config.App.Mode)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// let in-flight event handlers finish before the pool goes away
	deps.Bus.Wait()
	deps.close()

	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	db := deps.Gorm

	var roles auth.RoleRepository = authPostgres.NewRoleRepository(db)
	if deps.Redis != nil {
		roles = authRedis.NewRoleCache(deps.Redis, roles, cfg.Redis.RoleTTL, lg)
	}

	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	permissions := auth.NewPermissionChecker(roles, cfg.Security.AdminPermissionLevel, lg)
	accounts := userPostgres.NewAccountRepository(db)

	authService := auth.NewService(auth.ServiceDeps{
		Accounts:    accounts,
		Ledger:      auth.NewLedger(authPostgres.NewRefreshTokenRepository(db), cfg.Security.RefreshTokenDuration, lg),
		Tokens:      auth.NewJWTTokenGenerator(cfg.Security.AccessTokenSecret, cfg.Security.AccessTokenDuration),
		Hasher:      hasher,
		Permissions: permissions,
		Publisher:   deps.Bus,
		Logger:      lg,
	})

	userService := user.NewService(accounts, hasher, permissions, lg)
	userService.SetSessionRevoker(authService)

	renderer, err := notification.NewRenderer()
	if err != nil {
		return fmt.Errorf("load notification templates: %w", err)
	}

	registrationService := registration.NewService(registration.ServiceDeps{
		Requests:      registrationPostgres.NewRequestRepository(db),
		Accounts:      accounts,
		Hasher:        hasher,
		Roles:         permissions,
		Notifier:      newNotifier(cfg, renderer, lg),
		Publisher:     deps.Bus,
		Logger:        lg,
		NotifyTimeout: cfg.Mail.Timeout,
	})

	hospitalService := hospital.NewService(hospitalPostgres.NewHospitalRepository(db), lg)

	spec, err := swagger.Load(context.Background(), cfg.App.OpenAPIPath)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Observability.Metrics.Enabled {
		m = metrics.New()
		m.Subscribe(deps.Bus)
	}
	subscribeAuditLog(deps.Bus, lg)

	base := transport.NewBaseHandler(lg)
	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Auth:         auth.NewHandler(base, authService, cfg.Security.Cookie),
		RBAC:         authService.RBACAuthorization(),
		User:         user.NewHandler(base, userService),
		Registration: registration.NewHandler(base, registrationService),
		Hospital:     hospital.NewHandler(base, hospitalService),
		Notification: notification.NewHandler(base, renderer),
		Health:       rest.NewHealthHandler(deps.DB).WithRedis(deps.Redis),
		Metrics:      m,
		Spec:         spec,
	}, rest.RouterConfig{
		AllowAdminSignup: cfg.App.AllowAdminSignup,
		Development:      cfg.App.IsDevelopment(),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		MetricsPath:      cfg.Observability.Metrics.Path,
	}, lg)

	if cfg.App.AllowAdminSignup {
		lg.Warn("administrator signup endpoint is enabled")
	}
	return nil
}

// newNotifier logs mail in development and sends it over SMTP otherwise.
func newNotifier(cfg *internal.Config, renderer *notification.Renderer, lg *slog.Logger) notification.Notifier {
	if cfg.App.IsDevelopment() && cfg.Mail.SMTPHost == "" {
		return notification.NewLogNotifier(renderer, lg)
	}
	return notification.NewSMTPNotifier(cfg.Mail, renderer, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var rdb *goredis.Client
	if config.Redis.Enabled {
		rdb, err = initRedis(config.Redis)
		if err != nil {
			// the role cache is optional; the database stays authoritative
			lg.Warn("redis unavailable, role cache disabled", "error", err)
			rdb = nil
		}
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gdb,
		Redis:  rdb,
		Bus:    events.NewEventBus(lg),
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

func initRedis(cfg internal.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
