package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/activity"
	activityMemory "github.com/commercemobile/storefront-admin/internal/activity/memory"
	activityPostgres "github.com/commercemobile/storefront-admin/internal/activity/postgres"
	"github.com/commercemobile/storefront-admin/internal/adminuser"
	adminuserMemory "github.com/commercemobile/storefront-admin/internal/adminuser/memory"
	adminuserPostgres "github.com/commercemobile/storefront-admin/internal/adminuser/postgres"
	"github.com/commercemobile/storefront-admin/internal/auth"
	"github.com/commercemobile/storefront-admin/internal/core/events"
	"github.com/commercemobile/storefront-admin/internal/group"
	groupMemory "github.com/commercemobile/storefront-admin/internal/group/memory"
	groupPostgres "github.com/commercemobile/storefront-admin/internal/group/postgres"
	"github.com/commercemobile/storefront-admin/internal/ipaccess"
	"github.com/commercemobile/storefront-admin/internal/passwordpolicy"
	policyMemory "github.com/commercemobile/storefront-admin/internal/passwordpolicy/memory"
	policyPostgres "github.com/commercemobile/storefront-admin/internal/passwordpolicy/postgres"
	"github.com/commercemobile/storefront-admin/internal/permission"
	"github.com/commercemobile/storefront-admin/internal/session"
	sessionMemory "github.com/commercemobile/storefront-admin/internal/session/memory"
	sessionPostgres "github.com/commercemobile/storefront-admin/internal/session/postgres"
	"github.com/commercemobile/storefront-admin/internal/transport/rest"
	"github.com/commercemobile/storefront-admin/internal/transport/swagger"
	"github.com/commercemobile/storefront-admin/pkg/logger"

	adminuserDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/adminuser"
	activitylogDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/activitylog"
	groupDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/group"
	sessionDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/session"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle admin API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type repositories struct {
	users    adminuser.Repository
	sessions session.Repository
	activity activity.Repository
	groups   group.Repository
	history  passwordpolicy.HistoryStore
}

type Dependencies struct {
	Config *internal.Config
	DB     *sql.DB
	Router *chi.Mux
	Logger *slog.Logger

	Users          *adminuser.Service
	Groups         *group.Service
	Sessions       *session.Service
	Activity       *activity.Service
	PasswordPolicy *passwordpolicy.Service
	IPAccess       *ipaccess.Service
	Auth           *auth.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

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
		if deps.DB != nil {
			if err := deps.DB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	if err := swagger.ValidateSpec("./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi spec validation failed", "error", err)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, rest.Handlers{
		Auth:           auth.NewHandler(deps.Auth, deps.Config.Security.HeartbeatInterval),
		AuthService:    deps.Auth,
		Users:          adminuser.NewHandler(deps.Users),
		Groups:         group.NewHandler(deps.Groups),
		Sessions:       session.NewHandler(deps.Sessions),
		Activity:       activity.NewHandler(deps.Activity),
		PasswordPolicy: passwordpolicy.NewHandler(deps.PasswordPolicy),
		IPAccess:       ipaccess.NewHandler(deps.IPAccess),
	}, deps.Logger, strings.Split(deps.Config.Server.AllowedOrigins, ","))
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	repos, sqlDB, err := initRepositories(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bus := events.NewEventBus(lg)

	activitySvc := activity.NewService(repos.activity, lg)
	activitySvc.RegisterEventHandlers(bus)

	policySvc := passwordpolicy.NewService(passwordpolicy.Policy{
		MinLength:           config.Policy.MinLength,
		RequireUppercase:    config.Policy.RequireUppercase,
		RequireLowercase:    config.Policy.RequireLowercase,
		RequireNumbers:      config.Policy.RequireNumbers,
		RequireSpecialChars: config.Policy.RequireSpecialChars,
		ExpiryDays:          config.Policy.ExpiryDays,
		PreventReuse:        config.Policy.PreventReuse,
	}, repos.history, bus, lg)

	userSvc := adminuser.NewService(repos.users, policySvc, bus, lg, config.Security.BCryptCost)
	groupSvc := group.NewService(repos.groups, bus, lg)
	sessionSvc := session.NewService(repos.sessions, bus, lg, config.Security.SessionDuration)
	ipSvc := ipaccess.NewService(bus, lg)

	resolver := permission.NewResolver(groupSvc)
	tokens := auth.NewTokenManager(config.Security.SessionTokenSecret)
	authSvc := auth.NewService(
		userSvc,
		sessionSvc,
		resolver,
		tokens,
		auth.NewMockTwoFactorVerifier(),
		ipSvc,
		bus,
		lg,
		config.Security.TwoFactorChallengeTTL,
	)

	if config.Database.Driver != internal.DriverPostgres {
		// Ephemeral storage starts empty; seed the default accounts so the
		// panel is usable immediately.
		if err := seedDefaults(userSvc, groupSvc, lg); err != nil {
			return nil, fmt.Errorf("failed to seed defaults: %w", err)
		}
	}

	return &Dependencies{
		Config:         config,
		DB:             sqlDB,
		Router:         chi.NewRouter(),
		Logger:         lg,
		Users:          userSvc,
		Groups:         groupSvc,
		Sessions:       sessionSvc,
		Activity:       activitySvc,
		PasswordPolicy: policySvc,
		IPAccess:       ipSvc,
		Auth:           authSvc,
	}, nil
}

// initRepositories builds the repository set for the configured driver. The
// sql.DB return is nil in pure memory mode.
func initRepositories(cfg internal.DatabaseConfig, lg *slog.Logger) (*repositories, *sql.DB, error) {
	switch cfg.Driver {
	case internal.DriverMemory:
		return &repositories{
			users:    adminuserMemory.NewRepository(),
			sessions: sessionMemory.NewRepository(),
			activity: activityMemory.NewActivityRepository(),
			groups:   groupMemory.NewRepository(),
			history:  policyMemory.NewHistoryStore(),
		}, nil, nil

	case internal.DriverSQLite:
		db, err := gorm.Open(gormSqlite.Open(cfg.Source), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := autoMigrate(db); err != nil {
			return nil, nil, err
		}
		return gormRepositories(db, cfg)

	case internal.DriverPostgres:
		sqlxDB, err := sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("open gorm over pgx: %w", err)
		}
		return gormRepositories(db, cfg)

	default:
		return nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

func gormRepositories(db *gorm.DB, cfg internal.DatabaseConfig) (*repositories, *sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}

	return &repositories{
		users:    adminuserPostgres.NewAdminUserRepository(db),
		sessions: sessionPostgres.NewSessionRepository(db),
		activity: activityPostgres.NewActivityRepository(db),
		groups:   groupPostgres.NewGroupRepository(db),
		history:  policyPostgres.NewHistoryStore(db),
	}, sqlDB, nil
}

func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&adminuserDatamodel.AdminUser{},
		&adminuserDatamodel.PasswordHistory{},
		&sessionDatamodel.Session{},
		&activitylogDatamodel.ActivityLog{},
		&groupDatamodel.UserGroup{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
