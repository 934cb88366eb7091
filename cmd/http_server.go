package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/property-management/api"
	"github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/auth"
	authPostgres "github.com/frahmantamala/property-management/internal/auth/postgres"
	"github.com/frahmantamala/property-management/internal/lock"
	"github.com/frahmantamala/property-management/internal/metrics"
	"github.com/frahmantamala/property-management/internal/payment"
	"github.com/frahmantamala/property-management/internal/stats"
	statsPostgres "github.com/frahmantamala/property-management/internal/stats/postgres"
	"github.com/frahmantamala/property-management/internal/transport"
	"github.com/frahmantamala/property-management/internal/transport/middleware"
	"github.com/frahmantamala/property-management/internal/transport/rest"
	"github.com/frahmantamala/property-management/internal/user"
	"github.com/frahmantamala/property-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
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
	Config        *internal.Config
	DB            *Databases
	Redis         *redis.Client
	Router        *chi.Mux
	Notifications *notificationPipeline
	Logger        *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
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
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.Notifications.Close(ctx, deps.Logger)
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			deps.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	authService := auth.NewService(
		authPostgres.NewRepository(deps.DB.Gorm),
		auth.NewJWTTokenGenerator(
			cfg.Security.AccessTokenSecret,
			cfg.Security.RefreshTokenSecret,
			cfg.Security.AccessTokenDuration,
			cfg.Security.RefreshTokenDuration,
		),
		lg,
	)

	components := newPaymentComponents(cfg, deps.DB, deps.Notifications.Notifier, lg)
	statsService := stats.NewService(
		statsPostgres.NewStatsRepository(deps.DB.SQLX),
		components.Properties,
		cfg.Stats.Months,
		lg,
	)

	opts := rest.RouterOptions{
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPISpec:    api.OpenAPISpec,
	}
	if deps.Redis != nil {
		opts.Redis = deps.Redis
	}
	if cfg.Observability.Metrics.Enabled {
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.MetricsHandler = metrics.Handler()
	}
	if cfg.Server.ValidateRequests {
		doc, err := middleware.LoadOpenAPI(context.Background(), api.OpenAPISpec)
		if err != nil {
			return err
		}
		validator, err := middleware.OpenAPIValidator(doc, transport.NewBaseHandler(lg))
		if err != nil {
			return err
		}
		opts.RequestValidator = validator
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.SQLX.DB, rest.Handlers{
		Auth:    auth.NewHandler(authService, lg),
		User:    user.NewHandler(components.Users, lg),
		Payment: payment.NewHandler(components.Service, lg),
		Stats:   stats.NewHandler(statsService, lg),
	}, opts, lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	dbs, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var redisClient *redis.Client
	if config.Redis.Enabled() {
		redisClient, err = lock.NewClient(context.Background(), config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		if err != nil {
			lg.Warn("redis unavailable, health check will skip it", "error", err)
			redisClient = nil
		}
	}

	return &Dependencies{
		Config:        config,
		DB:            dbs,
		Redis:         redisClient,
		Router:        chi.NewRouter(),
		Notifications: newNotificationPipeline(config.Notification, lg),
		Logger:        lg,
	}, nil
}
