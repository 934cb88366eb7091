package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/property-management/internal"
	"github.com/frahmantamala/property-management/internal/core/events"
	"github.com/frahmantamala/property-management/internal/lock"
	"github.com/frahmantamala/property-management/internal/notification"
	"github.com/frahmantamala/property-management/internal/payment"
	paymentPostgres "github.com/frahmantamala/property-management/internal/payment/postgres"
	"github.com/frahmantamala/property-management/internal/property"
	propertyPostgres "github.com/frahmantamala/property-management/internal/property/postgres"
	"github.com/frahmantamala/property-management/internal/receipt"
	"github.com/frahmantamala/property-management/internal/report"
	"github.com/frahmantamala/property-management/internal/tenant"
	tenantPostgres "github.com/frahmantamala/property-management/internal/tenant/postgres"
	"github.com/frahmantamala/property-management/internal/user"
	userPostgres "github.com/frahmantamala/property-management/internal/user/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Databases shares one pgx pool between gorm (CRUD) and sqlx (reporting
// queries).
type Databases struct {
	SQLX *sqlx.DB
	Gorm *gorm.DB
}

func (d *Databases) Close() error {
	return d.SQLX.Close()
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*Databases, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
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

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Databases{SQLX: dbConn, Gorm: gormDB}, nil
}

func newMailer(cfg internal.NotificationConfig, logger *slog.Logger) notification.Mailer {
	if cfg.Driver == "smtp" {
		return notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromAddress,
		})
	}
	return notification.NewLogMailer(logger)
}

// notificationPipeline wires bus -> event handler -> dispatcher -> mailer.
type notificationPipeline struct {
	Bus        *events.EventBus
	Dispatcher *notification.Dispatcher
	Notifier   *notification.Notifier
}

func newNotificationPipeline(cfg internal.NotificationConfig, logger *slog.Logger) *notificationPipeline {
	bus := events.NewEventBus(logger)
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		MaxWorkers:   cfg.MaxWorkers,
		JobQueueSize: cfg.JobQueueSize,
	}, newMailer(cfg, logger), logger)
	dispatcher.Start()

	notification.NewEventHandler(dispatcher, logger).RegisterEventHandlers(bus)

	return &notificationPipeline{
		Bus:        bus,
		Dispatcher: dispatcher,
		Notifier:   notification.NewNotifier(bus, logger),
	}
}

// Close waits for in-flight handlers, lets the queue drain and stops the workers.
func (p *notificationPipeline) Close(ctx context.Context, logger *slog.Logger) {
	if err := p.Bus.Wait(ctx); err != nil {
		logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := p.Dispatcher.Drain(ctx); err != nil {
		logger.Warn("notification queue not drained", "error", err)
	}
	p.Dispatcher.Shutdown()
}

type paymentComponents struct {
	Service    *payment.Service
	Properties *property.Resolver
	Users      *user.Service
}

func newPaymentComponents(cfg *internal.Config, dbs *Databases, notifier payment.Notifier, logger *slog.Logger) *paymentComponents {
	properties := property.NewResolver(propertyPostgres.NewPropertyRepository(dbs.Gorm), logger)
	tenants := tenant.NewResolver(tenantPostgres.NewTenantRepository(dbs.Gorm), logger)
	users := user.NewService(userPostgres.NewUserRepository(dbs.Gorm), logger)

	service := payment.NewService(payment.Deps{
		Repository: paymentPostgres.NewPaymentRepository(dbs.Gorm),
		Properties: properties,
		Tenants:    tenants,
		Notifier:   notifier,
		Receipts:   receipt.NewRenderer(cfg.Server.BaseURL),
		Owners:     users,
		Exporter:   report.NewPaymentExporter(),
		Logger:     logger,
	})

	return &paymentComponents{Service: service, Properties: properties, Users: users}
}

// newLocker returns a Redis lock when Redis is configured, a process local
// one otherwise. The client is nil in the latter case.
func newLocker(ctx context.Context, cfg internal.RedisConfig, logger *slog.Logger) (payment.Locker, *redis.Client, error) {
	if !cfg.Enabled() {
		logger.Warn("redis not configured, late sweep lock is process local")
		return lock.NewLocalLocker(), nil, nil
	}

	client, err := lock.NewClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedisLocker(client), client, nil
}
