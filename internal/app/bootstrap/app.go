package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-concierge/internal/api/router"
	"github.com/wolfman30/salon-concierge/internal/audit"
	"github.com/wolfman30/salon-concierge/internal/bookings"
	appconfig "github.com/wolfman30/salon-concierge/internal/config"
	"github.com/wolfman30/salon-concierge/internal/customers"
	"github.com/wolfman30/salon-concierge/internal/dialog"
	"github.com/wolfman30/salon-concierge/internal/observability/metrics"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

// App is the wired chat core shared by the HTTP server and the Lambda.
type App struct {
	Engine       *dialog.Engine
	Sessions     session.Store
	Transcript   transcript.Store
	Bookings     *bookings.Service
	Customers    *customers.Service
	Metrics      *metrics.ChatMetrics
	HealthChecks map[string]router.HealthCheck

	closers []func()
}

// Close releases connections opened by BuildApp.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// BuildApp wires stores, persistence, notifications and the dialog engine
// from config. awsCfg is only needed for the dynamodb session backend and SES;
// reg may be nil to skip metrics.
func BuildApp(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, reg prometheus.Registerer, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	app := &App{HealthChecks: map[string]router.HealthCheck{}}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.SessionBackend == BackendRedis {
		redisClient = BuildRedisClient(ctx, cfg, logger, true)
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: session backend redis needs a reachable REDIS_ADDR")
		}
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
		app.HealthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	sessions, err := BuildSessionStore(ctx, cfg, redisClient, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	app.Sessions = sessions
	app.Transcript = BuildTranscriptStore(cfg, redisClient)

	var pool *pgxpool.Pool
	if cfg.StorageBackend == BackendPostgres || cfg.AuditEnabled {
		pool, err = BuildPostgresPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if pool != nil {
			app.closers = append(app.closers, pool.Close)
			app.HealthChecks["postgres"] = pool.Ping
		}
	}

	bookingRepo, customerRepo, err := BuildRepositories(cfg, pool)
	if err != nil {
		return nil, err
	}

	sender := BuildEmailSender(cfg, awsCfg, logger)
	app.Bookings = bookings.NewService(bookingRepo, BuildBookingNotifier(cfg, sender, logger), logger)
	app.closers = append(app.closers, app.Bookings.Wait)
	app.Customers = customers.NewService(customerRepo, logger)

	opts := []dialog.Option{
		dialog.WithLogger(logger),
		dialog.WithAnonymousSessionID(cfg.AnonymousSessionID),
		dialog.WithTranscript(app.Transcript),
	}
	if reg != nil && cfg.MetricsEnabled {
		app.Metrics = metrics.NewChatMetrics(reg)
		opts = append(opts, dialog.WithMetrics(app.Metrics))
	}
	if cfg.AuditEnabled {
		if pool == nil {
			logger.Warn("AUDIT_ENABLED but DATABASE_URL is empty; turn audit disabled")
		} else {
			db := OpenSQLDB(pool)
			app.closers = append(app.closers, func() { _ = db.Close() })
			opts = append(opts, dialog.WithTurnRecorder(audit.NewTurnLog(db)))
			logger.Info("chat turn audit enabled")
		}
	}

	app.Engine = dialog.NewEngine(app.Sessions, app.Bookings, app.Customers, opts...)
	logger.Info("chat engine ready",
		"session_backend", cfg.SessionBackend,
		"storage_backend", cfg.StorageBackend,
		"email_provider", cfg.EmailProvider,
		"redis", redisClient != nil,
	)
	ok = true
	return app, nil
}
