package bootstrap

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/salon-concierge/internal/config"
	"github.com/wolfman30/salon-concierge/internal/dialog"
	"github.com/wolfman30/salon-concierge/internal/notify"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func memoryConfig() *appconfig.Config {
	return &appconfig.Config{
		AnonymousSessionID:    "anon",
		SessionBackend:        BackendMemory,
		SessionTTL:            time.Hour,
		StorageBackend:        BackendMemory,
		TranscriptMaxMessages: 20,
		MetricsEnabled:        true,
		EmailProvider:         "none",
	}
}

func TestBuildAppRequiresConfig(t *testing.T) {
	_, err := BuildApp(context.Background(), nil, nil, nil, nil)
	require.Error(t, err)
}

func TestBuildAppInMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := BuildApp(ctx, memoryConfig(), nil, prometheus.NewRegistry(), quietLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &session.MemoryStore{}, app.Sessions)
	assert.IsType(t, &transcript.MemoryStore{}, app.Transcript)
	assert.NotNil(t, app.Metrics)
	assert.Empty(t, app.HealthChecks)

	res := app.Engine.HandleMessage(ctx, "", "Book haircut on 2025-12-20 at 15:00 for Rahul 9876543210 male 28")
	require.True(t, res.OK)
	assert.Equal(t, "anon", res.SessionID)
	assert.Equal(t, dialog.IntentBooking, res.Intent)

	b, err := app.Bookings.Get(ctx, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "Rahul", b.Name)
}

func TestBuildAppRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.SessionBackend = BackendRedis
	cfg.RedisAddr = mr.Addr()
	ctx := context.Background()

	app, err := BuildApp(ctx, cfg, nil, nil, quietLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &session.RedisStore{}, app.Sessions)
	assert.IsType(t, &transcript.RedisStore{}, app.Transcript)
	assert.Nil(t, app.Metrics)
	require.Contains(t, app.HealthChecks, "redis")
	assert.NoError(t, app.HealthChecks["redis"](ctx))

	res := app.Engine.HandleMessage(ctx, "r1", "Book haircut on 2025-12-20 at 15:00 for Rahul 9876543210")
	require.True(t, res.OK)
	assert.True(t, mr.Exists("salon:session:r1"))
}

func TestBuildAppRejectsUnusableBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*appconfig.Config)
	}{
		{"redis unreachable", func(c *appconfig.Config) {
			c.SessionBackend = BackendRedis
			c.RedisAddr = "127.0.0.1:1"
		}},
		{"dynamodb without aws", func(c *appconfig.Config) { c.SessionBackend = BackendDynamoDB }},
		{"unknown session backend", func(c *appconfig.Config) { c.SessionBackend = "etcd" }},
		{"postgres without url", func(c *appconfig.Config) { c.StorageBackend = BackendPostgres }},
		{"unknown storage backend", func(c *appconfig.Config) { c.StorageBackend = "mongo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(cfg)
			_, err := BuildApp(context.Background(), cfg, nil, nil, quietLogger())
			assert.Error(t, err)
		})
	}
}

func TestBuildSessionStoreDynamo(t *testing.T) {
	cfg := memoryConfig()
	cfg.SessionBackend = BackendDynamoDB
	cfg.SessionTable = "salon_chat_sessions"
	awsCfg := aws.Config{Region: "us-east-1"}

	store, err := BuildSessionStore(context.Background(), cfg, nil, &awsCfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &session.DynamoStore{}, store)
}

func TestBuildEmailSender(t *testing.T) {
	awsCfg := aws.Config{Region: "us-east-1"}
	tests := []struct {
		name     string
		provider string
		apiKey   string
		aws      *aws.Config
		want     any
	}{
		{"disabled", "none", "", nil, nil},
		{"sendgrid", "sendgrid", "SG.key", nil, &notify.SendGridSender{}},
		{"sendgrid without key", "sendgrid", "", nil, nil},
		{"ses", "ses", "", &awsCfg, &notify.SESSender{}},
		{"ses without aws", "ses", "", nil, nil},
		{"stub", "stub", "", nil, &notify.StubEmailSender{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			cfg.EmailProvider = tt.provider
			cfg.SendGridAPIKey = tt.apiKey
			got := BuildEmailSender(cfg, tt.aws, quietLogger())
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestBuildBookingNotifierReturnsNilInterface(t *testing.T) {
	cfg := memoryConfig()

	n := BuildBookingNotifier(cfg, notify.NewStubEmailSender(quietLogger()), quietLogger())
	assert.True(t, n == nil, "expected untyped nil without a salon address")

	cfg.SalonNotifyEmail = "desk@salon.example"
	n = BuildBookingNotifier(cfg, notify.NewStubEmailSender(quietLogger()), quietLogger())
	assert.IsType(t, &notify.BookingNotifier{}, n)
}

func TestBuildRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, quietLogger(), true)
	require.NotNil(t, client)
	defer client.Close()

	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, quietLogger(), true))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: "127.0.0.1:1"}, quietLogger(), true))
}

func TestBuildPostgresPoolSkipsWithoutURL(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), &appconfig.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.Nil(t, OpenSQLDB(nil))

	_, err = BuildPostgresPool(context.Background(), &appconfig.Config{DatabaseURL: "://bad"}, quietLogger())
	assert.Error(t, err)
}
