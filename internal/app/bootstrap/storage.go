package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-concierge/internal/bookings"
	appconfig "github.com/wolfman30/salon-concierge/internal/config"
	"github.com/wolfman30/salon-concierge/internal/customers"
	"github.com/wolfman30/salon-concierge/internal/session"
	"github.com/wolfman30/salon-concierge/internal/transcript"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

// Session and storage backend names accepted in configuration.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

// BuildSessionStore selects the session backend named by SESSION_BACKEND.
// The memory store starts a janitor that runs until ctx is done.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client, awsCfg *aws.Config, logger *logging.Logger) (session.Store, error) {
	switch cfg.SessionBackend {
	case "", BackendMemory:
		store := session.NewMemoryStore(cfg.SessionTTL, logger)
		if cfg.SessionTTL > 0 {
			store.StartJanitor(ctx, janitorInterval(cfg))
		}
		return store, nil
	case BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: session backend redis needs a reachable REDIS_ADDR")
		}
		return session.NewRedisStore(redisClient, cfg.SessionTTL, logger), nil
	case BackendDynamoDB:
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: session backend dynamodb needs an AWS config")
		}
		return session.NewDynamoStore(dynamodb.NewFromConfig(*awsCfg), cfg.SessionTable, cfg.SessionTTL, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown session backend %q", cfg.SessionBackend)
	}
}

func janitorInterval(cfg *appconfig.Config) time.Duration {
	interval := cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// BuildTranscriptStore keeps transcripts next to Redis sessions when a
// client is available, else in memory.
func BuildTranscriptStore(cfg *appconfig.Config, redisClient *redis.Client) transcript.Store {
	if redisClient != nil {
		return transcript.NewRedisStore(redisClient, cfg.SessionTTL, cfg.TranscriptMaxMessages)
	}
	return transcript.NewMemoryStore(cfg.TranscriptMaxMessages)
}

// BuildRepositories selects booking and customer persistence by STORAGE_BACKEND.
func BuildRepositories(cfg *appconfig.Config, pool *pgxpool.Pool) (bookings.Repository, customers.Repository, error) {
	switch cfg.StorageBackend {
	case "", BackendMemory:
		return bookings.NewInMemoryRepository(), customers.NewInMemoryRepository(), nil
	case BackendPostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("bootstrap: storage backend postgres needs DATABASE_URL")
		}
		return bookings.NewPostgresRepository(pool), customers.NewPostgresRepository(pool), nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown storage backend %q", cfg.StorageBackend)
	}
}
