package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/salon-concierge/pkg/logging"
)

const (
	defaultLockTTL   = 10 * time.Second
	lockPollInterval = 25 * time.Millisecond
)

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps sessions as JSON strings with a TTL, and locks with SETNX.
type RedisStore struct {
	redis   *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	tracer  trace.Tracer
	logger  *logging.Logger
	now     func() time.Time
}

var (
	_ Store  = (*RedisStore)(nil)
	_ Locker = (*RedisStore)(nil)
)

// NewRedisStore builds a store on client. A zero ttl keeps sessions forever.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{
		redis:   client,
		ttl:     ttl,
		lockTTL: defaultLockTTL,
		tracer:  otel.Tracer("salon.internal.session.redis"),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	if id == "" {
		return State{}, ErrEmptyID
	}
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		span.RecordError(err)
		return State{}, fmt.Errorf("session: failed to load %s: %w", id, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return State{}, fmt.Errorf("session: failed to decode %s: %w", id, err)
	}
	return state.normalized(), nil
}

func (s *RedisStore) Put(ctx context.Context, id string, state State) error {
	if id == "" {
		return ErrEmptyID
	}
	ctx, span := s.tracer.Start(ctx, "session.put")
	defer span.End()

	state = state.normalized()
	state.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to encode %s: %w", id, err)
	}
	if err := s.redis.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session: failed to delete %s: %w", id, err)
	}
	return nil
}

// Lock polls SETNX until the lock is taken or ctx is done. The lock expires
// after lockTTL so a crashed holder cannot wedge the session.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	key := lockKey(id)
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()
	for {
		ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("session: failed to lock %s: %w", id, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("session: lock %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.release(ctx, id, key, token) })
	}, nil
}

// release runs even when the turn's context was cancelled.
func (s *RedisStore) release(ctx context.Context, id, key, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := releaseScript.Run(releaseCtx, s.redis, []string{key}, token).Err(); err != nil {
		s.logger.Warn("failed to release session lock", "session_id", id, "error", err)
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("salon:session:%s", id)
}

func lockKey(id string) string {
	return fmt.Sprintf("salon:session:%s:lock", id)
}
