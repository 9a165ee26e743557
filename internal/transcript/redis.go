package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "salon:transcript:"

// RedisStore keeps each transcript as a capped Redis list with a TTL.
type RedisStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns nil when client is nil.
func NewRedisStore(client *redis.Client, ttl time.Duration, maxMessages int) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		redis:       client,
		tracer:      otel.Tracer("salon.internal.transcript"),
		ttl:         ttl,
		maxMessages: int64(maxMessages),
	}
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, msgs ...Message) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if len(msgs) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "transcript.append")
	defer span.End()

	now := time.Now()
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(stamp(m, now))
		if err != nil {
			return fmt.Errorf("transcript: marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := keyPrefix + sessionID
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: append: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, sessionID string, limit int64) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	ctx, span := s.tracer.Start(ctx, "transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, keyPrefix+sessionID, start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return nil, fmt.Errorf("transcript: list: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if err := s.redis.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("transcript: delete: %w", err)
	}
	return nil
}
