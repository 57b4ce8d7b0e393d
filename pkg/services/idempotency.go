package services

import (
	"context"
	"encoding/json"
	"time"

	"agrimarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const idempotencyPending = "pending"

// IdempotencyStore remembers the first response produced for a client key.
// Without a Redis client every call proceeds as a first attempt.
type IdempotencyStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, prefix string, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *IdempotencyStore) key(scope, key string) string {
	return "idempotency:" + s.prefix + ":" + scope + ":" + key
}

// Begin claims key. When a previous attempt already completed, its stored
// response is decoded into out and replayed is true. A key whose first attempt
// is still running yields ErrConflict.
func (s *IdempotencyStore) Begin(ctx context.Context, scope, key string, out any) (replayed bool, err error) {
	if s == nil || s.rdb == nil || key == "" {
		return false, nil
	}

	k := s.key(scope, key)
	claimed, err := s.rdb.SetNX(ctx, k, idempotencyPending, s.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "claim idempotency key")
	}
	if claimed {
		return false, nil
	}

	stored, err := s.rdb.Get(ctx, k).Result()
	if err == redis.Nil {
		// expired between SetNX and Get; treat as a fresh attempt
		return s.Begin(ctx, scope, key, out)
	}
	if err != nil {
		return false, errors.Wrap(err, "read idempotency key")
	}
	if stored == idempotencyPending {
		return false, classify(ErrConflict, errors.New("a request with this Idempotency-Key is still in progress"))
	}
	if err := json.Unmarshal([]byte(stored), out); err != nil {
		return false, errors.Wrap(err, "decode stored response")
	}
	return true, nil
}

// Complete stores the response for later replays.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key string, response any) error {
	if s == nil || s.rdb == nil || key == "" {
		return nil
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return errors.Wrap(err, "encode response")
	}
	return s.rdb.Set(ctx, s.key(scope, key), payload, s.ttl).Err()
}

// Abort releases the key so the client may retry after a failure.
func (s *IdempotencyStore) Abort(ctx context.Context, scope, key string) {
	if s == nil || s.rdb == nil || key == "" {
		return
	}
	util.LogError("failed to release idempotency key", s.rdb.Del(ctx, s.key(scope, key)).Err())
}
