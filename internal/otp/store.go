package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MutateFunc inspects and optionally updates a challenge inside an atomic
// read-modify-write. It returns whether the mutation must be persisted and the
// verification outcome to surface to the caller.
type MutateFunc func(ch *Challenge) (persist bool, result error)

// Store persists challenges keyed by contact identifier. Upsert replaces any
// existing record for the contact in one step; Mutate serializes concurrent
// verify attempts against the same contact.
type Store interface {
	Upsert(ctx context.Context, ch *Challenge) error
	Get(ctx context.Context, contact string) (*Challenge, error)
	Mutate(ctx context.Context, contact string, fn MutateFunc) error
}

const redisKeyPrefix = "otp:challenge:"

// Records outlive the verification window so a late verify reports Expired
// rather than NotFound; Redis reclaims them a day later.
const redisRecordTTL = 24 * time.Hour

// RedisStore keeps one JSON challenge per contact in Redis. SET gives the
// atomic upsert; WATCH transactions serialize verify mutations.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(contact string) string { return redisKeyPrefix + contact }

func (s *RedisStore) Upsert(ctx context.Context, ch *Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("otp: marshal challenge: %w", err)
	}
	if err := s.client.Set(ctx, s.key(ch.Contact), data, redisRecordTTL).Err(); err != nil {
		return fmt.Errorf("otp: upsert challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, contact string) (*Challenge, error) {
	data, err := s.client.Get(ctx, s.key(contact)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("otp: get challenge: %w", err)
	}
	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("otp: unmarshal challenge: %w", err)
	}
	return &ch, nil
}

func (s *RedisStore) Mutate(ctx context.Context, contact string, fn MutateFunc) error {
	key := s.key(contact)
	var result error

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			result = ErrNotFound
			return nil
		}
		if err != nil {
			return err
		}
		var ch Challenge
		if err := json.Unmarshal(data, &ch); err != nil {
			return err
		}

		persist, res := fn(&ch)
		result = res
		if !persist {
			return nil
		}

		updated, err := json.Marshal(&ch)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redisRecordTTL)
			return nil
		})
		return err
	}

	// Retry on WATCH conflicts from concurrent verify attempts.
	for i := 0; i < 5; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("otp: mutate challenge: %w", err)
		}
		return result
	}
	return fmt.Errorf("otp: mutate challenge: too many conflicts for %s", contact)
}
