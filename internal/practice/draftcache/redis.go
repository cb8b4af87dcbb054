package draftcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

const keyPrefix = "practice:draft:"

type RedisStore struct {
	log *logger.Logger
	rdb goredis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(log *logger.Logger, rdb goredis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{
		log: log.With("store", "RedisDraftCache"),
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

func key(userID string) string { return keyPrefix + userID }

func (s *RedisStore) Load(ctx context.Context, userID string) (*practice.CachedDraft, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("redis draft cache not initialized")
	}
	raw, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var d practice.CachedDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.Warn("Discarding undecodable cached draft", "user_id", userID, "error", err)
		s.discard(ctx, userID)
		return nil, nil
	}
	if d.UserID != userID {
		s.log.Warn("Discarding cached draft owned by another user", "user_id", userID)
		s.discard(ctx, userID)
		return nil, nil
	}
	if d.Expired(s.now(), s.ttl) {
		s.discard(ctx, userID)
		return nil, nil
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, d practice.CachedDraft) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis draft cache not initialized")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key(d.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis draft cache not initialized")
	}
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *RedisStore) discard(ctx context.Context, userID string) {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		s.log.Warn("Failed to discard cached draft", "user_id", userID, "error", err)
	}
}
