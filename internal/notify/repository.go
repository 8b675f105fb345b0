package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 50

type Repository interface {
	Push(ctx context.Context, n Notification) error
	List(ctx context.Context, userID uint, limit int64) ([]Notification, error)
}

// RedisRepository keeps each user's notifications in a capped-lifetime list, newest first.
type RedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRepository(rdb *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

func key(userID uint) string { return fmt.Sprintf("notif:%d", userID) }

func (r *RedisRepository) Push(ctx context.Context, n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, key(n.UserID), b)
	pipe.Expire(ctx, key(n.UserID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, userID uint, limit int64) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	vals, err := r.rdb.LRange(ctx, key(userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]Notification, 0, len(vals))
	for _, v := range vals {
		var n Notification
		if json.Unmarshal([]byte(v), &n) == nil {
			out = append(out, n)
		}
	}
	return out, nil
}
