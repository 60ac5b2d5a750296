package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"securejoin/internal/domain"
)

const redisKeyPrefix = "securejoin:mailbox:"

// RedisMailbox keeps each user's queue in a Redis list.
type RedisMailbox struct {
	rdb *redis.Client
}

// NewRedisMailbox returns a mailbox using rdb.
func NewRedisMailbox(rdb *redis.Client) *RedisMailbox {
	return &RedisMailbox{rdb: rdb}
}

func redisKey(user domain.Username) string { return redisKeyPrefix + user.String() }

// Push appends the JSON encoded env to user's list.
func (r *RedisMailbox) Push(ctx context.Context, user domain.Username, env domain.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.rdb.RPush(ctx, redisKey(user), b).Err()
}

// Peek reads the head of user's list.
func (r *RedisMailbox) Peek(ctx context.Context, user domain.Username, limit int) ([]domain.Envelope, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	vals, err := r.rdb.LRange(ctx, redisKey(user), 0, stop).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Envelope, 0, len(vals))
	for i, v := range vals {
		var env domain.Envelope
		if err := json.Unmarshal([]byte(v), &env); err != nil {
			return nil, fmt.Errorf("mailbox %s entry %d: %w", user, i, err)
		}
		out = append(out, env)
	}
	return out, nil
}

// Drop trims the first count entries from user's list.
func (r *RedisMailbox) Drop(ctx context.Context, user domain.Username, count int) error {
	if count <= 0 {
		return nil
	}
	return r.rdb.LTrim(ctx, redisKey(user), int64(count), -1).Err()
}

var _ Mailbox = (*RedisMailbox)(nil)
