package sync

import (
	"context"
	"time"

	"callboard/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const (
	lockKey = "callboard:sync:run"

	// lockTTL bounds how long a crashed run can block the next one.
	lockTTL = 10 * time.Minute
)

// RedisLock is the production Locker: a slot counter with limit 1, TTL-backed
// so a crashed process cannot wedge syncing permanently.
type RedisLock struct {
	rdb *redis.Client
}

func NewRedisLock(rdb *redis.Client) *RedisLock {
	return &RedisLock{rdb: rdb}
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	return utils.AcquireSlot(ctx, l.rdb, lockKey, 1, lockTTL)
}

func (l *RedisLock) Release(ctx context.Context) error {
	return utils.ReleaseSlot(ctx, l.rdb, lockKey)
}
