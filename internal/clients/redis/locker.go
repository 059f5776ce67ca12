package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/openverity/verigraph-backend/internal/platform/logger"
)

const (
	lockTTL           = 15 * time.Second
	lockRetryInterval = 50 * time.Millisecond
)

// RecomputeLocker serializes score recomputation per target across
// processes with a SET NX lease. The in-process keyed mutex still guards
// same-process callers; this covers multiple replicas sharing one store.
type RecomputeLocker struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRecomputeLocker(rdb *goredis.Client, log *logger.Logger) (*RecomputeLocker, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RecomputeLocker{log: log.With("service", "RecomputeLocker"), rdb: rdb}, nil
}

// Acquire polls until the lease is taken or ctx ends. The returned release
// func deletes the lease; an expired lease is simply gone, which is safe
// because the store transaction is the real consistency guard.
func (l *RecomputeLocker) Acquire(ctx context.Context, key string) (func(), error) {
	leaseKey := "verigraph:recompute:" + key
	for {
		ok, err := l.rdb.SetNX(ctx, leaseKey, 1, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
	return func() {
		delCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.rdb.Del(delCtx, leaseKey).Err(); err != nil {
			l.log.Warn("recompute lock release failed", "key", key, "error", err)
		}
	}, nil
}
