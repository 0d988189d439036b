package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"smartPricing/business/bandit"
)

const defaultSweepLockKey = "smartpricing:sweep:lock"

// releaseScript deletes the key only if it still holds our token, so a
// replica whose lease expired cannot drop the lease of the next holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type SweepLock struct {
	client *redis.Client
	key    string
}

var _ bandit.SweepLock = (*SweepLock)(nil)

func NewSweepLock(client *redis.Client, key string) *SweepLock {
	if key == "" {
		key = defaultSweepLockKey
	}
	return &SweepLock{
		client: client,
		key:    key,
	}
}

// Acquire takes the lease with SET NX PX. acquired is false when another
// replica holds it.
func (l *SweepLock) Acquire(ctx context.Context, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release sweep lock: %w", err)
		}
		return nil
	}

	return release, true, nil
}
