package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// GroupLocker implements usecase.GroupLocker with a Redis SETNX lock
// per group. The TTL frees the lock if a holder dies mid-run.
type GroupLocker struct {
	client *redis.Client
	prefix string
}

// NewGroupLocker creates a new GroupLocker.
func NewGroupLocker(client *redis.Client) *GroupLocker {
	return &GroupLocker{
		client: client,
		prefix: "lock:group:",
	}
}

// Acquire attempts to take the lock for a group. Returns false when
// another holder already has it.
func (l *GroupLocker) Acquire(ctx context.Context, groupID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+groupID, "locked", ttl).Result()
}

// Release frees the lock for a group.
func (l *GroupLocker) Release(ctx context.Context, groupID string) error {
	return l.client.Del(ctx, l.prefix+groupID).Err()
}
