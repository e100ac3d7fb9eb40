package ports

import (
	"context"
	"strconv"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker queues writers that share one graph store from several processes.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx is done. The holder loses the lock
	// after ttl if it never calls the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// CompileLockKey is the key compilations of one owner are serialized on.
// Template names are unique per owner, so two compilations for the same owner
// must not interleave.
func CompileLockKey(ownerID int64) string {
	return "compile:" + strconv.FormatInt(ownerID, 10)
}
