package locker

import (
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const lockExpiry = 2 * time.Minute

// Redis is a distributed drain guard for deployments where several
// drainer replicas share one queue store.
type Redis struct {
	mutex *redsync.Mutex
}

func NewRedis(client *redis.Client, name string) *Redis {
	pool := goredis.NewPool(client)
	rs := redsync.New(pool)

	mutex := rs.NewMutex(
		"drain-lock:"+name,
		redsync.WithExpiry(lockExpiry),
		redsync.WithTries(1),
	)

	return &Redis{mutex: mutex}
}

func (r *Redis) TryLock() (bool, error) {
	if err := r.mutex.TryLock(); err != nil {
		if errors.Is(err, redsync.ErrFailed) {
			return false, nil
		}
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Redis) Unlock() (bool, error) {
	return r.mutex.Unlock()
}
