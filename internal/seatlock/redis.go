package seatlock

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/bookingsaga/config"
	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock is the distributed seat mutex. At most one valid token exists per
// (flight, seat) key at any instant; every mutation is a single atomic
// command against redis so concurrent callers cannot interleave a check
// with a write.
type Lock interface {
	Acquire(ctx context.Context, flightID int64, seatNumber string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, flightID int64, seatNumber string, token string) (bool, error)
	Extend(ctx context.Context, flightID int64, seatNumber string, token string, ttl time.Duration) (bool, error)
}

// releaseScript deletes the key only while the caller still owns it. A plain
// DEL would let a holder whose lock expired delete the next holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(cfg config.RedisConfig) *RedisLock {
	return &RedisLock{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// NewRedisLockWithClient is used by callers that share a client.
func NewRedisLockWithClient(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func (l *RedisLock) Acquire(ctx context.Context, flightID int64, seatNumber string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, seatLockKey(flightID, seatNumber), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", domain.ErrLockStoreUnavailable, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLock) Release(ctx context.Context, flightID int64, seatNumber string, token string) (bool, error) {
	res, err := releaseScript.Run(ctx, l.client, []string{seatLockKey(flightID, seatNumber)}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrLockStoreUnavailable, err)
	}
	return res == 1, nil
}

func (l *RedisLock) Extend(ctx context.Context, flightID int64, seatNumber string, token string, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, l.client, []string{seatLockKey(flightID, seatNumber)}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrLockStoreUnavailable, err)
	}
	return res == 1, nil
}

func seatLockKey(flightID int64, seatNumber string) string {
	return fmt.Sprintf("seatlock:%d:%s", flightID, seatNumber)
}

var _ Lock = (*RedisLock)(nil)
