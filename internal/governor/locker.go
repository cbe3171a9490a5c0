package governor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"guardrail/internal/config"
)

var ErrLockTimeout = errors.New("governor: timed out waiting for state lock")

// Locker serialises governor writers. Unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// LocalLocker is an in-process, context-aware mutex.
type LocalLocker struct {
	ch chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{ch: make(chan struct{}, 1)}
}

func (l *LocalLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RedisClient is the subset of go-redis used by RedisLocker.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// RedisLocker shares the writer lock between processes. The TTL bounds how
// long a crashed holder can block others.
type RedisLocker struct {
	Client     RedisClient
	Key        string
	TTL        time.Duration
	Wait       time.Duration
	RetryEvery time.Duration
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	if l == nil || l.Client == nil {
		return nil, errors.New("governor: redis locker not configured")
	}
	key := strings.TrimSpace(l.Key)
	if key == "" {
		key = "guardrail:governor"
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	wait := l.Wait
	if wait <= 0 {
		wait = 5 * time.Second
	}
	retry := l.RetryEvery
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}

	token := uuid.NewString()
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(retry)
	defer ticker.Stop()
	for {
		ok, err := l.Client.SetNX(waitCtx, key, token, ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer releaseCancel()
				_ = l.Client.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

// NewLocker builds the locker selected by cfg.Lock.
func NewLocker(cfg config.GovernorConfig, redisCfg config.RedisConfig) (Locker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Lock)) {
	case "", "local":
		return NewLocalLocker(), nil
	case "redis":
		if strings.TrimSpace(redisCfg.Addr) == "" {
			return nil, errors.New("governor.lock=redis requires redis.addr")
		}
		return &RedisLocker{
			Client: redis.NewClient(&redis.Options{
				Addr:     redisCfg.Addr,
				Password: redisCfg.Password,
				DB:       redisCfg.DB,
			}),
			Key:  cfg.LockKey,
			TTL:  cfg.LockTTL,
			Wait: cfg.LockWait,
		}, nil
	default:
		return nil, errors.New("unknown governor.lock: " + cfg.Lock)
	}
}
