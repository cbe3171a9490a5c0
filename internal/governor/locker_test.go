package governor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardrail/internal/config"
)

type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: map[string]string{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[keys[0]] == args[0].(string) {
		delete(f.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	client := newFakeRedis()
	a := &RedisLocker{Client: client, Key: "k", Wait: 30 * time.Millisecond, RetryEvery: 5 * time.Millisecond}
	b := &RedisLocker{Client: client, Key: "k", Wait: 30 * time.Millisecond, RetryEvery: 5 * time.Millisecond}

	unlock, err := a.Lock(context.Background())
	require.NoError(t, err)

	_, err = b.Lock(context.Background())
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlockB, err := b.Lock(context.Background())
	require.NoError(t, err)
	unlockB()
	assert.Empty(t, client.keys)
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	client := newFakeRedis()
	l := &RedisLocker{Client: client, Key: "k"}
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	// simulate expiry and takeover by another holder
	client.mu.Lock()
	client.keys["k"] = "someone-else"
	client.mu.Unlock()

	unlock()
	assert.Equal(t, "someone-else", client.keys["k"])
}

func TestNewLocker(t *testing.T) {
	l, err := NewLocker(config.GovernorConfig{}, config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &LocalLocker{}, l)

	_, err = NewLocker(config.GovernorConfig{Lock: "redis"}, config.RedisConfig{})
	assert.Error(t, err)

	l, err = NewLocker(config.GovernorConfig{Lock: "redis", LockKey: "x"}, config.RedisConfig{Addr: "127.0.0.1:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisLocker{}, l)

	_, err = NewLocker(config.GovernorConfig{Lock: "zookeeper"}, config.RedisConfig{})
	assert.Error(t, err)
}
