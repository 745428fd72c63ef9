package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisChangePrefix = "flashit:changed:"

type redisCmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type redisSubscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisSlots stores each cart under its key and publishes the key on a
// change channel after every write so other processes can reload.
type RedisSlots struct {
	cmd redisCmdable
	sub redisSubscriber
	ttl time.Duration
}

// NewRedisSlots uses client for both commands and subscriptions. A zero ttl
// keeps carts forever.
func NewRedisSlots(client *redis.Client, ttl time.Duration) *RedisSlots {
	return &RedisSlots{cmd: client, sub: client, ttl: ttl}
}

func changeChannel(key string) string { return redisChangePrefix + key }

func (s *RedisSlots) Ping(ctx context.Context) error {
	return s.cmd.Ping(ctx).Err()
}

func (s *RedisSlots) Load(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *RedisSlots) Save(ctx context.Context, key string, value []byte) error {
	if err := s.cmd.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return err
	}
	if err := s.cmd.Publish(ctx, changeChannel(key), key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}
	return nil
}

func (s *RedisSlots) Watch(ctx context.Context, key string, fn func()) (func(), error) {
	if s.sub == nil {
		return nil, ErrWatchUnsupported
	}

	ps := s.sub.Subscribe(ctx, changeChannel(key))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ps.Channel() {
			fn()
		}
	}()

	return func() {
		_ = ps.Close()
		<-done
	}, nil
}
