package kit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	URL          string
	Address      string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OpenRedis builds a client from a URL or an address and verifies it with
// PING.
func OpenRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	opts, err := redisOptions(o)
	if err != nil {
		return nil, err
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

func redisOptions(o RedisOptions) (*redis.Options, error) {
	if o.URL == "" && o.Address == "" {
		return nil, errors.New("redis url or address is required")
	}

	var opts *redis.Options
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     o.Address,
			Password: o.Password,
			DB:       o.DB,
		}
	}

	if opts.PoolSize == 0 {
		opts.PoolSize = o.PoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = o.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = o.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = o.WriteTimeout
	}
	return opts, nil
}
