// Package redis implements the durable per-session stores on Redis: the
// pending-payment records, the capped order history, the last payment result,
// and the loyalty points cache.
package redis

import (
	"context"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	return rdb, nil
}
