package ticket

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var _ Dispenser = (*Redis)(nil)

// Redis is a dispenser shared by every process pointing at the same key.
type Redis struct {
	Key    string
	Client redis.UniversalClient
}

func (d *Redis) Draw(ctx context.Context) (int64, error) {
	return d.Client.IncrBy(ctx, d.Key, 1).Result()
}

func (d *Redis) Last(ctx context.Context) (int64, error) {
	n, err := d.Client.Get(ctx, d.Key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
