package seen

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Marker = (*Redis)(nil)

// Redis marks ids across processes via SETNX, for watchers scaled out
// over the same subscription.
type Redis struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func (m *Redis) Acquire(ctx context.Context, id string) (bool, error) {
	return m.Client.SetNX(ctx, "draw-seen:"+id, "v", m.TTL).Result()
}
