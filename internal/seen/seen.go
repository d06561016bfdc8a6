// Package seen provides at-most-once markers for draw events.
package seen

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type Marker interface {
	// Acquire reports whether the caller won the right to process id.
	Acquire(ctx context.Context, id string) (bool, error)
}

var _ Marker = (*Local)(nil)

// Local remembers ids within one process. Entries expire after the TTL so
// a long-running watcher does not grow without bound.
type Local struct {
	cache *cache.Cache
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{cache: cache.New(ttl, ttl)}
}

func (m *Local) Acquire(ctx context.Context, id string) (bool, error) {
	err := m.cache.Add(id, struct{}{}, 0)
	return err == nil, nil
}
