package ticket

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

// Registry hands out named Local dispensers, creating each on first use.
// A counter idle longer than the TTL is evicted and restarts from zero on
// its next draw.
type Registry struct {
	mu sync.Mutex
	c  *cache.Cache
}

func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		c: cache.New(idleTTL, idleTTL),
	}
}

// Dispenser returns the dispenser for name, creating it when absent.
// Looking a counter up refreshes its idle TTL.
func (r *Registry) Dispenser(name string) *Local {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.c.Get(name); ok {
		d := v.(*Local)
		r.c.SetDefault(name, d)
		return d
	}

	d := NewLocal()
	r.c.SetDefault(name, d)
	return d
}

// Names lists the counters that have not idled out yet.
func (r *Registry) Names() []string {
	return lo.Keys(r.c.Items())
}
