package ticket

import (
	"context"
	"sync/atomic"
)

var _ Dispenser = (*Local)(nil)

// Local is an in-process dispenser. Each instance owns its own sequence.
// Integer overflow is not handled; int64 leaves no practical headroom issue.
type Local struct {
	last int64
}

func NewLocal() *Local {
	return &Local{}
}

func (d *Local) Draw(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&d.last, 1), nil
}

func (d *Local) Last(ctx context.Context) (int64, error) {
	return atomic.LoadInt64(&d.last), nil
}

// Default is the dispenser behind the package-level Draw and Last.
// It is an ordinary Local handle rather than hidden state; callers that
// need an isolated sequence create their own with NewLocal.
var Default = NewLocal()

func Draw(ctx context.Context) (int64, error) {
	return Default.Draw(ctx)
}

func Last(ctx context.Context) (int64, error) {
	return Default.Last(ctx)
}
