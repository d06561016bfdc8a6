// Package ticket issues monotonically increasing ticket numbers.
//
// The same draw-the-next-number operation is offered in three ownership
// styles: an owned in-process instance (Local, also reachable through the
// package-level Default handle), dispensers shared across processes or
// restarts (Redis, Datastore), and an immutable value (State) for callers
// that prefer to thread counter state explicitly.
package ticket

import "context"

// Dispenser issues strictly increasing ticket numbers starting at 1.
// A single dispenser never skips or repeats a number.
type Dispenser interface {
	// Draw issues the next ticket number.
	Draw(ctx context.Context) (int64, error)
	// Last returns the most recently issued ticket number, 0 if none yet.
	Last(ctx context.Context) (int64, error)
}
