package ticket

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
)

// CounterEntity is the persisted form of a durable counter.
type CounterEntity struct {
	LastTicket int64
	UpdatedAt  time.Time
}

var _ Dispenser = (*Datastore)(nil)

// Datastore is a durable dispenser backed by a single Datastore entity.
// Draw is a read-modify-write inside a transaction, so concurrent drawers
// commit distinct tickets even when the transaction function is retried.
type Datastore struct {
	Client    *datastore.Client
	Kind      string
	Name      string
	Namespace string
}

func (d *Datastore) key() *datastore.Key {
	key := datastore.NameKey(d.Kind, d.Name, nil)
	key.Namespace = d.Namespace
	return key
}

func (d *Datastore) Draw(ctx context.Context) (int64, error) {
	key := d.key()

	var drawn int64
	_, err := d.Client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		// The transaction func may run more than once; always recompute
		// from the value read in this attempt.
		var rec CounterEntity
		err := tx.Get(key, &rec)
		if err != nil && err != datastore.ErrNoSuchEntity {
			return fmt.Errorf("tx.Get: %w", err)
		}

		drawn = rec.LastTicket + 1
		if _, err := tx.Put(key, &CounterEntity{
			LastTicket: drawn,
			UpdatedAt:  time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("tx.Put: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return drawn, nil
}

func (d *Datastore) Last(ctx context.Context) (int64, error) {
	var rec CounterEntity
	err := d.Client.Get(ctx, d.key(), &rec)
	if err == datastore.ErrNoSuchEntity {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.LastTicket, nil
}
