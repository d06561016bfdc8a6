package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispenser(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry(time.Minute)

	n, err := r.Dispenser("lobby").Draw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Same name resolves to the same counter.
	n, err = r.Dispenser("lobby").Draw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// A different name is an independent counter.
	n, err = r.Dispenser("pharmacy").Draw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ElementsMatch(t, []string{"lobby", "pharmacy"}, r.Names())
}

func TestRegistryIdleEviction(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry(10 * time.Millisecond)

	n, err := r.Dispenser("lobby").Draw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	time.Sleep(100 * time.Millisecond)

	// The idle counter was evicted; the name starts over.
	n, err = r.Dispenser("lobby").Draw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
