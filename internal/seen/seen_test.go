package seen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAcquire(t *testing.T) {
	ctx := context.Background()

	m := NewLocal(time.Minute)

	got, err := m.Acquire(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, got)

	// Second claim on the same id loses.
	got, err = m.Acquire(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, got)

	// Other ids are unaffected.
	got, err = m.Acquire(ctx, "msg-2")
	require.NoError(t, err)
	assert.True(t, got)
}
