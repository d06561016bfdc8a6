package ticket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDraw(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		draws int
	}{
		{name: "single draw", draws: 1},
		{name: "three draws", draws: 3},
		{name: "many draws", draws: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewLocal()
			for i := 1; i <= tt.draws; i++ {
				n, err := d.Draw(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(i), n)
			}

			last, err := d.Last(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.draws), last)
		})
	}
}

func TestLocalLastBeforeFirstDraw(t *testing.T) {
	ctx := context.Background()

	d := NewLocal()
	last, err := d.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestLocalIndependentInstances(t *testing.T) {
	ctx := context.Background()

	a := NewLocal()
	b := NewLocal()

	draw := func(d *Local) int64 {
		n, err := d.Draw(ctx)
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, int64(1), draw(a))
	assert.Equal(t, int64(2), draw(a))

	// A fresh instance starts its own sequence.
	assert.Equal(t, int64(1), draw(b))

	// Drawing from b did not advance a.
	assert.Equal(t, int64(3), draw(a))
}

func TestPackageDrawUsesDefault(t *testing.T) {
	ctx := context.Background()

	// Default is shared process-wide, so only relative positions can be
	// asserted here.
	n1, err := Draw(ctx)
	require.NoError(t, err)
	n2, err := Draw(ctx)
	require.NoError(t, err)
	assert.Equal(t, n1+1, n2)

	last, err := Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, n2, last)
}
