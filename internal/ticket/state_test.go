package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateDrawSequence(t *testing.T) {
	var s State
	for i := int64(1); i <= 5; i++ {
		var n int64
		n, s = s.Draw()
		assert.Equal(t, i, n)
		assert.Equal(t, i, s.LastTicket)
	}
}

func TestStateDrawIsPure(t *testing.T) {
	// Two draws from the zero state.
	n1, s1 := State{}.Draw()
	assert.Equal(t, int64(1), n1)
	n2, s2 := s1.Draw()
	assert.Equal(t, int64(2), n2)

	// Branch twice from the same saved state: both branches replay the
	// same next ticket, and the saved state itself never changes.
	nA, _ := s2.Draw()
	nB, _ := s2.Draw()
	assert.Equal(t, int64(3), nA)
	assert.Equal(t, int64(3), nB)
	assert.Equal(t, int64(2), s2.LastTicket)

	// The older state is still usable too.
	nOld, _ := s1.Draw()
	assert.Equal(t, int64(2), nOld)
}
