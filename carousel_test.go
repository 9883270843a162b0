package carousel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustState(t *testing.T, n int) State {
	t.Helper()
	s, err := NewState(n)
	require.NoError(t, err)
	return s
}

func TestNewState(t *testing.T) {
	s := mustState(t, 4)
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 4, s.Len())

	_, err := NewState(0)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestState_IndexStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 8; n++ {
		s := mustState(t, n)
		for i := 0; i < 500; i++ {
			if rng.Intn(2) == 0 {
				s.Next()
			} else {
				s.Previous()
			}
			require.GreaterOrEqual(t, s.Index(), 0)
			require.Less(t, s.Index(), n)
		}
	}
}

func TestState_RoundTrip(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for start := 0; start < n; start++ {
			s := mustState(t, n)
			require.NoError(t, s.Advance(start))

			s.Next()
			s.Previous()
			assert.Equal(t, start, s.Index(), "next then previous, n=%d", n)

			s.Previous()
			s.Next()
			assert.Equal(t, start, s.Index(), "previous then next, n=%d", n)
		}
	}
}

func TestState_FullCycle(t *testing.T) {
	for n := 1; n <= 6; n++ {
		s := mustState(t, n)
		for i := 0; i < n; i++ {
			s.Next()
		}
		assert.Equal(t, 0, s.Index(), "n=%d", n)
	}
}

func TestState_SelectDirectSetsExactIndex(t *testing.T) {
	const n = 5
	for from := 0; from < n; from++ {
		for k := 0; k < n; k++ {
			s := mustState(t, n)
			require.NoError(t, s.Advance(from))

			require.NoError(t, s.SelectDirect(k))
			assert.Equal(t, k, s.Index())
			if k > from {
				assert.Equal(t, Forward, s.Direction(), "from=%d k=%d", from, k)
			} else {
				assert.Equal(t, Backward, s.Direction(), "from=%d k=%d", from, k)
			}
		}
	}
}

func TestState_DirectionLaws(t *testing.T) {
	s := mustState(t, 3)
	require.NoError(t, s.Advance(2))

	// Wrapping from the last item is still forward.
	s.Next()
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, Forward, s.Direction())

	s.Previous()
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, Backward, s.Direction())

	// Raw comparison, not wraparound-aware.
	require.NoError(t, s.Advance(0))
	assert.Equal(t, Backward, s.Direction())
}

func TestState_SingleItem(t *testing.T) {
	s := mustState(t, 1)
	s.Next()
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, Forward, s.Direction())
	s.Previous()
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, Backward, s.Direction())
}

func TestState_OutOfRangeRejected(t *testing.T) {
	s := mustState(t, 4)
	s.Next()

	for _, k := range []int{-1, 4, 100} {
		err := s.Advance(k)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		err = s.SelectDirect(k)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, Forward, s.Direction())
}

func TestState_Scenario(t *testing.T) {
	items := []string{"A", "B", "C", "D"}
	s := mustState(t, len(items))
	assert.Equal(t, "A", items[s.Index()])

	s.Next()
	assert.Equal(t, "B", items[s.Index()])
	assert.Equal(t, Forward, s.Direction())

	s.Next()
	assert.Equal(t, "C", items[s.Index()])
	assert.Equal(t, Forward, s.Direction())

	s.Previous()
	assert.Equal(t, Backward, s.Direction())
	s.Previous()
	assert.Equal(t, "A", items[s.Index()])
	assert.Equal(t, Backward, s.Direction())

	require.NoError(t, s.SelectDirect(3))
	assert.Equal(t, "D", items[s.Index()])
	assert.Equal(t, Forward, s.Direction())
}
