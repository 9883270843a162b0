package carousel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/director"
)

func newStandalone(t *testing.T, interval time.Duration, captions ...string) carousel.Standalone {
	t.Helper()
	items := make([]carousel.Item, len(captions))
	for i, c := range captions {
		items[i] = carousel.NewTextItem(c, c)
	}
	m, err := carousel.NewModel(carousel.Config{Items: items, Interval: interval},
		carousel.WithTransition(2, time.Millisecond),
		carousel.WithSize(40, 16))
	require.NoError(t, err)
	return carousel.NewStandalone(m)
}

func TestStandalone_ManualNavigation(t *testing.T) {
	result := director.New(t, newStandalone(t, time.Hour, "A", "B", "C", "D")).
		WithTimeout(5*time.Second).
		Start().
		AssertIndex(0).
		PressNext().
		AssertIndex(1).
		AssertDirection("forward").
		WaitForCondition("steady").
		PressPrevious().
		PressPrevious().
		AssertIndex(3).
		AssertDirection("backward").
		PressKey("3").
		AssertIndex(2).
		AssertDirection("backward").
		WaitForCondition("steady").
		AssertViewContains("3/4").
		Stop()

	assert.True(t, result.Success, "trips: %v", result.Trips)
}

func TestStandalone_AutoAdvance(t *testing.T) {
	result := director.New(t, newStandalone(t, 20*time.Millisecond, "A", "B", "C")).
		WithTimeout(5*time.Second).
		Start().
		WaitForIndex(1).
		AssertDirection("forward").
		WaitForIndex(2).
		WaitForIndex(0).
		Stop()

	assert.True(t, result.Success, "trips: %v", result.Trips)
}

func TestStandalone_ManualResetsTimer(t *testing.T) {
	result := director.New(t, newStandalone(t, 300*time.Millisecond, "A", "B", "C")).
		WithTimeout(5*time.Second).
		Start().
		Wait(200*time.Millisecond).
		PressNext().
		AssertIndexStays(200*time.Millisecond).
		WaitForIndex(2).
		Stop()

	assert.True(t, result.Success, "trips: %v", result.Trips)
}
