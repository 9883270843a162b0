// Package carousel provides an auto-advancing, direction-aware carousel for
// terminal and headless hosts.
//
// A carousel presents one of N items at a time. It advances on a fixed
// cadence, stays fully controllable by direct input, and records the travel
// direction of every navigation so the host can animate a sliding transition.
//
// Basic usage with Bubble Tea:
//
//	m, err := carousel.NewModel(carousel.Config{
//		Items:    []carousel.Item{carousel.NewTextItem("A", "first"), carousel.NewTextItem("B", "second")},
//		Interval: 4 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	_, err = tea.NewProgram(m).Run()
//
// Headless hosts mount a Carousel instead and must Unmount it:
//
//	c, err := carousel.Mount(cfg, carousel.WithObserver(func(ch carousel.Change) {
//		fmt.Println(ch.Index, ch.Direction)
//	}))
//	defer c.Unmount()
package carousel

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItems is returned when a carousel is configured without items.
	ErrNoItems = errors.New("carousel: at least one item is required")

	// ErrIndexOutOfRange is returned when a navigation target is not a valid
	// index. The state is left untouched.
	ErrIndexOutOfRange = errors.New("carousel: index out of range")

	// ErrUnmounted is returned by navigation on an unmounted Carousel.
	ErrUnmounted = errors.New("carousel: unmounted")
)

// Direction records which way the last navigation travelled.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// State is the index/direction bookkeeping shared by every carousel host.
//
// The zero value is not usable; create one with NewState. State is a plain
// value: hosts copy it freely and serialise mutation themselves.
type State struct {
	n         int
	index     int
	direction Direction
}

// NewState returns the state for n items, showing index 0.
func NewState(n int) (State, error) {
	if n < 1 {
		return State{}, ErrNoItems
	}
	return State{n: n, direction: Forward}, nil
}

// Len returns the number of items.
func (s State) Len() int { return s.n }

// Index returns the current item index.
func (s State) Index() int { return s.index }

// Direction returns the direction of the last navigation.
func (s State) Direction() Direction { return s.direction }

// Advance moves to toIndex. The direction is Forward when toIndex is greater
// than the current index and Backward otherwise, by raw comparison.
func (s *State) Advance(toIndex int) error {
	if toIndex < 0 || toIndex >= s.n {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrIndexOutOfRange, toIndex, s.n-1)
	}
	if toIndex > s.index {
		s.moveTo(toIndex, Forward)
	} else {
		s.moveTo(toIndex, Backward)
	}
	return nil
}

// Next moves one item forward, wrapping to 0 after the last item.
func (s *State) Next() {
	s.moveTo((s.index+1)%s.n, Forward)
}

// Previous moves one item backward, wrapping to the last item before 0.
func (s *State) Previous() {
	s.moveTo((s.index-1+s.n)%s.n, Backward)
}

// SelectDirect is the entry point for indicator controls.
func (s *State) SelectDirect(index int) error {
	return s.Advance(index)
}

func (s *State) moveTo(index int, dir Direction) {
	s.index = index
	s.direction = dir
}
