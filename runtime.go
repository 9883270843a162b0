package carousel

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Change describes one applied navigation.
type Change struct {
	CarouselID string
	Previous   int
	Index      int
	Direction  Direction
	Auto       bool // set when the timer, not a caller, advanced
	At         time.Time
}

// Option configures a mounted Carousel.
type Option func(*Carousel)

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(c *Carousel) { c.clock = clock }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Carousel) { c.logger = logger }
}

// WithObserver registers a callback invoked after every applied navigation.
// It runs with the carousel lock released. Calls never overlap and see
// changes in the order they were applied; a navigation made from inside fn
// is delivered after fn returns.
func WithObserver(fn func(Change)) Option {
	return func(c *Carousel) { c.observer = fn }
}

// Carousel is a mounted headless carousel instance.
//
// It owns its auto-advance timer: the timer is armed on Mount, re-armed after
// every navigation and cancelled on Unmount. Callbacks that lose a race with
// a re-arm or with Unmount are discarded by generation, so no state changes
// after Unmount returns.
type Carousel struct {
	id       string
	items    []Item
	interval time.Duration
	aspect   Aspect

	clock    Clock
	logger   *zap.Logger
	observer func(Change)

	mu         sync.Mutex
	state      State
	timer      Timer
	generation uint64
	mounted    bool

	notifyMu   sync.Mutex // guards pending and delivering; taken after mu
	pending    []Change
	delivering bool
}

// Mount validates cfg, creates the instance showing item 0 and arms its timer.
func Mount(cfg Config, opts ...Option) (*Carousel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	state, err := NewState(len(cfg.Items))
	if err != nil {
		return nil, err
	}

	c := &Carousel{
		id:       uuid.NewString(),
		items:    cfg.Items,
		interval: cfg.Interval,
		aspect:   cfg.Aspect,
		clock:    RealClock{},
		logger:   zap.NewNop(),
		state:    state,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	c.mounted = true
	c.armLocked()
	c.mu.Unlock()

	c.logger.Debug("carousel mounted",
		zap.String("carousel", c.id),
		zap.Int("items", len(c.items)),
		zap.Duration("interval", c.interval))
	return c, nil
}

// ID returns the instance identifier used in logs and changes.
func (c *Carousel) ID() string { return c.id }

// Len returns the number of items.
func (c *Carousel) Len() int { return len(c.items) }

// Aspect returns the display-variant hint.
func (c *Carousel) Aspect() Aspect { return c.aspect }

// Interval returns the auto-advance cadence.
func (c *Carousel) Interval() time.Duration { return c.interval }

// Index returns the current item index.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Index()
}

// Direction returns the direction of the last navigation.
func (c *Carousel) Direction() Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Direction()
}

// Current returns the item on display.
func (c *Carousel) Current() Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[c.state.Index()]
}

// Mounted reports whether Unmount has not been called yet.
func (c *Carousel) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Next advances one item forward.
func (c *Carousel) Next() error {
	return c.navigate(false, func(s *State) error {
		s.Next()
		return nil
	})
}

// Previous moves one item backward.
func (c *Carousel) Previous() error {
	return c.navigate(false, func(s *State) error {
		s.Previous()
		return nil
	})
}

// Advance jumps to index; see State.Advance for direction rules.
func (c *Carousel) Advance(index int) error {
	return c.navigate(false, func(s *State) error {
		return s.Advance(index)
	})
}

// SelectDirect is the indicator-dot entry point.
func (c *Carousel) SelectDirect(index int) error {
	return c.navigate(false, func(s *State) error {
		return s.SelectDirect(index)
	})
}

// Unmount cancels the timer. It is safe to call more than once.
func (c *Carousel) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	c.cancelLocked()
	c.mu.Unlock()

	c.logger.Debug("carousel unmounted", zap.String("carousel", c.id))
}

func (c *Carousel) navigate(auto bool, apply func(*State) error) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrUnmounted
	}

	prev := c.state.Index()
	if err := apply(&c.state); err != nil {
		c.mu.Unlock()
		c.logger.Debug("navigation rejected", zap.String("carousel", c.id), zap.Error(err))
		return err
	}
	c.armLocked()

	change := Change{
		CarouselID: c.id,
		Previous:   prev,
		Index:      c.state.Index(),
		Direction:  c.state.Direction(),
		Auto:       auto,
		At:         time.Now(),
	}
	if c.observer != nil {
		c.notifyMu.Lock()
		c.pending = append(c.pending, change)
		c.notifyMu.Unlock()
	}
	c.mu.Unlock()

	c.logger.Debug("carousel advanced",
		zap.String("carousel", c.id),
		zap.Int("from", change.Previous),
		zap.Int("to", change.Index),
		zap.String("direction", string(change.Direction)),
		zap.Bool("auto", auto))

	c.deliver()
	return nil
}

// deliver hands queued changes to the observer. Whoever finds the queue
// idle drains it; everyone else leaves their change for that caller.
func (c *Carousel) deliver() {
	c.notifyMu.Lock()
	if c.delivering {
		c.notifyMu.Unlock()
		return
	}
	c.delivering = true
	for len(c.pending) > 0 {
		change := c.pending[0]
		c.pending = c.pending[1:]
		c.notifyMu.Unlock()
		c.observer(change)
		c.notifyMu.Lock()
	}
	c.delivering = false
	c.notifyMu.Unlock()
}

// armLocked cancels any pending timer and schedules a fresh one.
func (c *Carousel) armLocked() {
	c.cancelLocked()
	gen := c.generation
	c.timer = c.clock.AfterFunc(c.interval, func() { c.fire(gen) })
}

// cancelLocked stops the pending timer and invalidates in-flight callbacks.
func (c *Carousel) cancelLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// errStaleTimer marks a callback that lost the race with a re-arm.
var errStaleTimer = errors.New("carousel: stale timer")

func (c *Carousel) fire(gen uint64) {
	err := c.navigate(true, func(s *State) error {
		if gen != c.generation {
			return errStaleTimer
		}
		s.Next()
		return nil
	})
	if err != nil && !errors.Is(err, errStaleTimer) && !errors.Is(err, ErrUnmounted) {
		c.logger.Warn("auto-advance failed", zap.String("carousel", c.id), zap.Error(err))
	}
}
