// Package director drives Bubble Tea carousels headlessly for tests.
//
// The director runs the model in a tea.Program with no renderer and no
// input, sends key presses, waits on the model's index or named conditions,
// and collects failures as trips instead of stopping the test at the first
// one.
//
// Basic usage:
//
//	m, _ := carousel.NewModel(cfg)
//
//	result := director.New(t, carousel.NewStandalone(m)).
//		WithTimeout(5 * time.Second).
//		Start().
//		PressNext().
//		AssertIndex(1).
//		AssertDirection("forward").
//		WaitForIndex(2).
//		Stop()
//
//	assert.True(t, result.Success)
package director

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/teranos/carousel/trip"
)

// Inspectable is what the director needs from a model beyond tea.Model.
type Inspectable interface {
	tea.Model
	// CurrentIndex returns the index on display.
	CurrentIndex() int
	// CurrentDirection returns the direction of the last navigation.
	CurrentDirection() string
	// CheckCondition answers named conditions such as "steady".
	CheckCondition(condition string) bool
}

// Config tunes timeouts and snapshot capture.
type Config struct {
	// Timeout bounds the whole session and every wait.
	Timeout time.Duration
	// SettleTimeout bounds how long a sent message may take to be applied.
	SettleTimeout time.Duration
	// PollInterval is how often waits re-check the model.
	PollInterval time.Duration
	// CaptureViews stores a view snapshot after every interaction.
	CaptureViews bool
	// AutoReportErrors forwards every non-stumble trip to t.Error.
	// Disable it when a test expects failures.
	AutoReportErrors bool
}

// DefaultConfig returns a 10s session with view capture enabled.
func DefaultConfig() Config {
	return Config{
		Timeout:          10 * time.Second,
		SettleTimeout:    500 * time.Millisecond,
		PollInterval:     5 * time.Millisecond,
		CaptureViews:     true,
		AutoReportErrors: true,
	}
}

// Step records one interaction.
type Step struct {
	Timestamp time.Time
	Type      string // "keypress", "send", "wait", "assertion"
	Details   interface{}
}

// Snapshot is the model as seen after an interaction.
type Snapshot struct {
	Timestamp time.Time
	Reason    string
	View      string
	Index     int
	Direction string
}

// Result is returned by Stop.
type Result struct {
	Steps     []Step
	Snapshots []Snapshot
	Trips     []*trip.Trip
	Success   bool
	Duration  time.Duration
	Error     error
}

// Director runs one model in a headless program.
type Director struct {
	t      *testing.T
	model  Inspectable
	config Config

	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	modelMu     sync.RWMutex
	latest      Inspectable
	updates     int64
	initialized int32

	steps     []Step
	snapshots []Snapshot
	logMu     sync.Mutex
	log       *trip.Log
	startedAt time.Time
	started   bool
}

// syncWrapper publishes every updated model back to the director.
type syncWrapper struct {
	Inspectable
	director *Director
}

func (w syncWrapper) Init() tea.Cmd {
	atomic.StoreInt32(&w.director.initialized, 1)
	return w.Inspectable.Init()
}

func (w syncWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := w.Inspectable.Update(msg)

	inspectable, ok := next.(Inspectable)
	if !ok {
		w.director.record(trip.NewFall("system", fmt.Sprintf("Update returned %T, which is not Inspectable", next), nil))
		return w, cmd
	}

	w.director.modelMu.Lock()
	w.director.latest = inspectable
	w.director.modelMu.Unlock()
	atomic.AddInt64(&w.director.updates, 1)

	return syncWrapper{Inspectable: inspectable, director: w.director}, cmd
}

func (w syncWrapper) View() string {
	return w.Inspectable.View()
}

// New returns a director with DefaultConfig.
func New(t *testing.T, model Inspectable) *Director {
	return NewWithConfig(t, model, DefaultConfig())
}

// NewWithConfig returns a director with a custom configuration.
func NewWithConfig(t *testing.T, model Inspectable, config Config) *Director {
	return &Director{
		t:      t,
		model:  model,
		latest: model,
		config: config,
		done:   make(chan struct{}),
		log:    trip.NewLog("director"),
	}
}

// WithTimeout sets the session timeout. It is ignored after Start.
func (d *Director) WithTimeout(timeout time.Duration) *Director {
	if d.started {
		d.t.Logf("director already started, ignoring WithTimeout(%v)", timeout)
		return d
	}
	d.config.Timeout = timeout
	return d
}

// WithViewCapture toggles snapshots. It is ignored after Start.
func (d *Director) WithViewCapture(enabled bool) *Director {
	if !d.started {
		d.config.CaptureViews = enabled
	}
	return d
}

// Start runs the program and waits until the model was initialised.
func (d *Director) Start() *Director {
	if d.started {
		return d
	}
	d.startedAt = time.Now()
	d.ctx, d.cancel = context.WithTimeout(context.Background(), d.config.Timeout)

	d.program = tea.NewProgram(
		syncWrapper{Inspectable: d.model, director: d},
		tea.WithContext(d.ctx),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	go func() {
		defer close(d.done)
		if _, err := d.program.Run(); err != nil && d.ctx.Err() == nil {
			d.t.Logf("[TRACE] program.Run returned: %v", err)
		}
	}()

	if !d.poll(func() bool { return atomic.LoadInt32(&d.initialized) == 1 }, d.config.Timeout) {
		d.record(trip.NewFall("startup", "program did not initialise", trip.Context{"timeout": d.config.Timeout}))
		return d
	}

	d.started = true
	d.capture("initial")
	return d
}

// Stop quits the program, waits for it to exit and returns the result.
func (d *Director) Stop() *Result {
	if !d.started {
		if d.cancel != nil {
			d.cancel()
			<-d.done
		}
		return &Result{
			Trips:   d.log.Trips(),
			Success: false,
			Error:   fmt.Errorf("director was never started"),
		}
	}

	d.program.Quit()
	select {
	case <-d.done:
	case <-time.After(d.config.SettleTimeout):
		d.cancel()
		<-d.done
	}
	d.cancel()
	d.started = false

	result := &Result{
		Steps:     d.steps,
		Snapshots: d.snapshots,
		Trips:     d.log.Trips(),
		Success:   !d.log.Failed(),
		Duration:  time.Since(d.startedAt),
	}
	if last := d.log.Last(); last != nil {
		result.Error = last
	}
	return result
}

// Latest returns the most recent model seen by the program.
func (d *Director) Latest() Inspectable {
	d.modelMu.RLock()
	defer d.modelMu.RUnlock()
	return d.latest
}

// View returns the current rendered view.
func (d *Director) View() string {
	return d.Latest().View()
}

// Failed reports whether a non-stumble trip was recorded so far.
func (d *Director) Failed() bool {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	return d.log.Failed()
}

// send delivers msg and waits until the program applied it.
func (d *Director) send(msg tea.Msg) {
	if !d.started {
		d.record(trip.New("interaction", "send before Start", trip.Context{"msg": fmt.Sprintf("%T", msg)}))
		return
	}
	before := atomic.LoadInt64(&d.updates)
	d.program.Send(msg)
	if !d.poll(func() bool { return atomic.LoadInt64(&d.updates) > before }, d.config.SettleTimeout) {
		d.record(trip.NewStumble("timing", "message not applied in time", trip.Context{"msg": fmt.Sprintf("%T", msg)}))
	}
}

// poll re-checks cond until it holds or timeout expires.
func (d *Director) poll(cond func() bool, timeout time.Duration) bool {
	if cond() {
		return true
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline.C:
			return cond()
		case <-ticker.C:
			if cond() {
				return true
			}
		}
	}
}

func (d *Director) record(t *trip.Trip) {
	d.logMu.Lock()
	d.log.Record(t)
	d.logMu.Unlock()
	if d.t != nil && d.config.AutoReportErrors && !t.Recoverable() {
		d.t.Helper()
		d.t.Error(t.Detailed())
	}
}

func (d *Director) step(kind string, details interface{}) {
	d.steps = append(d.steps, Step{Timestamp: time.Now(), Type: kind, Details: details})
}

func (d *Director) capture(reason string) {
	if !d.config.CaptureViews {
		return
	}
	m := d.Latest()
	d.snapshots = append(d.snapshots, Snapshot{
		Timestamp: time.Now(),
		Reason:    reason,
		View:      m.View(),
		Index:     m.CurrentIndex(),
		Direction: m.CurrentDirection(),
	})
}

// truncate flattens s onto one line and cuts it to max cells.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	if ansi.StringWidth(s) <= max {
		return s
	}
	return ansi.Truncate(s, max, "") + "..."
}
